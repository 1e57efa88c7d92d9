package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and credential files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single request.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick best-effort calls such as logout.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry settings. Retries are disabled unless configured explicitly.
const (
	// DefaultRetryMax is the number of retries when none is configured.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Header names and values.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"

	ContentTypeJSON = "application/json"

	BearerPrefix = "Bearer "

	DefaultUserAgent = "apiclient-go/1.0"
)

// Credential storage keys.
const (
	// StorageKeyToken holds the primary bearer token.
	StorageKeyToken = "token"

	// StorageKeyAdminToken holds the admin bearer token.
	StorageKeyAdminToken = "adminToken"

	// StorageKeyRefreshToken holds the refresh token issued at login.
	StorageKeyRefreshToken = "refreshToken"

	// StorageKeyUser holds the JSON encoded user profile.
	StorageKeyUser = "user"

	// StorageKeyAuthState holds the persisted authentication state.
	StorageKeyAuthState = "authState"

	// AuthStateAuthenticated is written to StorageKeyAuthState at login.
	AuthStateAuthenticated = "authenticated"
)

// Navigation.
const (
	// DefaultLoginRoute is where the application is sent when a session expires.
	DefaultLoginRoute = "/admin/login"
)

// Upload defaults.
const (
	// DefaultUploadFieldName is the multipart field used for the file part.
	DefaultUploadFieldName = "file"

	// DefaultUploadFileName is used when an upload carries no file name.
	DefaultUploadFileName = "upload"
)

// User facing error messages.
const (
	MessageTimeout          = "Request timed out"
	MessageSessionExpired   = "Session expired. Please login again."
	MessageValidationFailed = "Validation failed"
	MessageServerError      = "Server error. Please try again later."
	MessageRequestFailed    = "Request failed"
)

// Pagination defaults.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 10
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Backend areas. Each area has its own endpoint and client.
const (
	AreaAuth      = "auth"
	AreaUsers     = "users"
	AreaDashboard = "dashboard"
	AreaAdmin     = "admin"
)

// Configuration locations.
const (
	// ConfigDirName is the directory under the user's home holding CLI state.
	ConfigDirName = ".apictl"

	// ConfigFileName is the config file base name, without extension.
	ConfigFileName = "config"

	// CredentialsFileName is the durable credential store file.
	CredentialsFileName = "credentials.yml"

	// EnvPrefix prefixes every environment variable the CLI reads.
	EnvPrefix = "APICTL"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

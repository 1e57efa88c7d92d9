package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointsConfigured = errors.New("no endpoints configured, set endpoints in the config file")
	ErrEndpointNotConfigured = errors.New("endpoint not configured")
	ErrEndpointURLRequired   = errors.New("endpoint base URL is required")
	ErrInvalidTimeout        = errors.New("timeout must be positive")
)

// Authentication errors.
var (
	ErrNotAuthenticated  = errors.New("not authenticated. Use 'apictl login' to authenticate first")
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrPasswordRequired  = errors.New("password is required")
	ErrEmailRequired     = errors.New("email is required")
)

// Command errors.
var (
	ErrUnsupportedMethod  = errors.New("unsupported HTTP method")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrInvalidDataFlag    = errors.New("--data must be a JSON document")
	ErrInvalidFieldFlag   = errors.New("--field must have the form key=value")
	ErrUserIDRequired     = errors.New("user ID is required")
	ErrNotRegularFile     = errors.New("path is not a regular file")
	ErrDirectoryTraversal = errors.New("directory traversal detected in file path")
)

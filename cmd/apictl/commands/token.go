package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

// TokenStatus describes the credential the next request would carry.
type TokenStatus struct {
	Authenticated   bool       `json:"authenticated"               yaml:"authenticated"`
	Source          string     `json:"source,omitempty"            yaml:"source,omitempty"`
	Subject         string     `json:"subject,omitempty"           yaml:"subject,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"        yaml:"expires_at,omitempty"`
	Expired         bool       `json:"expired"                     yaml:"expired"`
	TimeUntilExpiry string     `json:"time_until_expiry,omitempty" yaml:"time_until_expiry,omitempty"`
	CredentialsFile string     `json:"credentials_file"            yaml:"credentials_file"`
	Note            string     `json:"note,omitempty"              yaml:"note,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect stored credentials",
		Long:  "Commands for inspecting the stored authentication token",
	}

	cmd.AddCommand(newTokenStatusCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show token status and expiration",
		Long:  "Display which stored token is active and, for JWTs, when it expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := newTokenStore(cfg, newLogger(cfg))

			status := buildTokenStatus(cmd.Context(), store, time.Now())
			status.CredentialsFile = cfg.CredentialsFile

			return render(cmd.OutOrStdout(), status, propertyTable(tokenStatusRows(status)))
		},
	}
}

// buildTokenStatus resolves the active token the same way requests do and
// decodes its claims without verifying the signature.
func buildTokenStatus(ctx context.Context, store *apiclient.TokenStore, now time.Time) *TokenStatus {
	token, ok := store.Token(ctx)
	if !ok {
		return &TokenStatus{Note: constants.ErrNotAuthenticated.Error()}
	}

	status := &TokenStatus{Authenticated: true, Source: tokenSource(ctx, store, token)}

	expiresAt, subject, err := tokenClaims(token)
	if err != nil {
		status.Note = err.Error()

		return status
	}

	status.Subject = subject
	status.ExpiresAt = &expiresAt
	status.Expired = !now.Before(expiresAt)

	if !status.Expired {
		status.TimeUntilExpiry = expiresAt.Sub(now).Round(time.Second).String()
	}

	return status
}

func tokenSource(ctx context.Context, store *apiclient.TokenStore, token string) string {
	for _, candidate := range []struct {
		name    string
		storage apiclient.Storage
		key     string
	}{
		{"durable token", store.Durable(), constants.StorageKeyToken},
		{"durable adminToken", store.Durable(), constants.StorageKeyAdminToken},
		{"session token", store.Session(), constants.StorageKeyToken},
		{"session adminToken", store.Session(), constants.StorageKeyAdminToken},
	} {
		if candidate.storage == nil {
			continue
		}

		value, err := candidate.storage.Get(ctx, candidate.key)
		if err == nil && value == token {
			return candidate.name
		}
	}

	return constants.NotAvailable
}

func tokenClaims(token string) (time.Time, string, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, "", fmt.Errorf("reading expiration: %w", err)
	}

	if expiresAt == nil {
		return time.Time{}, "", constants.ErrNoExpirationClaim
	}

	subject, err := claims.GetSubject()
	if err != nil && !errors.Is(err, jwt.ErrInvalidType) {
		return time.Time{}, "", fmt.Errorf("reading subject: %w", err)
	}

	return expiresAt.Time, subject, nil
}

func tokenStatusRows(status *TokenStatus) [][]string {
	rows := [][]string{
		{"Authenticated", fmt.Sprintf("%v", status.Authenticated)},
		{"Credentials File", status.CredentialsFile},
	}

	if status.Source != "" {
		rows = append(rows, []string{"Source", status.Source})
	}

	if status.Subject != "" {
		rows = append(rows, []string{"Subject", status.Subject})
	}

	if status.ExpiresAt != nil {
		rows = append(rows, []string{"Expires At", status.ExpiresAt.Format(time.RFC3339)})

		if status.Expired {
			rows = append(rows, []string{"Status", "Expired"})
		} else {
			rows = append(rows, []string{"Time Until Expiry", status.TimeUntilExpiry})
		}
	}

	if status.Note != "" {
		rows = append(rows, []string{"Note", status.Note})
	}

	return rows
}

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsersCommand(t *testing.T) {
	t.Parallel()

	cmd := NewUsersCommand()
	assert.Equal(t, "users", cmd.Use)
	assert.Equal(t, []string{"user"}, cmd.Aliases)

	var commandNames []string
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "create", "delete", "upload-avatar"}, commandNames)

	list := newUsersListCommand()
	assert.Equal(t, "1", list.Flags().Lookup("page").DefValue)
	assert.Equal(t, "10", list.Flags().Lookup("limit").DefValue)

	deleteCmd := newUsersDeleteCommand()
	assert.Equal(t, "delete USER_ID", deleteCmd.Use)
	assert.Equal(t, "f", deleteCmd.Flags().Lookup("force").Shorthand)
}

func TestNewRequestCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRequestCommand()
	assert.Equal(t, "request METHOD PATH", cmd.Use)
	assert.NotNil(t, cmd.Args)

	for _, flagName := range []string{"area", "data", "query", "header", "file", "field-name", "field"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "users", cmd.Flags().Lookup("area").DefValue)
	assert.Equal(t, "file", cmd.Flags().Lookup("field-name").DefValue)
}

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	values, err := parseKeyValues([]string{"page=2", "search=a=b", " x =1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"page": "2", "search": "a=b", "x": "1"}, values)

	_, err = parseKeyValues([]string{"novalue"})
	require.ErrorIs(t, err, constants.ErrInvalidFieldFlag)

	_, err = parseKeyValues([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidFieldFlag)
}

func TestWithQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/users", withQuery("/users", nil))
	assert.Equal(t, "/users?page=2", withQuery("/users", map[string][]string{"page": {"2"}}))
	assert.Equal(t, "/users?a=1&page=2", withQuery("/users?a=1", map[string][]string{"page": {"2"}}))
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	assert.Nil(t, decodeBody(nil))
	assert.Equal(t, "plain text", decodeBody([]byte("plain text")))
	assert.Equal(t, map[string]interface{}{"ok": true}, decodeBody([]byte(`{"ok":true}`)))
}

func TestValidateFilePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "avatar.png")
	require.NoError(t, os.WriteFile(file, []byte("png"), 0o600))

	cleaned, err := validateFilePath(file)
	require.NoError(t, err)
	assert.Equal(t, file, cleaned)

	_, err = validateFilePath("../../etc/passwd")
	require.ErrorIs(t, err, constants.ErrDirectoryTraversal)

	_, err = validateFilePath(dir)
	require.ErrorIs(t, err, constants.ErrNotRegularFile)

	_, err = validateFilePath(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestConsoleNavigator(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	(&ConsoleNavigator{Out: &out}).Navigate(context.Background(), "/admin/login")
	assert.Contains(t, out.String(), "/admin/login")
	assert.Contains(t, out.String(), "Session expired")
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestBuildTokenStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		durable map[string]string
		session map[string]string
		check   func(t *testing.T, status *TokenStatus)
	}{
		{
			name: "no token",
			check: func(t *testing.T, status *TokenStatus) {
				assert.False(t, status.Authenticated)
				assert.Equal(t, constants.ErrNotAuthenticated.Error(), status.Note)
			},
		},
		{
			name:    "valid jwt in durable tier",
			durable: map[string]string{"token": signedToken(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(time.Hour).Unix()})},
			check: func(t *testing.T, status *TokenStatus) {
				assert.True(t, status.Authenticated)
				assert.Equal(t, "durable token", status.Source)
				assert.Equal(t, "u1", status.Subject)
				assert.False(t, status.Expired)
				assert.Equal(t, "1h0m0s", status.TimeUntilExpiry)
			},
		},
		{
			name:    "expired admin token in session tier",
			session: map[string]string{"adminToken": signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})},
			check: func(t *testing.T, status *TokenStatus) {
				assert.Equal(t, "session adminToken", status.Source)
				assert.True(t, status.Expired)
				assert.Empty(t, status.TimeUntilExpiry)
			},
		},
		{
			name:    "opaque token",
			durable: map[string]string{"adminToken": "opaque"},
			check: func(t *testing.T, status *TokenStatus) {
				assert.True(t, status.Authenticated)
				assert.Equal(t, "durable adminToken", status.Source)
				assert.Nil(t, status.ExpiresAt)
				assert.Contains(t, status.Note, constants.ErrInvalidJWTFormat.Error())
			},
		},
		{
			name:    "jwt without expiry",
			durable: map[string]string{"token": signedToken(t, jwt.MapClaims{"sub": "u1"})},
			check: func(t *testing.T, status *TokenStatus) {
				assert.Equal(t, constants.ErrNoExpirationClaim.Error(), status.Note)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			durable := apiclient.NewMemoryStorage()
			session := apiclient.NewMemoryStorage()

			for key, value := range tt.durable {
				require.NoError(t, durable.Set(ctx, key, value))
			}

			for key, value := range tt.session {
				require.NoError(t, session.Set(ctx, key, value))
			}

			status := buildTokenStatus(ctx, apiclient.NewTokenStore(durable, session, nil), now)
			tt.check(t, status)

			assert.NotEmpty(t, tokenStatusRows(status))
		})
	}
}

func TestCredentialsResolve_PipedInput(t *testing.T) {
	t.Parallel()

	cmd := NewLoginCommand()

	var prompts bytes.Buffer
	cmd.SetIn(strings.NewReader("alice@example.com\ns3cret\n"))
	cmd.SetErr(&prompts)

	creds := &credentials{}
	require.NoError(t, creds.resolve(cmd))

	assert.Equal(t, "alice@example.com", creds.email)
	assert.Equal(t, "s3cret", creds.password)
	assert.Contains(t, prompts.String(), "Email: ")
	assert.Contains(t, prompts.String(), "Password: ")
}

func TestCredentialsResolve_MissingPassword(t *testing.T) {
	t.Parallel()

	cmd := NewLoginCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetErr(&bytes.Buffer{})

	creds := &credentials{email: "alice@example.com"}
	require.Error(t, creds.resolve(cmd))
}

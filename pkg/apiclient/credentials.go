package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/apiclient/internal/constants"
)

// CredentialProvider resolves the bearer token for an outgoing request.
// It is called on every request and must be cheap. ok is false when no
// token is available.
type CredentialProvider interface {
	Token(ctx context.Context) (token string, ok bool)
}

// StaticToken is a CredentialProvider that always returns the same token.
// An empty StaticToken resolves to no token.
type StaticToken string

// Token implements CredentialProvider.
func (s StaticToken) Token(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

// Session is what a successful login leaves behind.
type Session struct {
	Token        string
	RefreshToken string
	User         interface{}
}

type lookup struct {
	tier    string
	storage Storage
	key     string
}

// TokenStore resolves credentials from a durable and a session storage
// tier. Lookup order: durable token, durable adminToken, session token,
// session adminToken.
type TokenStore struct {
	durable Storage
	session Storage
	logger  Logger
	order   []lookup
}

// NewTokenStore creates a token store. A nil tier is skipped.
func NewTokenStore(durable, session Storage, logger Logger) *TokenStore {
	if logger == nil {
		logger = NopLogger{}
	}

	store := &TokenStore{
		durable: durable,
		session: session,
		logger:  logger,
	}

	for _, candidate := range []lookup{
		{tier: "durable", storage: durable, key: constants.StorageKeyToken},
		{tier: "durable", storage: durable, key: constants.StorageKeyAdminToken},
		{tier: "session", storage: session, key: constants.StorageKeyToken},
		{tier: "session", storage: session, key: constants.StorageKeyAdminToken},
	} {
		if candidate.storage != nil {
			store.order = append(store.order, candidate)
		}
	}

	return store
}

// Durable returns the durable tier.
func (s *TokenStore) Durable() Storage {
	return s.durable
}

// Session returns the session tier.
func (s *TokenStore) Session() Storage {
	return s.session
}

// Token implements CredentialProvider. The first non-empty value wins.
// Storage errors are logged and the lookup moves on.
func (s *TokenStore) Token(ctx context.Context) (string, bool) {
	for _, candidate := range s.order {
		value, err := candidate.storage.Get(ctx, candidate.key)
		if err != nil {
			if !errors.Is(err, ErrKeyNotFound) {
				s.logger.Debug("credential lookup failed", map[string]interface{}{
					"tier":  candidate.tier,
					"key":   candidate.key,
					"error": err.Error(),
				})
			}

			continue
		}

		if value != "" {
			return value, true
		}
	}

	return "", false
}

// SaveSession persists a login result to the durable tier.
func (s *TokenStore) SaveSession(ctx context.Context, session Session) error {
	if s.durable == nil {
		return ErrNoDurableStorage
	}

	values := map[string]string{
		constants.StorageKeyToken:     session.Token,
		constants.StorageKeyAuthState: constants.AuthStateAuthenticated,
	}

	if session.RefreshToken != "" {
		values[constants.StorageKeyRefreshToken] = session.RefreshToken
	}

	if session.User != nil {
		user, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}

		values[constants.StorageKeyUser] = string(user)
	}

	for key, value := range values {
		err := s.durable.Set(ctx, key, value)
		if err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	return nil
}

// SaveAdminToken persists an admin token to the durable tier.
func (s *TokenStore) SaveAdminToken(ctx context.Context, token string) error {
	if s.durable == nil {
		return ErrNoDurableStorage
	}

	err := s.durable.Set(ctx, constants.StorageKeyAdminToken, token)
	if err != nil {
		return fmt.Errorf("saving admin token: %w", err)
	}

	return nil
}

// Clear removes every credential key from both tiers. It keeps going after
// a failure and returns all failures joined.
func (s *TokenStore) Clear(ctx context.Context) error {
	keys := []string{
		constants.StorageKeyToken,
		constants.StorageKeyAdminToken,
		constants.StorageKeyRefreshToken,
		constants.StorageKeyUser,
		constants.StorageKeyAuthState,
	}

	var errs []error

	for _, storage := range []Storage{s.durable, s.session} {
		if storage == nil {
			continue
		}

		for _, key := range keys {
			err := storage.Delete(ctx, key)
			if err != nil {
				errs = append(errs, fmt.Errorf("clearing %s: %w", key, err))
			}
		}
	}

	return errors.Join(errs...)
}

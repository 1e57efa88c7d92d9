package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
)

// AuthService logs users in and out.
type AuthService struct {
	client        *apiclient.Client
	store         *apiclient.TokenStore
	logger        apiclient.Logger
	logoutTimeout time.Duration
}

// Login authenticates a user and saves the session to durable storage.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	env, err := apiclient.For[LoginResult](s.client).Post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	session := apiclient.Session{Token: env.Data.Token, RefreshToken: env.Data.RefreshToken}
	if env.Data.User != nil {
		session.User = env.Data.User
	}

	err = s.store.SaveSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return &env.Data, nil
}

// Logout tells the backend the session is over, then clears every stored
// credential. The backend call is best effort.
func (s *AuthService) Logout(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.logoutTimeout)
	defer cancel()

	_, err := s.client.Post(callCtx, "/auth/logout", nil, nil)
	if err != nil {
		s.logger.Debug("logout request failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	err = s.store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}

	return nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	env, err := apiclient.For[User](s.client).Get(ctx, "/auth/me", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	return &env.Data, nil
}

// AdminService covers the admin backend.
type AdminService struct {
	client *apiclient.Client
	store  *apiclient.TokenStore
}

// Login authenticates an administrator and saves the admin token. A 401
// here ends any existing session like any other 401.
func (s *AdminService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	env, err := apiclient.For[LoginResult](s.client).Post(ctx, "/admin/login", LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, fmt.Errorf("logging in as admin: %w", err)
	}

	err = s.store.SaveAdminToken(ctx, env.Data.Token)
	if err != nil {
		return nil, fmt.Errorf("saving admin token: %w", err)
	}

	return &env.Data, nil
}

// Stats returns platform statistics.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	env, err := apiclient.For[AdminStats](s.client).Get(ctx, "/admin/stats", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting admin stats: %w", err)
	}

	return &env.Data, nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return constants.ErrEmailRequired
	}

	if password == "" {
		return constants.ErrPasswordRequired
	}

	return nil
}

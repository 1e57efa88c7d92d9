package apiclient

import (
	"context"
	"errors"

	"github.com/fivetwenty-io/apiclient/internal/constants"
)

// SessionEvent describes the response that ended a session.
type SessionEvent struct {
	BaseURL    string
	Method     string
	Path       string
	StatusCode int
}

// SessionExpiredHandler reacts to a 401 or 403 from any endpoint. It is
// called once per such response; concurrent failures each call it.
type SessionExpiredHandler interface {
	SessionExpired(ctx context.Context, event SessionEvent)
}

// SessionExpiredFunc adapts a function to SessionExpiredHandler.
type SessionExpiredFunc func(ctx context.Context, event SessionEvent)

// SessionExpired implements SessionExpiredHandler.
func (f SessionExpiredFunc) SessionExpired(ctx context.Context, event SessionEvent) {
	f(ctx, event)
}

// SessionExpiredHandlers fans an event out to every handler in order.
type SessionExpiredHandlers []SessionExpiredHandler

// SessionExpired implements SessionExpiredHandler.
func (h SessionExpiredHandlers) SessionExpired(ctx context.Context, event SessionEvent) {
	for _, handler := range h {
		if handler != nil {
			handler.SessionExpired(ctx, event)
		}
	}
}

// Navigator sends the application to a route.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	f(ctx, route)
}

// Logout clears credentials.
type Logout interface {
	Clear(ctx context.Context) error
}

// LogoutRedirect is the default SessionExpiredHandler: it clears every
// credential and then navigates to the login route, unconditionally.
type LogoutRedirect struct {
	Store      Logout
	Navigator  Navigator
	LoginRoute string
	Logger     Logger
}

// SessionExpired implements SessionExpiredHandler.
func (l *LogoutRedirect) SessionExpired(ctx context.Context, event SessionEvent) {
	logger := l.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	logger.Warn("session expired", map[string]interface{}{
		"base_url":    event.BaseURL,
		"method":      event.Method,
		"path":        event.Path,
		"status_code": event.StatusCode,
	})

	if l.Store != nil {
		// Clearing must not depend on the caller's context still being live.
		err := l.Store.Clear(context.WithoutCancel(ctx))
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			logger.Error("failed to clear credentials", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if l.Navigator != nil {
		route := l.LoginRoute
		if route == "" {
			route = constants.DefaultLoginRoute
		}

		l.Navigator.Navigate(ctx, route)
	}
}

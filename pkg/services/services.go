// Package services wires one apiclient.Client per backend area and exposes
// thin typed services on top of them. Every client shares one TokenStore
// and one session expired reaction.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
)

// ErrAreaNotConfigured is returned when a service's area has no endpoint.
var ErrAreaNotConfigured = errors.New("backend area not configured")

// Settings describes the backends to connect to.
type Settings struct {
	// Endpoints maps an area (auth, users, dashboard, admin) to its endpoint.
	Endpoints map[string]apiclient.Endpoint
	// LoginRoute is where the navigator is sent when a session expires.
	LoginRoute string
	Debug      bool
	UserAgent  string
	RetryMax   int
}

type options struct {
	durable       apiclient.Storage
	session       apiclient.Storage
	navigator     apiclient.Navigator
	logger        apiclient.Logger
	handlers      []apiclient.SessionExpiredHandler
	clientOptions []apiclient.Option
}

// Option configures New.
type Option func(*options)

// WithStorage sets the durable and session credential tiers. Both default
// to memory storage.
func WithStorage(durable, session apiclient.Storage) Option {
	return func(o *options) {
		o.durable = durable
		o.session = session
	}
}

// WithNavigator sets where the application is sent when a session expires.
func WithNavigator(navigator apiclient.Navigator) Option {
	return func(o *options) {
		o.navigator = navigator
	}
}

// WithLogger sets the logger shared by every client.
func WithLogger(logger apiclient.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSessionExpiredHandler adds a handler that runs after the built-in
// logout and redirect.
func WithSessionExpiredHandler(handler apiclient.SessionExpiredHandler) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, handler)
	}
}

// WithClientOptions passes extra options to every client.
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// Services holds the per-area clients.
type Services struct {
	store   *apiclient.TokenStore
	clients map[string]*apiclient.Client
	logger  apiclient.Logger
}

// New builds a client for every configured area.
func New(settings Settings, opts ...Option) (*Services, error) {
	o := &options{logger: apiclient.NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = apiclient.NopLogger{}
	}

	if o.durable == nil {
		o.durable = apiclient.NewMemoryStorage()
	}

	if o.session == nil {
		o.session = apiclient.NewMemoryStorage()
	}

	store := apiclient.NewTokenStore(o.durable, o.session, o.logger)

	handler := apiclient.SessionExpiredHandlers{
		&apiclient.LogoutRedirect{
			Store:      store,
			Navigator:  o.navigator,
			LoginRoute: settings.LoginRoute,
			Logger:     o.logger,
		},
	}
	handler = append(handler, o.handlers...)

	clientOpts := []apiclient.Option{
		apiclient.WithCredentials(store),
		apiclient.WithSessionExpiredHandler(handler),
		apiclient.WithLogger(o.logger),
		apiclient.WithDebug(settings.Debug),
	}

	if settings.UserAgent != "" {
		clientOpts = append(clientOpts, apiclient.WithUserAgent(settings.UserAgent))
	}

	if settings.RetryMax > 0 {
		clientOpts = append(clientOpts, apiclient.WithRetryConfig(settings.RetryMax, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax))
	}

	clientOpts = append(clientOpts, o.clientOptions...)

	clients := make(map[string]*apiclient.Client, len(settings.Endpoints))

	for area, endpoint := range settings.Endpoints {
		client, err := apiclient.New(endpoint, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", area, err)
		}

		clients[area] = client
	}

	return &Services{store: store, clients: clients, logger: o.logger}, nil
}

// Store returns the shared token store.
func (s *Services) Store() *apiclient.TokenStore {
	return s.store
}

// Client returns the raw client for area.
func (s *Services) Client(area string) (*apiclient.Client, error) {
	client, ok := s.clients[area]
	if !ok {
		return nil, fmt.Errorf("%q: %w", area, ErrAreaNotConfigured)
	}

	return client, nil
}

// Auth returns the auth service.
func (s *Services) Auth() (*AuthService, error) {
	client, err := s.Client(constants.AreaAuth)
	if err != nil {
		return nil, err
	}

	return &AuthService{client: client, store: s.store, logger: s.logger, logoutTimeout: constants.ShortHTTPTimeout}, nil
}

// Admin returns the admin service.
func (s *Services) Admin() (*AdminService, error) {
	client, err := s.Client(constants.AreaAdmin)
	if err != nil {
		return nil, err
	}

	return &AdminService{client: client, store: s.store}, nil
}

// Users returns the users service.
func (s *Services) Users() (*UsersService, error) {
	client, err := s.Client(constants.AreaUsers)
	if err != nil {
		return nil, err
	}

	return &UsersService{client: client}, nil
}

// Dashboard returns the dashboard service.
func (s *Services) Dashboard() (*DashboardService, error) {
	client, err := s.Client(constants.AreaDashboard)
	if err != nil {
		return nil, err
	}

	return &DashboardService{client: client}, nil
}

// Timeout returns the timeout of area's endpoint, or zero when the area is
// not configured.
func (s *Services) Timeout(area string) time.Duration {
	client, ok := s.clients[area]
	if !ok {
		return 0
	}

	return client.Endpoint().Timeout
}

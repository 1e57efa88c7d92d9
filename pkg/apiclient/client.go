package apiclient

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	internalhttp "github.com/fivetwenty-io/apiclient/internal/http"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Endpoint is the fixed configuration of one backend area. A Client keeps
// its own copy; changing environment means building a new Client.
type Endpoint struct {
	// BaseURL is an absolute http(s) URL every request path is relative to.
	BaseURL string
	// Headers are sent with every request. Per-call headers override them.
	Headers map[string]string
	// Timeout bounds each request. Zero means constants.DefaultHTTPTimeout.
	Timeout time.Duration
}

// NewEndpoint returns an endpoint with the default JSON headers.
func NewEndpoint(baseURL string, timeout time.Duration) Endpoint {
	return Endpoint{
		BaseURL: baseURL,
		Headers: map[string]string{
			constants.HeaderContentType: constants.ContentTypeJSON,
			constants.HeaderAccept:      constants.ContentTypeJSON,
		},
		Timeout: timeout,
	}
}

func (e Endpoint) clone() Endpoint {
	e.Headers = maps.Clone(e.Headers)
	if e.Headers == nil {
		e.Headers = make(map[string]string)
	}

	return e
}

func (e Endpoint) validate() error {
	if strings.TrimSpace(e.BaseURL) == "" {
		return ErrBaseURLRequired
	}

	parsed, err := url.Parse(e.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, e.BaseURL)
	}

	return nil
}

type clientOptions struct {
	credentials          CredentialProvider
	sessionHandler       SessionExpiredHandler
	logger               Logger
	debug                bool
	userAgent            string
	retryMax             int
	retryWaitMin         time.Duration
	retryWaitMax         time.Duration
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// Option configures a Client.
type Option func(*clientOptions)

// WithCredentials sets the provider consulted for every request's bearer token.
func WithCredentials(provider CredentialProvider) Option {
	return func(o *clientOptions) {
		o.credentials = provider
	}
}

// WithSessionExpiredHandler sets the reaction to 401 and 403 responses.
func WithSessionExpiredHandler(handler SessionExpiredHandler) Option {
	return func(o *clientOptions) {
		o.sessionHandler = handler
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(o *clientOptions) {
		o.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithRetryConfig turns on transport retries for connection errors, 429
// and 5xx. Retries are off by default.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(o *clientOptions) {
		o.retryMax = retryMax
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// WithRequestInterceptor appends a request interceptor. It runs after the
// built-in request id and authentication interceptors.
func WithRequestInterceptor(interceptor RequestInterceptor) Option {
	return func(o *clientOptions) {
		o.requestInterceptors = append(o.requestInterceptors, interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor. It runs before
// classification, so it sees failed responses too.
func WithResponseInterceptor(interceptor ResponseInterceptor) Option {
	return func(o *clientOptions) {
		o.responseInterceptors = append(o.responseInterceptors, interceptor)
	}
}

// Client sends requests to one Endpoint. Its methods are the raw surface:
// they return the full Response on success and an *Error on failure. Use
// For or Transform for typed results. A Client is safe for concurrent use.
type Client struct {
	endpoint  Endpoint
	transport *internalhttp.Client
	chain     *InterceptorChain
}

// New creates a client bound to endpoint.
func New(endpoint Endpoint, opts ...Option) (*Client, error) {
	endpoint = endpoint.clone()

	err := endpoint.validate()
	if err != nil {
		return nil, err
	}

	if endpoint.Timeout <= 0 {
		endpoint.Timeout = constants.DefaultHTTPTimeout
	}

	options := &clientOptions{logger: NopLogger{}}
	for _, opt := range opts {
		opt(options)
	}

	if options.logger == nil {
		options.logger = NopLogger{}
	}

	transportOpts := []internalhttp.Option{
		internalhttp.WithLogger(options.logger),
		internalhttp.WithDebug(options.debug),
	}

	if options.userAgent != "" {
		transportOpts = append(transportOpts, internalhttp.WithUserAgent(options.userAgent))
	}

	if options.retryMax > 0 {
		waitMin := options.retryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := options.retryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		transportOpts = append(transportOpts, internalhttp.WithRetryConfig(options.retryMax, waitMin, waitMax))
	}

	chain := NewInterceptorChain()
	chain.AddRequestInterceptor(RequestIDInterceptor())
	chain.AddRequestInterceptor(AuthenticationInterceptor(options.credentials))

	for _, interceptor := range options.requestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	if options.debug {
		chain.AddRequestInterceptor(LoggingInterceptor(options.logger))
		chain.AddResponseInterceptor(LoggingResponseInterceptor(options.logger))
	}

	for _, interceptor := range options.responseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	chain.AddResponseInterceptor(ClassificationInterceptor(endpoint.BaseURL, options.sessionHandler))

	return &Client{
		endpoint:  endpoint,
		transport: internalhttp.NewClient(endpoint.BaseURL, endpoint.Timeout, transportOpts...),
		chain:     chain,
	}, nil
}

// Endpoint returns a copy of the client's endpoint.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint.clone()
}

// Do sends req through the interceptor chains. Exactly one of the results
// is non-nil.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, &Error{Kind: KindUnclassified, Message: internalhttp.ErrNilRequest.Error(), Err: internalhttp.ErrNilRequest}
	}

	req.Headers = c.mergeHeaders(req.Headers)

	err := c.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, asError(fmt.Errorf("request interceptor failed: %w", err))
	}

	resp := c.send(ctx, req)

	err = c.chain.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return nil, asError(err)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request) *Response {
	httpResp, err := c.transport.Do(ctx, &internalhttp.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: req.Headers,
		Body:    req.Body,
	})
	if err != nil {
		return &Response{Error: err}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Headers,
		Body:       httpResp.Body,
	}
}

func (c *Client) mergeHeaders(extra http.Header) http.Header {
	headers := make(http.Header, len(c.endpoint.Headers)+len(extra))

	for key, value := range c.endpoint.Headers {
		headers.Set(key, value)
	}

	for key, values := range extra {
		headers.Del(key)

		for _, value := range values {
			headers.Add(key, value)
		}
	}

	return headers
}

// Get performs a GET request with query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: params, Headers: toHeader(headers)})
}

// Delete performs a DELETE request with query parameters.
func (c *Client) Delete(ctx context.Context, path string, params url.Values, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: params, Headers: toHeader(headers)})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Headers: toHeader(headers)})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body, Headers: toHeader(headers)})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body, Headers: toHeader(headers)})
}

// UploadFile POSTs upload as multipart/form-data.
func (c *Client) UploadFile(ctx context.Context, path string, upload *Upload, headers map[string]string) (*Response, error) {
	return c.upload(ctx, http.MethodPost, path, upload, headers)
}

// UploadFileWithPut PUTs upload as multipart/form-data.
func (c *Client) UploadFileWithPut(ctx context.Context, path string, upload *Upload, headers map[string]string) (*Response, error) {
	return c.upload(ctx, http.MethodPut, path, upload, headers)
}

func (c *Client) upload(ctx context.Context, method, path string, upload *Upload, headers map[string]string) (*Response, error) {
	body, contentType, err := upload.encode()
	if err != nil {
		return nil, asError(err)
	}

	header := toHeader(headers)
	if header == nil {
		header = make(http.Header)
	}

	header.Set(constants.HeaderContentType, contentType)

	return c.Do(ctx, &Request{Method: method, Path: path, Body: body, Headers: header})
}

func toHeader(headers map[string]string) http.Header {
	if len(headers) == 0 {
		return nil
	}

	header := make(http.Header, len(headers))
	for key, value := range headers {
		header.Set(key, value)
	}

	return header
}

// asError guarantees callers only ever see *Error.
func asError(err error) *Error {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return &Error{Kind: KindUnclassified, Message: err.Error(), Err: err}
}

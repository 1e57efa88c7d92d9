package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apihttp "github.com/fivetwenty-io/apiclient/internal/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/users", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "apiclient-go/1.0", request.Header.Get("User-Agent"))

			response := map[string]string{"id": "u1", "email": "a@example.com"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL+"/api/", time.Second)

		req := &apihttp.Request{
			Method: "GET",
			Path:   "/users",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "u1", result["id"])
		assert.Equal(t, "a@example.com", result["email"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/users", request.URL.Path)
			assert.Equal(t, "limit=10&page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, 0)

		req := &apihttp.Request{
			Method: "GET",
			Path:   "/users",
			Query:  url.Values{"page": []string{"2"}, "limit": []string{"10"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "a@example.com", body["email"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second)

		resp, err := client.Do(context.Background(), &apihttp.Request{
			Method:  http.MethodPost,
			Path:    "/users",
			Headers: http.Header{"Content-Type": {"application/json"}},
			Body:    map[string]string{"email": "a@example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("raw bodies pass through", func(t *testing.T) {
		t.Parallel()

		var received []string

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			data, _ := io.ReadAll(request.Body)
			received = append(received, string(data))
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second)

		for _, body := range []interface{}{[]byte("bytes"), "text", bytes.NewReader([]byte("reader"))} {
			_, err := client.Do(context.Background(), &apihttp.Request{Method: "PUT", Path: "/raw", Body: body})
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"bytes", "text", "reader"}, received)
	})

	t.Run("error status is a response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"User not found"}`))
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second)

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/users/invalid"})
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.JSONEq(t, `{"message":"User not found"}`, string(resp.Body))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "apictl", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithUserAgent("apictl"))

		req := &apihttp.Request{
			Method: "GET",
			Path:   "/users",
			Headers: http.Header{
				"X-Custom-Header": []string{"custom-value"},
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-release:
			case <-request.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := apihttp.NewClient(server.URL, 50*time.Millisecond)

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/slow"})
		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()

		client := apihttp.NewClient("http://localhost", time.Second)

		_, err := client.Do(context.Background(), nil)
		require.ErrorIs(t, err, apihttp.ErrNilRequest)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithLogger(logger), apihttp.WithDebug(true))

		req := &apihttp.Request{
			Method: "GET",
			Path:   "/users",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		var messages []interface{}
		for _, entry := range logger.logs {
			messages = append(messages, entry["msg"])
		}

		assert.Contains(t, messages, "HTTP Request")
		assert.Contains(t, messages, "HTTP Response")
	})
}

func TestClient_ResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		path     string
		query    url.Values
		expected string
	}{
		{name: "leading slash", baseURL: "https://api.example.com/api", path: "/users", expected: "https://api.example.com/api/users"},
		{name: "trailing slash on base", baseURL: "https://api.example.com/api/", path: "users", expected: "https://api.example.com/api/users"},
		{name: "both slashes", baseURL: "https://api.example.com/api/", path: "//users", expected: "https://api.example.com/api/users"},
		{name: "empty path", baseURL: "https://api.example.com/api", path: "", expected: "https://api.example.com/api"},
		{name: "absolute path", baseURL: "https://api.example.com/api", path: "https://cdn.example.com/x", expected: "https://cdn.example.com/x"},
		{
			name:     "query merged with inline query",
			baseURL:  "https://api.example.com",
			path:     "/users?sort=name",
			query:    url.Values{"page": {"1"}},
			expected: "https://api.example.com/users?page=1&sort=name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolved, err := apihttp.NewClient(tt.baseURL, time.Second).ResolveURL(tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := apihttp.NewClient(server.URL, time.Second)

			resp, err := client.Do(context.Background(), &apihttp.Request{
				Method: method,
				Path:   "/test",
				Body:   map[string]string{"key": "value"},
			})
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte("boom"))
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second)

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/test"})
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "boom", string(resp.Body))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/test"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/test"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("exhausted retries return the last response", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadGateway)
			_, _ = writer.Write([]byte(strings.Repeat("x", 3)))
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/test"})
		require.NoError(t, err)
		assert.Equal(t, 502, resp.StatusCode)
		assert.Equal(t, "xxx", string(resp.Body))
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, time.Second, apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &apihttp.Request{Method: http.MethodGet, Path: "/test"})
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

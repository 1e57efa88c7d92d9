package apiclient_test

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []logEntry
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, logEntry{level: level, msg: msg, fields: fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

// recordingNavigator remembers every route it was sent to.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(ctx context.Context, route string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.routes...)
}

// countingStore counts Clear calls and delegates to a TokenStore.
type countingStore struct {
	mu     sync.Mutex
	clears int
	store  *apiclient.TokenStore
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()

	return s.store.Clear(ctx)
}

func (s *countingStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clears
}

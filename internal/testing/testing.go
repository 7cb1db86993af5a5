// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Upsert records one call to [MockStore.Upsert].
type Upsert struct {
	Name    string
	Payload []byte
	Usage   int64
}

// MockStore is an in-memory test double for [models.SnapshotStore] and [models.SnapshotCatalog].
//
// Setting Err makes every call fail with it.
type MockStore struct {
	mu      sync.Mutex
	Err     error
	Upserts []Upsert
	rows    map[string]Upsert
	updated map[string]time.Time
	Closed  bool
}

func NewMockStore() *MockStore {
	return &MockStore{rows: make(map[string]Upsert), updated: make(map[string]time.Time)}
}

func (m *MockStore) Upsert(ctx context.Context, name string, payload []byte, usage int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u := Upsert{Name: name, Payload: append([]byte(nil), payload...), Usage: usage}
	m.Upserts = append(m.Upserts, u)
	m.rows[name] = u
	m.updated[name] = time.Now()
	return nil
}

func (m *MockStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.rows[name]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	return u.Payload, nil
}

func (m *MockStore) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.SnapshotInfo, 0, len(m.rows))
	for name, u := range m.rows {
		out = append(out, models.SnapshotInfo{Name: name, Usage: u.Usage, Size: len(u.Payload), UpdatedAt: m.updated[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.rows[name]; !ok {
		return shared.ErrSnapshotNotFound
	}
	delete(m.rows, name)
	delete(m.updated, name)
	return nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clear(m.rows)
	clear(m.updated)
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Names returns the names passed to Upsert, in call order.
func (m *MockStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Upserts))
	for i, u := range m.Upserts {
		names[i] = u.Name
	}
	return names
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

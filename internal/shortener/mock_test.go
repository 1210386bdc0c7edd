package shortener_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com/some/long/path"

// journal records adapter calls across mocks so tests can assert ordering.
type journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *journal) record(call string) {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.calls = append(j.calls, call)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]string(nil), j.calls...)
}

// mockStore is an in-memory shortener.Store with a unique code index and
// configurable failures.
type mockStore struct {
	mu          sync.Mutex
	links       map[shortener.Code]*shortener.Link
	order       []shortener.Code
	taken       map[shortener.Code]bool // reported by ExistsByCode only
	addErr      error
	existsErr   error
	getErr      error
	recentErr   error
	deleteErr   error
	existsCalls int
	getCalls    int
	journal     *journal
}

func newMockStore() *mockStore {
	return &mockStore{
		links: make(map[shortener.Code]*shortener.Link),
		taken: make(map[shortener.Code]bool),
	}
}

func (m *mockStore) Add(_ context.Context, link *shortener.Link) error {
	m.journal.record("store.add")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return m.addErr
	}

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrCodeConflict
	}

	stored := *link
	m.links[link.Code] = &stored
	m.order = append(m.order, link.Code)

	return nil
}

func (m *mockStore) ExistsByCode(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.existsCalls++

	if m.existsErr != nil {
		return false, m.existsErr
	}

	_, ok := m.links[code]

	return ok || m.taken[code], nil
}

func (m *mockStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++

	if m.getErr != nil {
		return nil, m.getErr
	}

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *link

	return &found, nil
}

func (m *mockStore) GetRecent(_ context.Context, count int) ([]*shortener.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recentErr != nil {
		return nil, m.recentErr
	}

	var out []*shortener.Link

	for i := len(m.order) - 1; i >= 0 && len(out) < count; i-- {
		link := *m.links[m.order[i]]
		out = append(out, &link)
	}

	return out, nil
}

func (m *mockStore) Delete(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	if _, ok := m.links[code]; !ok {
		return shortener.ErrNotFound
	}

	delete(m.links, code)

	return nil
}

func (m *mockStore) put(link *shortener.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.Code] = link
	m.order = append(m.order, link.Code)
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.links)
}

// mockCache is an in-memory shortener.Cache with configurable failures.
type mockCache struct {
	mu        sync.Mutex
	values    map[string]string
	ttls      map[string]time.Duration
	getErr    error
	setErr    error
	incrErr   error
	expireErr error
	deleteErr error
	setCalls  int
	journal   *journal
}

func newMockCache() *mockCache {
	return &mockCache{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *mockCache) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return "", m.getErr
	}

	v, ok := m.values[key]
	if !ok {
		return "", shortener.ErrCacheMiss
	}

	return v, nil
}

func (m *mockCache) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	m.journal.record("cache.set")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setCalls++

	if m.setErr != nil {
		return m.setErr
	}

	m.values[key] = value
	m.ttls[key] = ttl

	return nil
}

func (m *mockCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.incrErr != nil {
		return 0, m.incrErr
	}

	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)

	return n, nil
}

func (m *mockCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expireErr != nil {
		return m.expireErr
	}

	m.ttls[key] = ttl

	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	for _, key := range keys {
		delete(m.values, key)
		delete(m.ttls, key)
	}

	return nil
}

func (m *mockCache) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]

	return v, ok
}

func (m *mockCache) ttl(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ttls[key]
}

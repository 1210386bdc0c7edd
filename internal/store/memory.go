package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Store.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[shortener.Code]shortener.Link
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[shortener.Code]shortener.Link),
	}
}

func (m *MemoryStore) Add(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrCodeConflict
	}

	m.links[link.Code] = *link

	return nil
}

func (m *MemoryStore) ExistsByCode(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]

	return ok, nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) GetRecent(_ context.Context, count int) ([]*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*shortener.Link, 0, len(m.links))

	for _, link := range m.links {
		links = append(links, &link)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	if len(links) > count {
		links = links[:count]
	}

	return links, nil
}

func (m *MemoryStore) Delete(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[code]; !ok {
		return shortener.ErrNotFound
	}

	delete(m.links, code)

	return nil
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process implementation of shortener.Cache with lazy TTL expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for TTLs.
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.now = now

	return m
}

func (m *MemoryCache) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		return "", shortener.ErrCacheMiss
	}

	return entry.value, nil
}

func (m *MemoryCache) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.deadline(ttl)}

	return nil
}

func (m *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, _ := m.live(key)

	var n int64

	if entry.value != "" {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, err
		}

		n = parsed
	}

	n++
	entry.value = strconv.FormatInt(n, 10)
	m.entries[key] = entry

	return n, nil
}

func (m *MemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		return nil
	}

	entry.expiresAt = m.deadline(ttl)
	m.entries[key] = entry

	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}

	return nil
}

// live returns the entry for key, dropping it if it has expired. Callers hold mu.
func (m *MemoryCache) live(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}

	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)

		return memoryEntry{}, false
	}

	return entry, true
}

func (m *MemoryCache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return m.now().Add(ttl)
}

// Compile-time checks.
var (
	_ shortener.Store = (*MemoryStore)(nil)
	_ shortener.Cache = (*MemoryCache)(nil)
)

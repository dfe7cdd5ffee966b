package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	record LinkRecord
	seq    uint64
}

type MemoryStorage struct {
	mu    sync.RWMutex
	links map[string]*memoryEntry
	seq   uint64
	now   func() time.Time
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		links: make(map[string]*memoryEntry),
		now:   time.Now,
	}, nil
}

func (m *MemoryStorage) Insert(_ context.Context, code, targetURL string) (*LinkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertLocked(LinkRecord{Code: code, TargetURL: targetURL, CreatedAt: m.now().UTC()})
}

func (m *MemoryStorage) insertLocked(r LinkRecord) (*LinkRecord, error) {
	if _, exists := m.links[r.Code]; exists {
		return nil, ErrConflict
	}

	m.seq++
	m.links[r.Code] = &memoryEntry{record: r, seq: m.seq}

	return copyRecord(r), nil
}

func (m *MemoryStorage) FindByCode(_ context.Context, code string) (*LinkRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.links[code]
	if !ok {
		return nil, ErrNotFound
	}

	return copyRecord(e.record), nil
}

// FindAll returns every link, newest first. Links created within the same
// clock tick keep their insertion order.
func (m *MemoryStorage) FindAll(_ context.Context) ([]LinkRecord, error) {
	m.mu.RLock()
	entries := make([]*memoryEntry, 0, len(m.links))
	for _, e := range m.links {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})

	records := make([]LinkRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, *copyRecord(e.record))
	}

	return records, nil
}

func (m *MemoryStorage) DeleteByCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.links, code)
	return nil
}

func (m *MemoryStorage) IncrementClicks(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.incrementLocked(code, m.now().UTC())
}

func (m *MemoryStorage) incrementLocked(code string, at time.Time) error {
	e, ok := m.links[code]
	if !ok {
		return ErrNotFound
	}

	if at.Before(e.record.CreatedAt) {
		at = e.record.CreatedAt
	}

	e.record.TotalClicks++
	e.record.LastClickedAt = &at
	return nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}

func copyRecord(r LinkRecord) *LinkRecord {
	c := r
	if r.LastClickedAt != nil {
		t := *r.LastClickedAt
		c.LastClickedAt = &t
	}
	return &c
}

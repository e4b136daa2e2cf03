package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// MemoryProfiles is a ProfileRepository held in process memory.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryProfiles creates an empty in-memory profile repository.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]Profile)}
}

func (m *MemoryProfiles) Get(ctx context.Context, id string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryProfiles) List(ctx context.Context) ([]Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.Clone())
	}
	sortProfiles(out)
	return out, nil
}

func (m *MemoryProfiles) Put(ctx context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *MemoryProfiles) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

func sortProfiles(ps []Profile) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := strings.ToLower(ps[i].Name), strings.ToLower(ps[j].Name)
		if a != b {
			return a < b
		}
		return ps[i].ID < ps[j].ID
	})
}

// MemoryHistory is a HistoryRepository held in process memory.
type MemoryHistory struct {
	mu      sync.Mutex
	limit   int
	entries []validation.HistoryEntry // most recent first
}

// NewMemoryHistory creates a history that keeps at most limit entries.
// A non-positive limit uses DefaultHistoryLimit.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{limit: limit}
}

func (h *MemoryHistory) Add(ctx context.Context, entry validation.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]validation.HistoryEntry, 0, h.limit)
	entries = append(entries, entry)
	entries = append(entries, h.entries...)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = entries
	return nil
}

func (h *MemoryHistory) List(ctx context.Context) ([]validation.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]validation.HistoryEntry{}, h.entries...), nil
}

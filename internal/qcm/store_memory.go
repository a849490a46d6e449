package qcm

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the degraded mode used when no row-store is configured.
// Process-lifetime only, shared across requests, so access is mutex guarded.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Summary{}
	for _, rec := range s.recs {
		if rec.UserID != userID {
			continue
		}
		out = append(out, Summary{
			ID:        rec.ID,
			UserID:    rec.UserID,
			Name:      rec.Name,
			Score:     rec.Score,
			CreatedAt: rec.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

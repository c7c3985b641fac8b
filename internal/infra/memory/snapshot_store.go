package memory

import (
	"context"
	"sync"

	"mbti-test-service/internal/domain"
)

// SnapshotStore is an in-memory implementation of app.SnapshotStore, keyed by
// user and variant.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.Snapshot),
	}
}

func (s *SnapshotStore) Load(_ context.Context, userID string, variant domain.Variant) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key(userID, variant)]
	return snap, ok, nil
}

func (s *SnapshotStore) Save(_ context.Context, userID string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key(userID, snap.Variant)] = snap
	return nil
}

func (s *SnapshotStore) Clear(_ context.Context, userID string, variant domain.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, key(userID, variant))
	return nil
}

func key(userID string, variant domain.Variant) string {
	return userID + "|" + string(variant)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mbti-test-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SnapshotStore persists session snapshots as JSON values in Redis, one key
// per user and variant. The key TTL mirrors the 24h resumability window, so
// Redis expires what the restore checks would reject anyway.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = domain.SnapshotMaxAge
	}
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Load(ctx context.Context, userID string, variant domain.Variant) (domain.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key(userID, variant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Malformed persisted data is equivalent to no snapshot.
		_ = s.client.Del(ctx, s.key(userID, variant)).Err()
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *SnapshotStore) Save(ctx context.Context, userID string, snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID, snap.Variant), raw, s.ttl).Err()
}

func (s *SnapshotStore) Clear(ctx context.Context, userID string, variant domain.Variant) error {
	return s.client.Del(ctx, s.key(userID, variant)).Err()
}

func (s *SnapshotStore) key(userID string, variant domain.Variant) string {
	return "mbti:progress:" + string(variant) + ":" + userID
}

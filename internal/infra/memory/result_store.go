package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mbti-test-service/internal/domain"
)

// ResultStore keeps completed test records in memory (useful for tests/demos).
type ResultStore struct {
	mu      sync.RWMutex
	records map[string]domain.TestRecord
	nextID  int
}

func NewResultStore() *ResultStore {
	return &ResultStore{records: make(map[string]domain.TestRecord)}
}

func (s *ResultStore) Save(_ context.Context, record domain.TestRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("result-%d", s.nextID)
	record.ID = id
	s.records[id] = record
	return id, nil
}

func (s *ResultStore) List(_ context.Context, userID string, limit int) ([]domain.TestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []domain.TestRecord
	for _, record := range s.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *ResultStore) Get(_ context.Context, id string) (domain.TestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return domain.TestRecord{}, domain.ErrResultNotFound
	}
	return record, nil
}

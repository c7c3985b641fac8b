package memory

import (
	"context"
	"sync"

	"mbti-test-service/internal/domain"
)

// ReportStore serves type reports from an in-memory map.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.Report
}

func NewReportStore(reports map[string]domain.Report) *ReportStore {
	if reports == nil {
		reports = make(map[string]domain.Report)
	}
	return &ReportStore{reports: reports}
}

func (s *ReportStore) GetReport(_ context.Context, typeCode string) (domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[typeCode]
	if !ok {
		return domain.Report{}, domain.ErrReportNotFound
	}
	return report, nil
}

// Put adds or replaces a report (used by seeding and tests).
func (s *ReportStore) Put(report domain.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.TypeCode] = report
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mbti-test-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ReportStore loads report JSONB from Postgres.
type ReportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

func (s *ReportStore) GetReport(ctx context.Context, typeCode string) (domain.Report, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM reports WHERE type_code=$1`, typeCode).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("load report: %w", err)
	}
	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.Report{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mbti-test-service/internal/domain"
	"github.com/uptrace/bun"
)

// resultRow is the bun model for the test_results table. The full record is
// kept as JSONB next to the queryable columns.
type resultRow struct {
	bun.BaseModel `bun:"table:test_results"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id"`
	Variant     string    `bun:"variant"`
	CompletedAt time.Time `bun:"completed_at"`
	Data        []byte    `bun:"data,type:jsonb"`
}

// ResultStore persists completed test records in Postgres via bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Save(ctx context.Context, record domain.TestRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	row := &resultRow{
		UserID:      record.UserID,
		Variant:     string(record.Variant),
		CompletedAt: record.CompletedAt,
		Data:        data,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return strconv.FormatInt(row.ID, 10), nil
}

func (s *ResultStore) List(ctx context.Context, userID string, limit int) ([]domain.TestRecord, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	records := make([]domain.TestRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.decode()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ResultStore) Get(ctx context.Context, id string) (domain.TestRecord, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.TestRecord{}, domain.ErrResultNotFound
	}
	row := new(resultRow)
	err = s.db.NewSelect().Model(row).Where("id = ?", numericID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TestRecord{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.TestRecord{}, fmt.Errorf("get result: %w", err)
	}
	return row.decode()
}

func (r resultRow) decode() (domain.TestRecord, error) {
	var record domain.TestRecord
	if err := json.Unmarshal(r.Data, &record); err != nil {
		return domain.TestRecord{}, fmt.Errorf("unmarshal result: %w", err)
	}
	record.ID = strconv.FormatInt(r.ID, 10)
	return record, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"mbti-test-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionFile struct {
	Questions []domain.Question `json:"questions"`
}

type reportFile struct {
	Reports []domain.Report `json:"reports"`
}

// SeedQuestions imports a catalog JSON file ({"questions": [...]}) into the
// questions table, replacing existing rows for the same variant and ID.
func SeedQuestions(ctx context.Context, db *bun.DB, variant domain.Variant, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read questions file: %w", err)
	}
	var file questionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse questions file: %w", err)
	}

	for i := range file.Questions {
		q := &file.Questions[i]
		q.Variant = variant
		data, err := json.Marshal(q)
		if err != nil {
			return 0, fmt.Errorf("marshal question %d: %w", q.ID, err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO questions (variant, question_id, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (variant, question_id) DO UPDATE SET data=EXCLUDED.data`,
			string(variant), q.ID, string(data))
		if err != nil {
			return 0, fmt.Errorf("insert question %d: %w", q.ID, err)
		}
	}
	return len(file.Questions), nil
}

// SeedReports imports a report JSON file ({"reports": [...]}) into the
// reports table.
func SeedReports(ctx context.Context, db *bun.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read reports file: %w", err)
	}
	var file reportFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse reports file: %w", err)
	}

	for _, report := range file.Reports {
		data, err := json.Marshal(report)
		if err != nil {
			return 0, fmt.Errorf("marshal report %s: %w", report.TypeCode, err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO reports (type_code, data) VALUES (?, ?::jsonb)
			 ON CONFLICT (type_code) DO UPDATE SET data=EXCLUDED.data`,
			report.TypeCode, string(data))
		if err != nil {
			return 0, fmt.Errorf("insert report %s: %w", report.TypeCode, err)
		}
	}
	return len(file.Reports), nil
}

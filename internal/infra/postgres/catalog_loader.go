package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"mbti-test-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads question JSONB rows from Postgres, ordered by question ID.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, variant domain.Variant) (domain.Catalog, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT data FROM questions WHERE variant=$1 ORDER BY question_id`, string(variant))
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	catalog := domain.Catalog{Variant: variant}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan question: %w", err)
		}
		var question domain.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			return domain.Catalog{}, fmt.Errorf("unmarshal question: %w", err)
		}
		catalog.Questions = append(catalog.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	if catalog.Len() == 0 {
		return domain.Catalog{}, fmt.Errorf("%w: variant %s", domain.ErrCatalogUnavailable, variant)
	}
	return catalog, nil
}

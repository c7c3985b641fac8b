package memory

import (
	"context"
	"testing"
	"time"

	"mbti-test-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[domain.Variant]domain.Catalog{
			domain.VariantSimple: sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), domain.VariantSimple); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), domain.VariantSimple); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryUnknownVariant(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), domain.VariantDetailed); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, variant domain.Variant) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, variant)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Variant: domain.VariantSimple,
		Questions: []domain.Question{
			{
				ID:      1,
				Text:    "At a party you...",
				Group:   "EI",
				Variant: domain.VariantSimple,
				Options: []domain.Option{
					{Label: "A", Text: "Work the room", Dimension: "E", Weight: 1},
					{Label: "B", Text: "Stick with friends", Dimension: "I", Weight: 1},
				},
			},
		},
	}
}

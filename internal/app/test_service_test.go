package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mbti-test-service/internal/app"
	"mbti-test-service/internal/domain"
	"mbti-test-service/internal/infra/memory"
)

func TestStartAnswerCompleteFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(time.Now)

	view, err := env.service.StartTest(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.TotalQuestions != 24 || len(view.Questions) != 24 {
		t.Fatalf("expected 24 questions, got %+v", view)
	}

	for pos := 0; pos < 24; pos++ {
		if _, _, err := env.service.SelectAnswer(ctx, "u1", pos, "A"); err != nil {
			t.Fatalf("answer %d: %v", pos, err)
		}
	}

	record, err := env.service.CompleteTest(ctx, "u1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if record.Result.TypeCode != "ESTJ" {
		t.Fatalf("expected ESTJ, got %s", record.Result.TypeCode)
	}
	if record.Result.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %v", record.Result.Confidence)
	}
	if record.ID == "" {
		t.Fatalf("expected persisted record ID")
	}

	// Completion must clear the snapshot for good.
	if _, ok, _ := env.snapshots.Load(ctx, "u1", domain.VariantSimple); ok {
		t.Fatalf("snapshot must not survive completion")
	}

	records, err := env.service.ListResults(ctx, "u1", 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one stored record, got %d err=%v", len(records), err)
	}
}

func TestSuspendThenResume(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(func() time.Time { return t0 })

	if _, err := env.service.StartTest(ctx, "u1", domain.VariantSimple); err != nil {
		t.Fatalf("start: %v", err)
	}
	for pos := 0; pos < 10; pos++ {
		if _, _, err := env.service.SelectAnswer(ctx, "u1", pos, "A"); err != nil {
			t.Fatalf("answer %d: %v", pos, err)
		}
	}
	if _, err := env.service.Suspend(ctx, "u1"); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	// One hour later, e.g. after an app restart, the snapshot restores.
	later := env.withClock(func() time.Time { return t0.Add(time.Hour) })
	view, err := later.StartTest(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !view.Restored {
		t.Fatalf("expected snapshot restore")
	}
	if view.Position != 10 || view.AnsweredCount != 10 {
		t.Fatalf("expected resume at 10/10 answered, got %+v", view)
	}
}

func TestStaleSnapshotStartsFresh(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(func() time.Time { return t0 })

	_, _ = env.service.StartTest(ctx, "u1", domain.VariantSimple)
	_, _, _ = env.service.SelectAnswer(ctx, "u1", 0, "A")

	later := env.withClock(func() time.Time { return t0.Add(25 * time.Hour) })
	view, err := later.StartTest(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("expired snapshot must not surface an error, got %v", err)
	}
	if view.Restored || view.AnsweredCount != 0 {
		t.Fatalf("expected fresh session, got %+v", view)
	}
	if _, ok, _ := env.snapshots.Load(ctx, "u1", domain.VariantSimple); ok {
		t.Fatalf("rejected snapshot should be cleared")
	}
}

func TestMismatchedSnapshotDiscarded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(time.Now)

	// A snapshot whose answer array does not match the catalog length.
	_ = env.snapshots.Save(ctx, "u1", domain.Snapshot{
		Variant:       domain.VariantSimple,
		Answers:       []domain.Answer{{QuestionID: 1}},
		Started:       true,
		SavedAt:       time.Now(),
		SchemaVersion: domain.SnapshotSchemaVersion,
	})

	view, err := env.service.StartTest(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Restored {
		t.Fatalf("length mismatch must discard the snapshot")
	}
}

func TestScoreValidatesBeforeWork(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(time.Now)

	if _, err := env.service.Score(ctx, nil, domain.VariantSimple); !errors.Is(err, domain.ErrEmptyAnswers) {
		t.Fatalf("expected empty answers error, got %v", err)
	}
	if _, err := env.service.Score(ctx, []domain.Answer{{QuestionID: 1, Label: "A"}}, "wild"); !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected unknown variant error, got %v", err)
	}
}

func TestResultOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(time.Now)

	id, err := env.results.Save(ctx, domain.TestRecord{
		UserID:      "u1",
		Variant:     domain.VariantSimple,
		Result:      domain.ScoreResult{TypeCode: "INFP"},
		CompletedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed result: %v", err)
	}

	if _, err := env.service.GetResult(ctx, "u2", id); !errors.Is(err, domain.ErrResultForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := env.service.GetResult(ctx, "", id); !errors.Is(err, domain.ErrIdentityRequired) {
		t.Fatalf("expected identity required, got %v", err)
	}
	record, err := env.service.GetResult(ctx, "u1", id)
	if err != nil || record.Result.TypeCode != "INFP" {
		t.Fatalf("owner lookup failed: %+v err=%v", record, err)
	}
}

func TestSnapshotFailuresDegradeGracefully(t *testing.T) {
	ctx := context.Background()
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[domain.Variant]domain.Catalog{
		domain.VariantSimple: blockCatalog(),
	}), time.Minute)
	service := app.NewTestService(catalogs, failingSnapshots{}, memory.NewResultStore(), memory.NewReportStore(nil))

	view, err := service.StartTest(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("broken snapshot store must not block starting: %v", err)
	}
	if view.Restored {
		t.Fatalf("nothing to restore from a failing store")
	}
	if _, _, err := service.SelectAnswer(ctx, "u1", 0, "A"); err != nil {
		t.Fatalf("broken snapshot store must not block answers: %v", err)
	}
}

type testEnv struct {
	service   *app.TestService
	catalogs  *memory.CatalogRepository
	snapshots *memory.SnapshotStore
	results   *memory.ResultStore
	reports   *memory.ReportStore
}

func newTestEnv(now func() time.Time) *testEnv {
	env := &testEnv{
		catalogs: memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[domain.Variant]domain.Catalog{
			domain.VariantSimple: blockCatalog(),
		}), time.Minute),
		snapshots: memory.NewSnapshotStore(),
		results:   memory.NewResultStore(),
		reports:   memory.NewReportStore(nil),
	}
	env.service = app.NewTestServiceWithClock(env.catalogs, env.snapshots, env.results, env.reports, now)
	return env
}

// withClock builds a second service over the same stores, simulating a
// process restart at a different wall-clock time.
func (e *testEnv) withClock(now func() time.Time) *app.TestService {
	return app.NewTestServiceWithClock(e.catalogs, e.snapshots, e.results, e.reports, now)
}

// blockCatalog is the 24-question quick test: four blocks of six, option A
// carrying the first letter of each pair.
func blockCatalog() domain.Catalog {
	groups := []string{"EI", "SN", "TF", "JP"}
	var questions []domain.Question
	id := 0
	for _, group := range groups {
		for i := 0; i < 6; i++ {
			id++
			questions = append(questions, domain.Question{
				ID:      id,
				Text:    fmt.Sprintf("question %d", id),
				Group:   group,
				Variant: domain.VariantSimple,
				Options: []domain.Option{
					{Label: "A", Dimension: group[:1], Weight: 1},
					{Label: "B", Dimension: group[1:], Weight: 1},
				},
			})
		}
	}
	return domain.Catalog{Variant: domain.VariantSimple, Questions: questions}
}

type failingSnapshots struct{}

func (failingSnapshots) Load(context.Context, string, domain.Variant) (domain.Snapshot, bool, error) {
	return domain.Snapshot{}, false, errors.New("disk on fire")
}
func (failingSnapshots) Save(context.Context, string, domain.Snapshot) error {
	return errors.New("disk on fire")
}
func (failingSnapshots) Clear(context.Context, string, domain.Variant) error {
	return errors.New("disk on fire")
}

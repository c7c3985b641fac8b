package redis

import (
	"context"
	"testing"
	"time"

	"mbti-test-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Hour)

	snap := domain.Snapshot{
		Variant:        domain.VariantSimple,
		Position:       5,
		Answers:        []domain.Answer{{QuestionID: 1, Label: "A"}},
		ElapsedSeconds: 42,
		Started:        true,
		SavedAt:        time.Now().UTC(),
		SchemaVersion:  domain.SnapshotSchemaVersion,
	}
	if err := store.Save(ctx, "u1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("mbti:progress:simple:u1") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, ok, err := store.Load(ctx, "u1", domain.VariantSimple)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Position != 5 || loaded.ElapsedSeconds != 42 || len(loaded.Answers) != 1 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	if err := store.Clear(ctx, "u1", domain.VariantSimple); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("mbti:progress:simple:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSnapshotStoreTreatsGarbageAsAbsent(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Hour)

	if err := mr.Set("mbti:progress:simple:u1", "{not json"); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	_, ok, err := store.Load(ctx, "u1", domain.VariantSimple)
	if err != nil {
		t.Fatalf("malformed data must not surface an error, got %v", err)
	}
	if ok {
		t.Fatalf("malformed data must read as absent")
	}
	if mr.Exists("mbti:progress:simple:u1") {
		t.Fatalf("malformed key should be dropped")
	}
}

func TestSnapshotStoreMissingKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Hour)

	_, ok, err := store.Load(context.Background(), "nobody", domain.VariantDetailed)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
}

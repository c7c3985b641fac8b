package report

import (
	"testing"
	"time"

	"mbti-test-service/internal/domain"
)

func TestAssembleCarriesMetadata(t *testing.T) {
	completed := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	result := domain.ScoreResult{TypeCode: "INTJ", Confidence: 82.5, Variant: domain.VariantSimple}

	record := Assemble(result, Meta{
		UserID:         "u1",
		Variant:        domain.VariantSimple,
		ElapsedSeconds: 312,
		CompletedAt:    completed,
	})

	if record.Result.TypeCode != "INTJ" || record.UserID != "u1" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.ElapsedSeconds != 312 || !record.CompletedAt.Equal(completed) {
		t.Fatalf("metadata not carried: %+v", record)
	}
	if record.Variant != domain.VariantSimple {
		t.Fatalf("variant not carried: %+v", record)
	}
}

func TestStrengthLabelBuckets(t *testing.T) {
	cases := []struct {
		strength int
		want     string
	}{
		{0, "weak"}, {30, "weak"},
		{31, "mild"}, {50, "mild"},
		{51, "clear"}, {70, "clear"},
		{71, "strong"}, {85, "strong"},
		{86, "very strong"}, {100, "very strong"},
	}
	for _, tc := range cases {
		if got := StrengthLabel(tc.strength); got != tc.want {
			t.Fatalf("strength %d: expected %q, got %q", tc.strength, tc.want, got)
		}
	}
}

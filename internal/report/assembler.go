// Package report turns a ScoreResult plus session metadata into the record
// shown to the user and stored in history.
package report

import (
	"time"

	"mbti-test-service/internal/domain"
)

// Meta is the session metadata folded into a completed record.
type Meta struct {
	UserID         string
	Variant        domain.Variant
	ElapsedSeconds int
	CompletedAt    time.Time
}

// Assemble merges the score with session metadata. The result is a fresh
// value; neither input is retained.
func Assemble(result domain.ScoreResult, meta Meta) domain.TestRecord {
	return domain.TestRecord{
		UserID:         meta.UserID,
		Result:         result,
		Variant:        meta.Variant,
		ElapsedSeconds: meta.ElapsedSeconds,
		CompletedAt:    meta.CompletedAt,
	}
}

// StrengthLabel buckets a 0..100 pair strength for display. Boundaries are
// inclusive and the buckets leave no gaps.
func StrengthLabel(strength int) string {
	switch {
	case strength <= 30:
		return "weak"
	case strength <= 50:
		return "mild"
	case strength <= 70:
		return "clear"
	case strength <= 85:
		return "strong"
	default:
		return "very strong"
	}
}

// Package scoring holds the two classification algorithms. Both are pure:
// they read the catalog and answer set and return a fresh ScoreResult, so
// identical inputs always produce identical outputs.
package scoring

import (
	"fmt"

	"mbti-test-service/internal/domain"
)

// Score validates the answer set against the catalog and dispatches to the
// variant's algorithm. Validation is fail-fast: no partial result is ever
// produced.
func Score(catalog domain.Catalog, answers []domain.Answer, variant domain.Variant) (domain.ScoreResult, error) {
	if !variant.Valid() {
		return domain.ScoreResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, variant)
	}
	if len(answers) == 0 {
		return domain.ScoreResult{}, domain.ErrEmptyAnswers
	}
	for _, a := range answers {
		if !a.Answered() {
			// Unanswered entries are skipped when counting, never rejected.
			continue
		}
		q, ok := catalog.QuestionByID(a.QuestionID)
		if !ok {
			return domain.ScoreResult{}, fmt.Errorf("%w: question %d", domain.ErrQuestionNotFound, a.QuestionID)
		}
		if _, ok := q.Option(a.Label); !ok {
			return domain.ScoreResult{}, fmt.Errorf("%w: question %d label %q", domain.ErrInvalidLabel, a.QuestionID, a.Label)
		}
	}

	switch variant {
	case domain.VariantSimple:
		return ScoreSimple(catalog, answers), nil
	default:
		return ScoreDetailed(catalog, answers), nil
	}
}

// tally counts, per dimension letter, how many answers selected an option
// carrying that letter. Returns the counts and the number of answered entries.
// All eight letters are present in the map even when zero.
func tally(catalog domain.Catalog, answers []domain.Answer) (map[string]int, int) {
	counts := make(map[string]int, len(domain.Letters))
	for _, letter := range domain.Letters {
		counts[letter] = 0
	}
	answered := 0
	for _, a := range answers {
		if !a.Answered() {
			continue
		}
		q, ok := catalog.QuestionByID(a.QuestionID)
		if !ok {
			continue
		}
		opt, ok := q.Option(a.Label)
		if !ok {
			continue
		}
		counts[opt.Dimension]++
		answered++
	}
	return counts, answered
}

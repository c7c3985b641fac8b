package scoring

import (
	"math"
	"strings"

	"mbti-test-service/internal/domain"
)

// detailedPairs fixes, per axis, the letter preferred on an exact tie and the
// question budget used to normalize the winning margin. The budgets match the
// canonical 93-question catalog (21+26+24+22).
var detailedPairs = []struct {
	first, second string
	preference    string
	maxQuestions  int
}{
	{"E", "I", "I", 21},
	{"S", "N", "N", 26},
	{"T", "F", "F", 24},
	{"J", "P", "P", 22},
}

// ScoreDetailed scores the variable-length questionnaire with a single global
// letter tally. Strict majority wins an axis outright; an exact tie falls to
// the fixed preference letter, independent of answer order. The normalized
// margin is (winning margin / pair budget) * 10, rounded to one decimal.
func ScoreDetailed(catalog domain.Catalog, answers []domain.Answer) domain.ScoreResult {
	counts, answered := tally(catalog, answers)

	var typeCode strings.Builder
	pairs := make([]domain.PairScore, 0, len(detailedPairs))
	var strengthSum float64
	for _, p := range detailedPairs {
		firstCount, secondCount := counts[p.first], counts[p.second]

		var winner string
		switch {
		case firstCount > secondCount:
			winner = p.first
		case secondCount > firstCount:
			winner = p.second
		default:
			winner = p.preference
		}

		winnerCount, loserCount := firstCount, secondCount
		if winner == p.second {
			winnerCount, loserCount = secondCount, firstCount
		}
		margin := winnerCount - loserCount
		normalized := math.Round(float64(margin)/float64(p.maxQuestions)*10*10) / 10

		total := firstCount + secondCount
		strength := 50 // no information on this axis: neutral
		if total > 0 {
			strength = int(math.Round(float64(winnerCount) / float64(total) * 100))
		}

		typeCode.WriteString(winner)
		strengthSum += float64(strength)
		pairs = append(pairs, domain.PairScore{
			Pair:        p.first + p.second,
			FirstCount:  firstCount,
			SecondCount: secondCount,
			Winner:      winner,
			Strength:    strength,
			Margin:      normalized,
		})
	}

	return domain.ScoreResult{
		TypeCode:        typeCode.String(),
		DimensionCounts: counts,
		Pairs:           pairs,
		Confidence:      strengthSum / float64(len(detailedPairs)),
		AnsweredCount:   answered,
		TotalCount:      catalog.Len(),
		Variant:         domain.VariantDetailed,
	}
}

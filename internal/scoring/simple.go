package scoring

import (
	"math"
	"strings"

	"mbti-test-service/internal/domain"
)

// ScoreSimple scores the fixed-length questionnaire where each dimension pair
// owns a contiguous block of questions. Per pair, the first letter wins when
// it was selected in at least half the block (ties favor the first letter);
// otherwise the second letter wins. Strength is the winner's share of the
// whole block, in percent.
func ScoreSimple(catalog domain.Catalog, answers []domain.Answer) domain.ScoreResult {
	blockSizes := make(map[string]int, len(domain.Pairs))
	for _, q := range catalog.Questions {
		blockSizes[q.Group]++
	}

	counts, answered := tally(catalog, answers)

	var typeCode strings.Builder
	pairs := make([]domain.PairScore, 0, len(domain.Pairs))
	var strengthSum float64
	for _, pair := range domain.Pairs {
		first, second := pair[:1], pair[1:]
		block := blockSizes[pair]
		firstCount, secondCount := counts[first], counts[second]

		winner := second
		if firstCount*2 >= block {
			winner = first
		}
		winnerCount := secondCount
		if winner == first {
			winnerCount = firstCount
		}
		strength := 0
		if block > 0 {
			strength = int(math.Round(float64(winnerCount) / float64(block) * 100))
		}

		typeCode.WriteString(winner)
		strengthSum += float64(strength)
		pairs = append(pairs, domain.PairScore{
			Pair:        pair,
			FirstCount:  firstCount,
			SecondCount: secondCount,
			Winner:      winner,
			Strength:    strength,
		})
	}

	return domain.ScoreResult{
		TypeCode:        typeCode.String(),
		DimensionCounts: counts,
		Pairs:           pairs,
		Confidence:      strengthSum / float64(len(domain.Pairs)),
		AnsweredCount:   answered,
		TotalCount:      catalog.Len(),
		Variant:         domain.VariantSimple,
	}
}

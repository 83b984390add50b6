// ABOUTME: Ranker orders carrier recommendations and supplies the synthetic fallback
// ABOUTME: Ordering is fit score desc, then preference rank asc, then carrier name
package core

import (
	"sort"

	"github.com/harper/carrierfit/internal/models"
)

// FallbackCarrierName labels the synthetic recommendation
const FallbackCarrierName = "No carrier match"

// FallbackRecommendation is returned when nothing could be evaluated
func FallbackRecommendation(neutral int) models.CarrierRecommendation {
	return models.CarrierRecommendation{
		CarrierName: FallbackCarrierName,
		FitScore:    neutral,
		Confidence:  models.ConfidenceLow,
		Reasons: []string{
			"no indexed carrier guidelines available to compare; manual underwriting review recommended",
		},
		Advisories:          []string{},
		Citations:           []models.Citation{},
		FurtherReviewLikely: true,
		Synthetic:           true,
	}
}

// Rank sorts recommendations and truncates to topN when topN > 0.
// Empty input yields exactly one synthetic fallback scored at neutral.
func Rank(recs []models.CarrierRecommendation, topN, neutral int) []models.CarrierRecommendation {
	if len(recs) == 0 {
		return []models.CarrierRecommendation{FallbackRecommendation(neutral)}
	}

	out := make([]models.CarrierRecommendation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FitScore != out[j].FitScore {
			return out[i].FitScore > out[j].FitScore
		}
		if out[i].PreferenceRank != out[j].PreferenceRank {
			return out[i].PreferenceRank < out[j].PreferenceRank
		}
		return out[i].CarrierName < out[j].CarrierName
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

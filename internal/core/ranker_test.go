// ABOUTME: Tests for recommendation ranking and the synthetic fallback
// ABOUTME: Verifies sort keys, truncation and empty-input behavior
package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carrierfit/internal/models"
)

func TestRank_Ordering(t *testing.T) {
	recs := []models.CarrierRecommendation{
		{CarrierID: "c", CarrierName: "Gamma", FitScore: 70, PreferenceRank: 1},
		{CarrierID: "a", CarrierName: "Alpha", FitScore: 90, PreferenceRank: 3},
		{CarrierID: "b", CarrierName: "Beta", FitScore: 70, PreferenceRank: 1},
		{CarrierID: "d", CarrierName: "Delta", FitScore: 70, PreferenceRank: 0},
	}

	got := Rank(recs, 0, 50)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.CarrierID
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids)
	assert.Equal(t, "c", recs[0].CarrierID, "input slice must not be reordered")
}

func TestRank_TopN(t *testing.T) {
	recs := []models.CarrierRecommendation{
		{CarrierID: "a", FitScore: 60},
		{CarrierID: "b", FitScore: 80},
		{CarrierID: "c", FitScore: 70},
	}

	got := Rank(recs, 2, 50)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].CarrierID)
	assert.Equal(t, "c", got[1].CarrierID)

	assert.Len(t, Rank(recs, 10, 50), 3)
}

func TestRank_EmptyInput(t *testing.T) {
	got := Rank(nil, 5, 50)
	require.Len(t, got, 1)

	fb := got[0]
	assert.True(t, fb.Synthetic)
	assert.Equal(t, 50, fb.FitScore)
	assert.Equal(t, models.ConfidenceLow, fb.Confidence)
	assert.True(t, fb.FurtherReviewLikely)
	assert.NotEmpty(t, fb.Reasons)
	assert.Empty(t, fb.Citations)
}

func TestRank_EmptyInputUsesConfiguredNeutral(t *testing.T) {
	got := Rank(nil, 0, 40)
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].FitScore)
}

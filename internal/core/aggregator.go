// ABOUTME: Aggregator reduces per-query retrieval evidence into a carrier recommendation
// ABOUTME: Computes the fit score, confidence tier, citations and evidence-filtered reasons
package core

import (
	"math"
	"sort"
	"strings"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/models"
)

// Aggregator scores one carrier from its retrieval results
type Aggregator struct {
	scoring config.Scoring
	rules   *RuleSet
}

// NewAggregator creates an Aggregator using the given thresholds
func NewAggregator(scoring config.Scoring) *Aggregator {
	return &Aggregator{scoring: scoring, rules: NewRuleSet(scoring)}
}

// bestPerQuery returns the top result for each query, or nil when it has none.
// Ties break on chunk ID so output does not depend on index ordering.
func bestPerQuery(hits [][]models.RetrievalResult) []*models.RetrievalResult {
	best := make([]*models.RetrievalResult, len(hits))
	for i, results := range hits {
		for j := range results {
			r := &results[j]
			if best[i] == nil || r.Score > best[i].Score ||
				(r.Score == best[i].Score && r.ChunkID < best[i].ChunkID) {
				best[i] = r
			}
		}
	}
	return best
}

// CitationCandidates lists chunk IDs whose text may be cited, so the caller
// can load their sources before calling Aggregate
func (a *Aggregator) CitationCandidates(hits [][]models.RetrievalResult) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range bestPerQuery(hits) {
		if b == nil || b.Score < a.scoring.CitationFloor || seen[b.ChunkID] {
			continue
		}
		seen[b.ChunkID] = true
		ids = append(ids, b.ChunkID)
	}
	sort.Strings(ids)
	return ids
}

// Aggregate builds the recommendation for one carrier. hits is indexed like queries.
func (a *Aggregator) Aggregate(p models.ClientProfile, carrier models.Carrier, queries []models.Query,
	hits [][]models.RetrievalResult, sources map[string]models.CitationSource) models.CarrierRecommendation {

	best := bestPerQuery(hits)

	matched := make(map[models.Dimension]bool)
	var sum float64
	count := 0
	for i, b := range best {
		if b == nil || b.Score < a.scoring.SimilarityFloor {
			continue
		}
		sum += b.Score
		count++
		if i < len(queries) {
			matched[queries[i].Dimension] = true
		}
	}

	rec := models.CarrierRecommendation{
		CarrierID:      carrier.ID,
		CarrierName:    carrier.Name,
		PreferenceRank: carrier.PreferenceRank,
		QueriesMatched: count,
		QueriesIssued:  len(queries),
		Reasons:        []string{},
		Advisories:     []string{},
		Citations:      a.citations(best, sources),
	}

	if count == 0 {
		rec.FitScore = a.scoring.NeutralScore
		rec.Confidence = models.ConfidenceLow
	} else {
		fit := int(math.Round(sum * 100 / float64(count)))
		rec.FitScore = min(a.scoring.MaxFitScore, max(0, fit))
		rec.Confidence = a.tier(rec.FitScore)
	}

	review := false
	var allReasons []string
	for _, o := range a.rules.Evaluate(p) {
		if o.Advisory {
			rec.Advisories = append(rec.Advisories, o.Text)
			review = review || o.Review
			continue
		}
		allReasons = append(allReasons, o.Text)
		if matched[o.Dimension] {
			rec.Reasons = append(rec.Reasons, o.Text)
		}
	}
	if len(rec.Reasons) == 0 {
		rec.Reasons = allReasons
	}

	rec.FurtherReviewLikely = review || rec.Confidence == models.ConfidenceLow
	return rec
}

func (a *Aggregator) tier(fit int) models.ConfidenceTier {
	switch {
	case fit >= a.scoring.HighTier:
		return models.ConfidenceHigh
	case fit >= a.scoring.MediumTier:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func (a *Aggregator) citations(best []*models.RetrievalResult, sources map[string]models.CitationSource) []models.Citation {
	byChunk := make(map[string]float64)
	for _, b := range best {
		if b == nil || b.Score < a.scoring.CitationFloor {
			continue
		}
		if _, ok := sources[b.ChunkID]; !ok {
			continue
		}
		if s, seen := byChunk[b.ChunkID]; !seen || b.Score > s {
			byChunk[b.ChunkID] = b.Score
		}
	}

	ids := make([]string, 0, len(byChunk))
	for id := range byChunk {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if byChunk[ids[i]] != byChunk[ids[j]] {
			return byChunk[ids[i]] > byChunk[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > a.scoring.MaxCitations {
		ids = ids[:a.scoring.MaxCitations]
	}

	out := make([]models.Citation, 0, len(ids))
	for _, id := range ids {
		src := sources[id]
		out = append(out, models.Citation{
			ChunkID:       id,
			Snippet:       Snippet(src.Body, a.scoring.SnippetRunes),
			DocumentTitle: src.DocumentTitle,
			EffectiveDate: src.EffectiveDate.Format(models.DateLayout),
			Section:       src.Section,
			Score:         byChunk[id],
		})
	}
	return out
}

// Snippet trims surrounding whitespace and truncates to at most n runes
func Snippet(body string, n int) string {
	body = strings.TrimSpace(body)
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range body {
		if count == n {
			return strings.TrimSpace(body[:i])
		}
		count++
	}
	return body
}

// ABOUTME: Retrieval results, citations and per-carrier recommendations
// ABOUTME: Recommendations are recomputed per evaluation; cached copies are advisory
package models

import "time"

// ConfidenceTier is a coarse label derived from fit score and evidence sufficiency
type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "low"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceHigh   ConfidenceTier = "high"
)

// RetrievalResult is one scored passage returned for a (carrier, query) pair
type RetrievalResult struct {
	QueryIndex int     `json:"query_index"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	CarrierID  string  `json:"carrier_id"`
	Section    string  `json:"section,omitempty"`
	Score      float64 `json:"score"`
}

// CitationSource is the stored context needed to render a citation
type CitationSource struct {
	ChunkID       string    `json:"chunk_id"`
	Body          string    `json:"body"`
	Section       string    `json:"section,omitempty"`
	DocumentTitle string    `json:"document_title"`
	EffectiveDate time.Time `json:"effective_date"`
}

// Citation is a traceable excerpt supporting a recommendation
type Citation struct {
	ChunkID       string  `json:"chunk_id"`
	Snippet       string  `json:"snippet"`
	DocumentTitle string  `json:"document_title"`
	EffectiveDate string  `json:"effective_date"`
	Section       string  `json:"section,omitempty"`
	Score         float64 `json:"score"`
}

// CarrierRecommendation is the per-carrier evaluation output
type CarrierRecommendation struct {
	CarrierID           string         `json:"carrier_id"`
	CarrierName         string         `json:"carrier_name"`
	PreferenceRank      int            `json:"preference_rank"`
	FitScore            int            `json:"fit_score"`
	Confidence          ConfidenceTier `json:"confidence"`
	Reasons             []string       `json:"reasons"`
	Advisories          []string       `json:"advisories"`
	Citations           []Citation     `json:"citations"`
	FurtherReviewLikely bool           `json:"further_review_likely"`
	QueriesMatched      int            `json:"queries_matched"`
	QueriesIssued       int            `json:"queries_issued"`
	Synthetic           bool           `json:"synthetic,omitempty"`
}

// Evaluation is a cached copy of one Evaluate call
type Evaluation struct {
	ID              string                  `json:"id"`
	Fingerprint     string                  `json:"fingerprint"`
	Profile         ClientProfile           `json:"profile"`
	Recommendations []CarrierRecommendation `json:"recommendations"`
	CreatedAt       time.Time               `json:"created_at"`
}

// ABOUTME: Vector index records exchanged with the similarity search backends
// ABOUTME: Defines metadata, filters and scored search results
package models

// VectorMetadata is stored alongside every vector in the index
type VectorMetadata struct {
	CarrierID  string `json:"carrier_id"`
	DocumentID string `json:"document_id"`
	Section    string `json:"section,omitempty"`
	Sequence   int    `json:"sequence"`
}

// VectorFilter restricts a query to entries with matching metadata.
// Empty fields match everything.
type VectorFilter struct {
	CarrierID string `json:"carrier_id,omitempty"`
}

// Matches reports whether metadata satisfies the filter
func (f VectorFilter) Matches(meta VectorMetadata) bool {
	if f.CarrierID != "" && f.CarrierID != meta.CarrierID {
		return false
	}
	return true
}

// VectorSearchResult represents a search result with similarity score
type VectorSearchResult struct {
	ChunkID         string         `json:"chunk_id"`
	Metadata        VectorMetadata `json:"metadata"`
	SimilarityScore float64        `json:"similarity_score"`
}

// ClampScore maps a cosine similarity onto [0,1]
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

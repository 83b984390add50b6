// ABOUTME: Chunk represents an overlap-linked passage of a guideline document
// ABOUTME: Chunk IDs are a pure function of document ID and sequence number
package models

import (
	"fmt"

	"github.com/google/uuid"
)

var chunkNamespace = uuid.MustParse("a3c95e0b-71d4-5f28-8b6e-4d2f90c1e7a5")

// Chunk is the unit of retrieval
type Chunk struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	Sequence      int       `json:"sequence"`
	Section       string    `json:"section,omitempty"`
	Text          string    `json:"text"`
	OverlapLen    int       `json:"overlap_len"`
	TokenEstimate int       `json:"token_estimate"`
	Embedding     []float64 `json:"embedding,omitempty"`
}

// ChunkID derives the chunk identity from its parent document and position
func ChunkID(documentID string, sequence int) string {
	key := fmt.Sprintf("%s#%d", documentID, sequence)
	return "chunk_" + uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}

// Body returns the chunk text without the overlap carried from the previous chunk
func (c *Chunk) Body() string {
	if c.OverlapLen <= 0 || c.OverlapLen > len(c.Text) {
		return c.Text
	}
	return c.Text[c.OverlapLen:]
}

// HasEmbedding reports whether the chunk can take part in similarity search
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

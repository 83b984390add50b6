// ABOUTME: Sentinel errors shared across the carrier-fit pipeline
// ABOUTME: Callers compare with errors.Is after fmt.Errorf wrapping
package models

import "errors"

var (
	// ErrInvalidInput indicates a record failed boundary validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownCarrier indicates a document references a carrier that is not registered.
	ErrUnknownCarrier = errors.New("unknown carrier")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmptyEmbedding indicates the embedding service returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
)

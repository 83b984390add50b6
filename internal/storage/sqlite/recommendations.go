// ABOUTME: Evaluation cache operations for SQLite
// ABOUTME: Stores ranked recommendations keyed by profile fingerprint
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/carrierfit/internal/models"
)

// EvaluationStore handles cached evaluation persistence
type EvaluationStore struct {
	db *DB
}

// NewEvaluationStore creates a new EvaluationStore
func NewEvaluationStore(db *DB) *EvaluationStore {
	return &EvaluationStore{db: db}
}

// Save stores an evaluation, assigning an ID when missing
func (s *EvaluationStore) Save(ctx context.Context, eval *models.Evaluation) error {
	if eval.Fingerprint == "" {
		return fmt.Errorf("%w: evaluation fingerprint cannot be empty", models.ErrInvalidInput)
	}
	if eval.ID == "" {
		eval.ID = "eval_" + uuid.New().String()
	}

	profileJSON, err := json.Marshal(eval.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	recsJSON, err := json.Marshal(eval.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, fingerprint, profile, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile = excluded.profile,
			recommendations = excluded.recommendations
	`, eval.ID, eval.Fingerprint, string(profileJSON), string(recsJSON), eval.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// Latest returns the newest evaluation for a fingerprint, or models.ErrNotFound
func (s *EvaluationStore) Latest(ctx context.Context, fingerprint string) (*models.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, profile, recommendations, created_at
		FROM evaluations
		WHERE fingerprint = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, fingerprint)

	eval, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", fingerprint, models.ErrNotFound)
	}
	return eval, err
}

// List returns the most recent evaluations, newest first
func (s *EvaluationStore) List(ctx context.Context, limit int) ([]models.Evaluation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, profile, recommendations, created_at
		FROM evaluations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var evals []models.Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, *eval)
	}
	return evals, rows.Err()
}

func scanEvaluation(row rowScanner) (*models.Evaluation, error) {
	var (
		eval        models.Evaluation
		profileJSON string
		recsJSON    string
	)
	if err := row.Scan(&eval.ID, &eval.Fingerprint, &profileJSON, &recsJSON, &eval.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(profileJSON), &eval.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if err := json.Unmarshal([]byte(recsJSON), &eval.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return &eval, nil
}

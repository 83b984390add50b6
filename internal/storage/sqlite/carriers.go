// ABOUTME: Carrier storage operations for SQLite
// ABOUTME: Implements upsert, lookup and listing of registered carriers
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/carrierfit/internal/models"
)

// CarrierStore handles carrier persistence
type CarrierStore struct {
	db *DB
}

// NewCarrierStore creates a new CarrierStore
func NewCarrierStore(db *DB) *CarrierStore {
	return &CarrierStore{db: db}
}

// Save validates and upserts a carrier
func (s *CarrierStore) Save(ctx context.Context, c *models.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	states := make([]string, 0, len(c.States))
	for _, st := range c.States {
		states = append(states, strings.ToUpper(strings.TrimSpace(st)))
	}
	statesJSON, err := json.Marshal(states)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO carriers (id, name, preference_rank, states, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			preference_rank = excluded.preference_rank,
			states = excluded.states,
			updated_at = excluded.updated_at
	`, strings.TrimSpace(c.ID), strings.TrimSpace(c.Name), c.PreferenceRank, string(statesJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to save carrier %s: %w", c.ID, err)
	}
	return nil
}

// Get retrieves a carrier by ID, returning models.ErrNotFound when absent
func (s *CarrierStore) Get(ctx context.Context, id string) (*models.Carrier, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, preference_rank, states
		FROM carriers
		WHERE id = ?
	`, id)

	c, err := scanCarrier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("carrier %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all carriers ordered by preference rank then name
func (s *CarrierStore) List(ctx context.Context) ([]models.Carrier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, preference_rank, states
		FROM carriers
		ORDER BY preference_rank ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var carriers []models.Carrier
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, err
		}
		carriers = append(carriers, *c)
	}
	return carriers, rows.Err()
}

// Delete removes a carrier and, by cascade, its documents and chunks
func (s *CarrierStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM carriers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("carrier %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarrier(row rowScanner) (*models.Carrier, error) {
	var (
		c          models.Carrier
		statesJSON sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.PreferenceRank, &statesJSON); err != nil {
		return nil, err
	}
	if statesJSON.Valid && statesJSON.String != "" {
		if err := json.Unmarshal([]byte(statesJSON.String), &c.States); err != nil {
			c.States = nil
		}
	}
	if len(c.States) == 0 {
		c.States = nil
	}
	return &c, nil
}

// ABOUTME: Carrier is an insurance company whose guidelines are indexed
// ABOUTME: Read-only during evaluation; availability is per jurisdiction
package models

import (
	"fmt"
	"strings"
)

// Carrier represents an insurer that recommendations can point at
type Carrier struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	PreferenceRank int      `json:"preference_rank" yaml:"preference_rank"`
	States         []string `json:"states,omitempty" yaml:"states,omitempty"`
}

// Validate checks required carrier fields
func (c *Carrier) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: carrier id cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: carrier name cannot be empty", ErrInvalidInput)
	}
	if c.PreferenceRank < 0 {
		return fmt.Errorf("%w: preference rank cannot be negative", ErrInvalidInput)
	}
	for _, s := range c.States {
		if len(strings.TrimSpace(s)) != 2 {
			return fmt.Errorf("%w: state %q must be a two-letter code", ErrInvalidInput, s)
		}
	}
	return nil
}

// AvailableIn reports whether the carrier writes business in the state.
// An empty state list or empty state means no restriction.
func (c *Carrier) AvailableIn(state string) bool {
	state = strings.TrimSpace(state)
	if state == "" || len(c.States) == 0 {
		return true
	}
	for _, s := range c.States {
		if strings.EqualFold(strings.TrimSpace(s), state) {
			return true
		}
	}
	return false
}

// ABOUTME: Carrier roster and guideline catalogue export/import
// ABOUTME: Supports YAML roster round-trips and a Markdown catalogue
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/carrierfit/internal/models"
	"gopkg.in/yaml.v3"
)

// Roster is the exportable set of carriers and their current documents
type Roster struct {
	Version    string          `yaml:"version" json:"version"`
	ExportedAt string          `yaml:"exported_at,omitempty" json:"exported_at,omitempty"`
	Tool       string          `yaml:"tool,omitempty" json:"tool,omitempty"`
	Carriers   []RosterCarrier `yaml:"carriers" json:"carriers"`
}

// RosterCarrier is one carrier entry in a roster
type RosterCarrier struct {
	ID             string           `yaml:"id" json:"id"`
	Name           string           `yaml:"name" json:"name"`
	PreferenceRank int              `yaml:"preference_rank" json:"preference_rank"`
	States         []string         `yaml:"states,omitempty" json:"states,omitempty"`
	Documents      []RosterDocument `yaml:"documents,omitempty" json:"documents,omitempty"`
}

// RosterDocument summarizes a stored guideline document
type RosterDocument struct {
	Title         string `yaml:"title" json:"title"`
	EffectiveDate string `yaml:"effective_date" json:"effective_date"`
	Version       int    `yaml:"version" json:"version"`
	Source        string `yaml:"source,omitempty" json:"source,omitempty"`
}

// Carrier converts a roster entry to a model
func (rc RosterCarrier) Carrier() models.Carrier {
	return models.Carrier{
		ID:             rc.ID,
		Name:           rc.Name,
		PreferenceRank: rc.PreferenceRank,
		States:         rc.States,
	}
}

// Export builds a roster of all carriers with their current documents
func (s *Storage) Export(ctx context.Context) (*Roster, error) {
	roster := &Roster{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "carrierfit",
	}

	carriers, err := s.carriers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list carriers: %w", err)
	}

	for _, c := range carriers {
		docs, err := s.documents.ListByCarrier(ctx, c.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents for %s: %w", c.ID, err)
		}

		entry := RosterCarrier{
			ID:             c.ID,
			Name:           c.Name,
			PreferenceRank: c.PreferenceRank,
			States:         c.States,
		}
		for _, d := range docs {
			entry.Documents = append(entry.Documents, RosterDocument{
				Title:         d.Title,
				EffectiveDate: d.EffectiveDate.Format(models.DateLayout),
				Version:       d.Version,
				Source:        d.SourceLocation,
			})
		}
		roster.Carriers = append(roster.Carriers, entry)
	}

	return roster, nil
}

// ExportToYAML writes the roster to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, outputPath string) error {
	roster, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(roster); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportToMarkdown writes a human-readable guideline catalogue
func (s *Storage) ExportToMarkdown(ctx context.Context, outputPath string) error {
	roster, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Carrier Guidelines - %s\n\n", time.Now().Format(models.DateLayout))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", roster.ExportedAt)

	for _, c := range roster.Carriers {
		_, _ = fmt.Fprintf(file, "## %s (%s)\n\n", c.Name, c.ID)
		_, _ = fmt.Fprintf(file, "- **Preference rank:** %d\n", c.PreferenceRank)
		if len(c.States) > 0 {
			_, _ = fmt.Fprintf(file, "- **States:** %s\n", strings.Join(c.States, ", "))
		} else {
			_, _ = fmt.Fprintln(file, "- **States:** all")
		}
		_, _ = fmt.Fprintln(file)

		if len(c.Documents) == 0 {
			_, _ = fmt.Fprintln(file, "*No guidelines ingested.*")
			_, _ = fmt.Fprintln(file)
			continue
		}
		_, _ = fmt.Fprintln(file, "| Title | Effective | Version |")
		_, _ = fmt.Fprintln(file, "|-------|-----------|---------|")
		for _, d := range c.Documents {
			_, _ = fmt.Fprintf(file, "| %s | %s | %d |\n", d.Title, d.EffectiveDate, d.Version)
		}
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

// ParseRoster decodes a YAML roster. A bare list of carriers is also accepted.
func ParseRoster(r io.Reader) (*Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err == nil && len(roster.Carriers) > 0 {
		return &roster, nil
	}

	var list []RosterCarrier
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: roster must be a mapping with carriers or a list of carriers: %v", models.ErrInvalidInput, err)
	}
	return &Roster{Version: "1.0", Carriers: list}, nil
}

// ImportRoster registers every carrier in the roster, returning how many were saved.
// Documents listed in the roster are informational and not re-ingested.
func (s *Storage) ImportRoster(ctx context.Context, roster *Roster) (int, error) {
	for i := range roster.Carriers {
		c := roster.Carriers[i].Carrier()
		if err := c.Validate(); err != nil {
			return i, fmt.Errorf("carrier %d: %w", i+1, err)
		}
	}

	saved := 0
	for i := range roster.Carriers {
		c := roster.Carriers[i].Carrier()
		if err := s.carriers.Save(ctx, &c); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// ImportRosterFile reads and imports a YAML roster file
func (s *Storage) ImportRosterFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path) // #nosec G304
	if err != nil {
		return 0, fmt.Errorf("failed to open roster: %w", err)
	}
	defer func() { _ = file.Close() }()

	roster, err := ParseRoster(file)
	if err != nil {
		return 0, err
	}
	return s.ImportRoster(ctx, roster)
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

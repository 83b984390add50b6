// ABOUTME: Shared test helpers for CLI command tests
// ABOUTME: Swaps openApp for an App over a temp SQLite file and a keyword embedder
package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/storage/sqlite"
)

var testKeywords = []string{
	"issue ages", "build chart", "tobacco", "cannabis", "diabetes",
	"cardiac", "cancer", "avocation", "accelerated", "financial",
}

// keywordEmbedder maps each keyword to one dimension
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	vec := make([]float64, len(testKeywords))
	for i, kw := range testKeywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec, nil
}

// useTestApp points every command at a fresh database file for the test
func useTestApp(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "carrierfit.db")

	orig := openApp
	openApp = func(cmd *cobra.Command) (*app.App, error) {
		store, err := sqlite.NewStorageWithPath(dbPath)
		if err != nil {
			return nil, err
		}
		cfg := &config.Config{
			DBPath:        dbPath,
			VectorBackend: config.BackendSQLite,
			Scoring:       config.DefaultScoring(),
			Retrieval:     config.DefaultRetrieval(),
			Chunking:      config.DefaultChunking(),
		}
		return app.New(cfg, logging.Discard(), store, store.Vectors(), keywordEmbedder{}, nil), nil
	}
	t.Cleanup(func() { openApp = orig })
}

// runCLI executes the root command with args and returns combined output
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

// mustRunCLI fails the test when the command errors
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

// writeFile creates a file (and parents) under dir
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const tobaccoGuideline = "## Tobacco\nApplicants with no tobacco use in 12 months qualify for non-tobacco rates.\n"

const healthyProfileJSON = `{"age":45,"sex":"male","height_inches":70,"weight_pounds":180,"coverage_amount":500000,"state":"TX"}`

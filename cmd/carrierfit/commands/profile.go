// ABOUTME: Client profile file loading for the evaluate command
// ABOUTME: Accepts JSON or YAML; unknown fields are rejected in both
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harper/carrierfit/internal/models"
)

// loadProfile reads a profile from path, or from stdin when path is "-"
func loadProfile(path string, stdin io.Reader) (models.ClientProfile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304
	}
	if err != nil {
		return models.ClientProfile{}, fmt.Errorf("reading profile: %w", err)
	}
	return parseProfile(data, strings.ToLower(filepath.Ext(path)))
}

// parseProfile decodes JSON for .json files or content starting with "{", YAML otherwise
func parseProfile(data []byte, ext string) (models.ClientProfile, error) {
	var p models.ClientProfile

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return p, fmt.Errorf("%w: profile is empty", models.ErrInvalidInput)
	}

	if ext == ".json" || trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("%w: invalid JSON profile: %v", models.ErrInvalidInput, err)
		}
		return p, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("%w: invalid YAML profile: %v", models.ErrInvalidInput, err)
	}
	return p, nil
}

// ABOUTME: Strict parsing and application of optional advisor output
// ABOUTME: Malformed advice is dropped so recommendations keep rule-based text only
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/harper/carrierfit/internal/models"
)

const (
	maxAdviceItems = 3
	maxAdviceRunes = 200
)

// ParseAdvice decodes advisor output as exactly one JSON object with known
// fields only. Every item must be 1-200 characters and each list at most 3 long.
func ParseAdvice(raw string) (*models.Advice, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(raw))))
	dec.DisallowUnknownFields()

	var adv models.Advice
	if err := dec.Decode(&adv); err != nil {
		return nil, fmt.Errorf("failed to decode advice: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("advice must be a single JSON object")
	}

	if err := checkAdviceItems("reasons", adv.Reasons); err != nil {
		return nil, err
	}
	if err := checkAdviceItems("advisories", adv.Advisories); err != nil {
		return nil, err
	}
	return &adv, nil
}

func checkAdviceItems(field string, items []string) error {
	if len(items) > maxAdviceItems {
		return fmt.Errorf("advice %s has %d items, max %d", field, len(items), maxAdviceItems)
	}
	for i, s := range items {
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		if n == 0 || n > maxAdviceRunes {
			return fmt.Errorf("advice %s[%d] must be 1-%d characters", field, i, maxAdviceRunes)
		}
	}
	return nil
}

// ApplyAdvice appends advice text not already present. Fit score and tier are untouched.
func ApplyAdvice(rec *models.CarrierRecommendation, adv *models.Advice) {
	if adv == nil {
		return
	}
	rec.Reasons = appendUnique(rec.Reasons, adv.Reasons)
	rec.Advisories = appendUnique(rec.Advisories, adv.Advisories)
}

func appendUnique(dst, items []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range items {
		s = strings.TrimSpace(s)
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}

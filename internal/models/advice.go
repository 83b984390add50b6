// ABOUTME: Advice request and response shapes for the optional narrative advisor
// ABOUTME: Responses are untrusted and must pass strict parsing before use
package models

// AdviceRequest is the context handed to an advisor for one carrier
type AdviceRequest struct {
	Carrier    Carrier        `json:"carrier"`
	Profile    ClientProfile  `json:"profile"`
	FitScore   int            `json:"fit_score"`
	Confidence ConfidenceTier `json:"confidence"`
	Reasons    []string       `json:"reasons"`
	Advisories []string       `json:"advisories"`
	Citations  []Citation     `json:"citations"`
}

// Advice is the only accepted advisor response shape
type Advice struct {
	Reasons    []string `json:"reasons"`
	Advisories []string `json:"advisories"`
}

// ABOUTME: RAGAS-style metrics for carrier recommendations
// ABOUTME: Deterministic faithfulness, context recall and temporal checks against ground truth
package ragas

import (
	"fmt"
	"strings"

	"github.com/harper/carrierfit/internal/models"
)

// MetricsCalculator computes scores for benchmark tests
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0)
// Faithfulness = Does the explanation state what the ground truth expects, and nothing forbidden?
func (m *MetricsCalculator) CalculateFaithfulness(
	response string,
	expectedInResponse []string,
	forbiddenInResponse []string,
) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingItems := []string{}
	for _, expected := range expectedInResponse {
		if !strings.Contains(responseUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingItems) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Perfect faithfulness - explanation matches expected ground truth"
	case len(missingItems) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	case len(missingItems) > 0:
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	default:
		return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
	}
}

// CalculateContextRecall computes context recall score (0.0-1.0)
// Context Recall = Were the expected guideline passages cited?
func (m *MetricsCalculator) CalculateContextRecall(
	retrievedContext []string,
	expectedContextItems []string,
) (float64, string) {
	if len(expectedContextItems) == 0 {
		return 1.0, "No context retrieval required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	foundCount := 0
	missingItems := []string{}
	for _, expectedItem := range expectedContextItems {
		if strings.Contains(allContext, strings.ToUpper(expectedItem)) {
			foundCount++
		} else {
			missingItems = append(missingItems, expectedItem)
		}
	}

	recall := float64(foundCount) / float64(len(expectedContextItems))
	if recall == 1.0 {
		return 1.0, "Perfect context recall - all expected passages cited"
	}

	return recall, fmt.Sprintf(
		"Partial context recall (%.2f) - missing items: %v",
		recall, missingItems,
	)
}

// CalculateTemporalCorrectness checks that citations quote the current
// guideline version and not the superseded one
func (m *MetricsCalculator) CalculateTemporalCorrectness(
	retrievedContext []string,
	currentValue string,
	supersededValue string,
) (bool, string) {
	contextUpper := strings.ToUpper(strings.Join(retrievedContext, " "))
	containsCurrent := strings.Contains(contextUpper, strings.ToUpper(currentValue))
	containsSuperseded := strings.Contains(contextUpper, strings.ToUpper(supersededValue))

	switch {
	case containsCurrent && !containsSuperseded:
		return true, "Citations quote only the current version"
	case containsCurrent && containsSuperseded:
		return false, "Citations quote both current and superseded versions"
	case containsSuperseded:
		return false, "Citations quote only the superseded version"
	default:
		return false, "Citations quote neither version"
	}
}

// EvaluateTest scores a ranked recommendation list against the scenario
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, recs []models.CarrierRecommendation) TestResult {
	result := TestResult{
		TestID:   scenario.ID,
		TestName: scenario.Name,
		Status:   "FAIL",
		Details:  map[string]interface{}{},
	}
	if len(recs) == 0 {
		result.ErrorMessage = "no recommendations returned"
		return result
	}

	top := recs[0]
	response := strings.Join(append(append([]string{}, top.Reasons...), top.Advisories...), "; ")
	context := make([]string, 0, len(top.Citations))
	for _, c := range top.Citations {
		context = append(context, c.Snippet)
	}

	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		response,
		scenario.GroundTruth.ExpectedInResponse,
		scenario.GroundTruth.ForbiddenInResponse,
	)
	recall, recallDetail := m.CalculateContextRecall(context, scenario.GroundTruth.ExpectedContextItems)

	result.FaithfulnessScore = faithfulness
	result.ContextRecallScore = recall
	result.TopCarrierCorrect = top.CarrierID == scenario.GroundTruth.ExpectedTopCarrier
	result.OverallScore = (faithfulness + recall) / 2.0
	result.Details["faithfulness_detail"] = faithfulnessDetail
	result.Details["recall_detail"] = recallDetail
	result.Details["top_carrier"] = top.CarrierID
	result.Details["top_fit_score"] = top.FitScore
	result.Details["citations"] = len(top.Citations)

	temporalOK := true
	if scenario.GroundTruth.CurrentValue != "" {
		var temporalDetail string
		temporalOK, temporalDetail = m.CalculateTemporalCorrectness(
			context, scenario.GroundTruth.CurrentValue, scenario.GroundTruth.SupersededValue)
		result.Details["temporal_detail"] = temporalDetail
	}

	// Require >= 0.9 on both metrics and the right carrier on top
	if faithfulness >= 0.9 && recall >= 0.9 && result.TopCarrierCorrect && temporalOK {
		result.Status = "PASS"
	}
	return result
}

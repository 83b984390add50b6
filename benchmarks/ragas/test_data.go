// ABOUTME: Benchmark scenarios pairing a guideline corpus with a client profile
// ABOUTME: Ground truth names the expected top carrier, reasons and cited passages
package ragas

import (
	"time"

	"github.com/harper/carrierfit/internal/models"
)

// TestScenario represents a complete benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Carriers    []models.Carrier
	Guidelines  []Guideline // ingested in order; later versions supersede earlier ones
	Profile     models.ClientProfile
	GroundTruth GroundTruth
}

// Guideline is one document to ingest before evaluation
type Guideline struct {
	CarrierID     string
	Title         string
	EffectiveDate time.Time
	Text          string
}

// GroundTruth defines expected outcomes for evaluation
type GroundTruth struct {
	ExpectedTopCarrier string

	// Checked against the top recommendation's reasons and advisories
	ExpectedInResponse  []string
	ForbiddenInResponse []string

	// Checked against the top recommendation's citation snippets
	ExpectedContextItems []string

	// When set, citations must quote CurrentValue and never SupersededValue
	CurrentValue    string
	SupersededValue string
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID             string                 `json:"test_id"`
	TestName           string                 `json:"test_name"`
	FaithfulnessScore  float64                `json:"faithfulness_score"`
	ContextRecallScore float64                `json:"context_recall_score"`
	TopCarrierCorrect  bool                   `json:"top_carrier_correct"`
	OverallScore       float64                `json:"overall_score"`
	Status             string                 `json:"status"` // "PASS" or "FAIL"
	Details            map[string]interface{} `json:"details,omitempty"`
	ErrorMessage       string                 `json:"error_message,omitempty"`
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetDiabetesScenario returns the diabetic applicant scenario
func GetDiabetesScenario() TestScenario {
	return TestScenario{
		ID:          "diabetes",
		Name:        "Diabetic Applicant",
		Description: "Carrier with a diabetes underwriting section should outrank one without",
		Carriers: []models.Carrier{
			{ID: "northwind", Name: "Northwind Life", PreferenceRank: 2},
			{ID: "harbor", Name: "Harbor Mutual", PreferenceRank: 1},
		},
		Guidelines: []Guideline{
			{
				CarrierID:     "northwind",
				Title:         "Field Underwriting Guide",
				EffectiveDate: date(2025, 1, 1),
				Text: `# Field Underwriting Guide

## Issue Ages
Term products are available for issue ages 18 through 75.

## Diabetes
Type 2 diabetes diagnosed after age 40 and controlled with oral medication
may qualify for Standard rates when the most recent A1C is below 8.0.
Insulin-dependent applicants are considered at Table 2 or better.

## Build Chart
Applicants within the build chart for their height qualify for Preferred
classes. Weights above the chart maximum are rated by table.
`,
			},
			{
				CarrierID:     "harbor",
				Title:         "Final Expense Guide",
				EffectiveDate: date(2024, 7, 1),
				Text: `# Final Expense Guide

## Cardiac
Applicants with a heart attack or stent placement within 24 months are
declined. Bypass surgery over 24 months ago is eligible for graded benefits.

## Hazardous Avocations
Skydiving and scuba diving beyond 100 feet are excluded from coverage.
`,
			},
		},
		Profile: models.ClientProfile{
			Age:            58,
			Sex:            "female",
			HeightInches:   65,
			WeightPounds:   160,
			Conditions:     []models.MedicalCondition{{Name: "type 2 diabetes", Severity: models.SeverityMild}},
			CoverageAmount: 300_000,
			ProductType:    models.ProductTerm,
			State:          "TX",
		},
		GroundTruth: GroundTruth{
			ExpectedTopCarrier:   "northwind",
			ExpectedInResponse:   []string{"diabetes history requires medical underwriting review"},
			ForbiddenInResponse:  []string{"current nicotine use"},
			ExpectedContextItems: []string{"A1C"},
		},
	}
}

// GetRevisionScenario returns the superseded guideline scenario
func GetRevisionScenario() TestScenario {
	return TestScenario{
		ID:          "revision",
		Name:        "Revised Tobacco Guideline",
		Description: "Citations must quote the current guideline version, never the superseded one",
		Carriers: []models.Carrier{
			{ID: "acme", Name: "Acme Life", PreferenceRank: 1},
		},
		Guidelines: []Guideline{
			{
				CarrierID:     "acme",
				Title:         "Tobacco Guide",
				EffectiveDate: date(2024, 1, 1),
				Text:          "## Tobacco\nNon-tobacco rates require 36 months without tobacco or nicotine use.\n",
			},
			{
				CarrierID:     "acme",
				Title:         "Tobacco Guide",
				EffectiveDate: date(2025, 1, 1),
				Text:          "## Tobacco\nNon-tobacco rates require 12 months without tobacco or nicotine use.\n",
			},
		},
		Profile: models.ClientProfile{
			Age:            41,
			Sex:            "male",
			HeightInches:   71,
			WeightPounds:   185,
			Tobacco:        models.TobaccoUse{Status: models.TobaccoFormer, Type: "cigarettes", YearsSinceQuit: 2},
			CoverageAmount: 500_000,
			ProductType:    models.ProductTerm,
			State:          "OH",
		},
		GroundTruth: GroundTruth{
			ExpectedTopCarrier:   "acme",
			ExpectedInResponse:   []string{"former tobacco use"},
			ForbiddenInResponse:  []string{"current nicotine use"},
			ExpectedContextItems: []string{"12 months"},
			CurrentValue:         "12 months",
			SupersededValue:      "36 months",
		},
	}
}

// GetAvocationScenario returns the hazardous activity scenario
func GetAvocationScenario() TestScenario {
	return TestScenario{
		ID:          "avocation",
		Name:        "Hazardous Avocation",
		Description: "Scuba diving should surface the carrier that rates avocations with a flat extra",
		Carriers: []models.Carrier{
			{ID: "summit", Name: "Summit Mutual", PreferenceRank: 2},
			{ID: "meridian", Name: "Meridian Life", PreferenceRank: 1},
		},
		Guidelines: []Guideline{
			{
				CarrierID:     "summit",
				Title:         "Avocation Manual",
				EffectiveDate: date(2025, 3, 1),
				Text: `## Avocations
Recreational scuba diving to depths under 100 feet is standard. Dives
between 100 and 130 feet carry a flat extra of $2.50 per thousand.
Private aviation requires an aviation questionnaire.
`,
			},
			{
				CarrierID:     "meridian",
				Title:         "Medical Impairment Guide",
				EffectiveDate: date(2025, 2, 1),
				Text: `## Hypertension
Controlled blood pressure on up to two medications qualifies for Preferred.

## Sleep Apnea
Compliant CPAP users with mild sleep apnea are considered Standard Plus.
`,
			},
		},
		Profile: models.ClientProfile{
			Age:            36,
			Sex:            "male",
			HeightInches:   70,
			WeightPounds:   175,
			RiskActivities: []string{"scuba diving"},
			CoverageAmount: 750_000,
			ProductType:    models.ProductTerm,
			State:          "FL",
		},
		GroundTruth: GroundTruth{
			ExpectedTopCarrier:   "summit",
			ExpectedInResponse:   []string{"hazardous activities may carry flat extras: scuba diving"},
			ExpectedContextItems: []string{"scuba"},
		},
	}
}

// AllScenarios returns every benchmark scenario
func AllScenarios() []TestScenario {
	return []TestScenario{
		GetDiabetesScenario(),
		GetRevisionScenario(),
		GetAvocationScenario(),
	}
}

// ScenarioByID finds a scenario by its ID
func ScenarioByID(id string) (TestScenario, bool) {
	for _, s := range AllScenarios() {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}

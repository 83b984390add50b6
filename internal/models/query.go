// ABOUTME: Query is one natural-language retrieval probe derived from a profile
// ABOUTME: Dimension ties the query to the profile attribute it examines
package models

// Dimension names the underwriting attribute a query examines
type Dimension string

const (
	DimensionEligibility Dimension = "eligibility"
	DimensionBuild       Dimension = "build"
	DimensionTobacco     Dimension = "tobacco"
	DimensionCannabis    Dimension = "cannabis"
	DimensionDiabetes    Dimension = "diabetes"
	DimensionCardiac     Dimension = "cardiac"
	DimensionCancer      Dimension = "cancer"
	DimensionRisk        Dimension = "risk"
	DimensionAccelerated Dimension = "accelerated"
	DimensionFinancial   Dimension = "financial"
	DimensionGeneral     Dimension = "general"
)

// Query is a retrieval probe
type Query struct {
	Dimension Dimension `json:"dimension"`
	Text      string    `json:"text"`
}

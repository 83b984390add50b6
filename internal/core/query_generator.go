// ABOUTME: QueryGenerator turns a client profile into retrieval probes
// ABOUTME: Output order is fixed and always starts with the eligibility query
package core

import (
	"fmt"
	"strings"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/models"
)

// MaxQueries bounds the number of probes per evaluation
const MaxQueries = 9

// QueryGenerator derives retrieval queries from profile attributes
type QueryGenerator struct {
	scoring config.Scoring
}

// NewQueryGenerator creates a QueryGenerator using the given thresholds
func NewQueryGenerator(scoring config.Scoring) *QueryGenerator {
	return &QueryGenerator{scoring: scoring}
}

// Generate returns between 3 and MaxQueries queries for a normalized profile
func (qg *QueryGenerator) Generate(p models.ClientProfile) []models.Query {
	queries := []models.Query{
		{Dimension: models.DimensionEligibility, Text: eligibilityQuery(p)},
		{Dimension: models.DimensionBuild, Text: fmt.Sprintf(
			"build chart height and weight limits for %.0f inches and %.0f pounds, BMI %.1f",
			p.HeightInches, p.WeightPounds, p.BMI())},
		{Dimension: models.DimensionTobacco, Text: tobaccoQuery(p.Tobacco)},
	}

	if p.UsesCannabis() {
		queries = append(queries, models.Query{
			Dimension: models.DimensionCannabis,
			Text:      strings.TrimSpace(fmt.Sprintf("cannabis marijuana use rating for %s %s users", p.Cannabis.Status, p.Cannabis.Type)),
		})
	}

	for _, cat := range p.ConditionCategories() {
		queries = append(queries, conditionQuery(cat, p.ConditionsIn(cat)))
	}

	if p.HasRiskExposure() {
		queries = append(queries, riskQuery(p))
	}

	if p.Age <= qg.scoring.AcceleratedMaxAge && p.CoverageAmount <= qg.scoring.AcceleratedMaxCoverage {
		queries = append(queries, models.Query{
			Dimension: models.DimensionAccelerated,
			Text: fmt.Sprintf("accelerated underwriting without exam for age %d and face amount $%d",
				p.Age, p.CoverageAmount),
		})
	}

	if p.CoverageAmount > qg.scoring.FinancialThreshold {
		queries = append(queries, models.Query{
			Dimension: models.DimensionFinancial,
			Text:      fmt.Sprintf("financial justification and income multiples for face amount $%d", p.CoverageAmount),
		})
	}

	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}
	return queries
}

func eligibilityQuery(p models.ClientProfile) string {
	subject := "applicant"
	if p.Sex != "" {
		subject = p.Sex + " applicant"
	}
	product := strings.ReplaceAll(p.ProductType, "_", " ")
	return fmt.Sprintf("issue ages, face amount limits and plan availability for a %d year old %s applying for $%d of %s",
		p.Age, subject, p.CoverageAmount, product)
}

func tobaccoQuery(t models.TobaccoUse) string {
	kind := t.Type
	if kind == "" {
		kind = "nicotine"
	}
	switch t.Status {
	case models.TobaccoCurrent:
		return fmt.Sprintf("tobacco rates for current %s users", kind)
	case models.TobaccoFormer:
		return fmt.Sprintf("tobacco look-back period for former %s users who quit %d years ago", kind, t.YearsSinceQuit)
	default:
		return "non-tobacco qualification and preferred non-smoker class requirements"
	}
}

func conditionQuery(category string, conditions []models.MedicalCondition) models.Query {
	details := make([]string, 0, len(conditions))
	for _, c := range conditions {
		d := c.Name
		if c.Severity != "" {
			d = c.Severity + " " + d
		}
		if c.YearsSinceDiagnosis > 0 {
			d += fmt.Sprintf(" diagnosed %d years ago", c.YearsSinceDiagnosis)
		}
		if c.Treatment != "" {
			d += " treated with " + c.Treatment
		}
		details = append(details, d)
	}

	var dim models.Dimension
	var lead string
	switch category {
	case models.ConditionDiabetes:
		dim, lead = models.DimensionDiabetes, "diabetes underwriting guidelines for"
	case models.ConditionCardiac:
		dim, lead = models.DimensionCardiac, "cardiac history underwriting guidelines for"
	default:
		dim, lead = models.DimensionCancer, "cancer history underwriting guidelines for"
	}
	return models.Query{Dimension: dim, Text: lead + " " + strings.Join(details, "; ")}
}

func riskQuery(p models.ClientProfile) models.Query {
	var parts []string
	if p.DUIHistory {
		parts = append(parts, "DUI driving record")
	}
	if len(p.RiskActivities) > 0 {
		parts = append(parts, strings.Join(p.RiskActivities, ", "))
	}
	return models.Query{
		Dimension: models.DimensionRisk,
		Text:      "avocation and hazardous activity ratings: " + strings.Join(parts, "; "),
	}
}

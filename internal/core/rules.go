// ABOUTME: Deterministic underwriting rules that turn profile facts into reasons and advisories
// ABOUTME: Rules run on every evaluation; outcomes are tagged with the dimension they speak to
package core

import (
	"fmt"
	"strings"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/models"
)

// FallbackReason is emitted when no other positive reason applies
const FallbackReason = "profile reviewed against carrier guidelines"

// RuleOutcome is one reason or advisory produced by the rule set
type RuleOutcome struct {
	Dimension models.Dimension
	Text      string
	Advisory  bool
	Review    bool
}

// RuleSet evaluates the fixed underwriting rules
type RuleSet struct {
	scoring config.Scoring
}

// NewRuleSet creates a RuleSet using the given thresholds
func NewRuleSet(scoring config.Scoring) *RuleSet {
	return &RuleSet{scoring: scoring}
}

// Evaluate returns reasons first, then advisories. At least one reason is always present.
func (rs *RuleSet) Evaluate(p models.ClientProfile) []RuleOutcome {
	var reasons, advisories []RuleOutcome
	reason := func(d models.Dimension, text string) {
		reasons = append(reasons, RuleOutcome{Dimension: d, Text: text})
	}
	advise := func(d models.Dimension, review bool, text string) {
		advisories = append(advisories, RuleOutcome{Dimension: d, Text: text, Advisory: true, Review: review})
	}

	bmi := p.BMI()
	if bmi >= rs.scoring.BMIMin && bmi <= rs.scoring.BMIMax {
		reason(models.DimensionBuild, "build within standard range")
	} else {
		advise(models.DimensionBuild, true, fmt.Sprintf("BMI %.1f outside standard build range", bmi))
	}

	switch p.Tobacco.Status {
	case models.TobaccoNever:
		reason(models.DimensionTobacco, "non-tobacco qualification")
	case models.TobaccoFormer:
		if p.Tobacco.YearsSinceQuit >= rs.scoring.TobaccoLookbackYears {
			reason(models.DimensionTobacco, "former tobacco use beyond typical look-back period")
		} else {
			advise(models.DimensionTobacco, false, "former tobacco use within look-back period may be rated as tobacco")
		}
	case models.TobaccoCurrent:
		advise(models.DimensionTobacco, false, "current nicotine use will impact rating class")
	}

	if p.UsesCannabis() {
		advise(models.DimensionCannabis, p.Cannabis.Status == models.CannabisRegular,
			"cannabis use may be rated; carrier treatment varies")
	}

	if len(p.Conditions) == 0 {
		reason(models.DimensionEligibility, "no major medical conditions reported")
	}
	for _, cat := range p.ConditionCategories() {
		advise(models.Dimension(cat), true, cat+" history requires medical underwriting review")
	}

	if p.DUIHistory {
		advise(models.DimensionRisk, true, "DUI history may require driving record review")
	}
	if len(p.RiskActivities) > 0 {
		advise(models.DimensionRisk, true, "hazardous activities may carry flat extras: "+strings.Join(p.RiskActivities, ", "))
	}

	if p.Age > rs.scoring.SeniorAge {
		advise(models.DimensionEligibility, false, fmt.Sprintf("applicant age above %d limits product availability", rs.scoring.SeniorAge))
	}

	if p.Age <= rs.scoring.AcceleratedMaxAge && p.CoverageAmount <= rs.scoring.AcceleratedMaxCoverage {
		reason(models.DimensionAccelerated, "eligible for accelerated underwriting consideration")
	}
	if p.CoverageAmount > rs.scoring.FinancialThreshold {
		advise(models.DimensionFinancial, true, "face amount requires financial underwriting")
	}

	if len(reasons) == 0 {
		reason(models.DimensionGeneral, FallbackReason)
	}
	return append(reasons, advisories...)
}

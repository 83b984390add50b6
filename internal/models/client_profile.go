// ABOUTME: ClientProfile is the structured underwriting intake for one applicant
// ABOUTME: Normalize and Validate run at the boundary before evaluation
package models

import (
	"fmt"
	"strings"
)

// Tobacco statuses
const (
	TobaccoNever   = "never"
	TobaccoFormer  = "former"
	TobaccoCurrent = "current"
)

// Cannabis statuses
const (
	CannabisNever      = "never"
	CannabisFormer     = "former"
	CannabisOccasional = "occasional"
	CannabisRegular    = "regular"
)

// Condition severities
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Product types
const (
	ProductTerm         = "term"
	ProductWholeLife    = "whole_life"
	ProductUniversal    = "universal_life"
	ProductFinalExpense = "final_expense"
)

// Condition categories that drive dedicated retrieval queries
const (
	ConditionDiabetes = "diabetes"
	ConditionCardiac  = "cardiac"
	ConditionCancer   = "cancer"
)

var conditionKeywords = []struct {
	category string
	keywords []string
}{
	{ConditionDiabetes, []string{"diabet", "a1c", "insulin", "glucose"}},
	{ConditionCardiac, []string{"cardiac", "heart", "coronary", "stent", "bypass", "myocardial", "arrhythmia", "afib", "atrial"}},
	{ConditionCancer, []string{"cancer", "tumor", "tumour", "carcinoma", "lymphoma", "leukemia", "melanoma", "sarcoma"}},
}

// TobaccoUse describes nicotine history
type TobaccoUse struct {
	Status         string `json:"status" yaml:"status"`
	Type           string `json:"type,omitempty" yaml:"type,omitempty"`
	YearsSinceQuit int    `json:"years_since_quit,omitempty" yaml:"years_since_quit,omitempty"`
}

// CannabisUse describes marijuana history
type CannabisUse struct {
	Status string `json:"status" yaml:"status"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// MedicalCondition is a named condition disclosed on the intake
type MedicalCondition struct {
	Name                string `json:"name" yaml:"name"`
	Severity            string `json:"severity,omitempty" yaml:"severity,omitempty"`
	YearsSinceDiagnosis int    `json:"years_since_diagnosis,omitempty" yaml:"years_since_diagnosis,omitempty"`
	Treatment           string `json:"treatment,omitempty" yaml:"treatment,omitempty"`
}

// Category classifies the condition into one of the query categories, or ""
func (m MedicalCondition) Category() string {
	name := strings.ToLower(m.Name)
	for _, ck := range conditionKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(name, kw) {
				return ck.category
			}
		}
	}
	return ""
}

// ClientProfile is immutable input to one evaluation
type ClientProfile struct {
	Age            int                `json:"age" yaml:"age"`
	Sex            string             `json:"sex" yaml:"sex"`
	HeightInches   float64            `json:"height_inches" yaml:"height_inches"`
	WeightPounds   float64            `json:"weight_pounds" yaml:"weight_pounds"`
	Tobacco        TobaccoUse         `json:"tobacco" yaml:"tobacco"`
	Cannabis       CannabisUse        `json:"cannabis" yaml:"cannabis"`
	Conditions     []MedicalCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	RiskActivities []string           `json:"risk_activities,omitempty" yaml:"risk_activities,omitempty"`
	DUIHistory     bool               `json:"dui_history,omitempty" yaml:"dui_history,omitempty"`
	CoverageAmount int64              `json:"coverage_amount" yaml:"coverage_amount"`
	ProductType    string             `json:"product_type" yaml:"product_type"`
	State          string             `json:"state,omitempty" yaml:"state,omitempty"`
}

// Normalize lowercases enum fields and applies defaults for omitted statuses.
// It returns a copy; the receiver is not modified.
func (p ClientProfile) Normalize() ClientProfile {
	out := p
	out.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	out.Tobacco.Status = strings.ToLower(strings.TrimSpace(p.Tobacco.Status))
	if out.Tobacco.Status == "" {
		out.Tobacco.Status = TobaccoNever
	}
	out.Cannabis.Status = strings.ToLower(strings.TrimSpace(p.Cannabis.Status))
	if out.Cannabis.Status == "" {
		out.Cannabis.Status = CannabisNever
	}
	out.ProductType = strings.ToLower(strings.TrimSpace(p.ProductType))
	if out.ProductType == "" {
		out.ProductType = ProductTerm
	}
	out.State = strings.ToUpper(strings.TrimSpace(p.State))

	out.Conditions = make([]MedicalCondition, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		c.Severity = strings.ToLower(strings.TrimSpace(c.Severity))
		out.Conditions = append(out.Conditions, c)
	}

	out.RiskActivities = make([]string, 0, len(p.RiskActivities))
	for _, a := range p.RiskActivities {
		if a = strings.TrimSpace(a); a != "" {
			out.RiskActivities = append(out.RiskActivities, a)
		}
	}
	return out
}

// Validate checks a normalized profile
func (p *ClientProfile) Validate() error {
	if p.Age < 18 || p.Age > 100 {
		return fmt.Errorf("%w: age must be between 18 and 100, got %d", ErrInvalidInput, p.Age)
	}
	if p.HeightInches <= 0 {
		return fmt.Errorf("%w: height must be positive", ErrInvalidInput)
	}
	if p.WeightPounds <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	if p.CoverageAmount <= 0 {
		return fmt.Errorf("%w: coverage amount must be positive", ErrInvalidInput)
	}
	switch p.Sex {
	case "male", "female", "":
	default:
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, p.Sex)
	}
	switch p.Tobacco.Status {
	case TobaccoNever, TobaccoFormer, TobaccoCurrent:
	default:
		return fmt.Errorf("%w: unknown tobacco status %q", ErrInvalidInput, p.Tobacco.Status)
	}
	switch p.Cannabis.Status {
	case CannabisNever, CannabisFormer, CannabisOccasional, CannabisRegular:
	default:
		return fmt.Errorf("%w: unknown cannabis status %q", ErrInvalidInput, p.Cannabis.Status)
	}
	switch p.ProductType {
	case ProductTerm, ProductWholeLife, ProductUniversal, ProductFinalExpense:
	default:
		return fmt.Errorf("%w: unknown product type %q", ErrInvalidInput, p.ProductType)
	}
	for _, c := range p.Conditions {
		switch c.Severity {
		case "", SeverityMild, SeverityModerate, SeveritySevere:
		default:
			return fmt.Errorf("%w: unknown severity %q for %s", ErrInvalidInput, c.Severity, c.Name)
		}
	}
	if p.State != "" && len(p.State) != 2 {
		return fmt.Errorf("%w: state must be a two-letter code", ErrInvalidInput)
	}
	return nil
}

// BMI computes body mass index from imperial measurements
func (p *ClientProfile) BMI() float64 {
	if p.HeightInches <= 0 {
		return 0
	}
	return p.WeightPounds / (p.HeightInches * p.HeightInches) * 703
}

// ConditionCategories returns the flagged query categories in fixed order
func (p *ClientProfile) ConditionCategories() []string {
	present := make(map[string]bool)
	for _, c := range p.Conditions {
		if cat := c.Category(); cat != "" {
			present[cat] = true
		}
	}
	var out []string
	for _, ck := range conditionKeywords {
		if present[ck.category] {
			out = append(out, ck.category)
		}
	}
	return out
}

// ConditionsIn returns conditions belonging to a category
func (p *ClientProfile) ConditionsIn(category string) []MedicalCondition {
	var out []MedicalCondition
	for _, c := range p.Conditions {
		if c.Category() == category {
			out = append(out, c)
		}
	}
	return out
}

// UsesCannabis reports current or recent cannabis use
func (p *ClientProfile) UsesCannabis() bool {
	return p.Cannabis.Status != "" && p.Cannabis.Status != CannabisNever
}

// HasRiskExposure reports DUI history or hazardous activities
func (p *ClientProfile) HasRiskExposure() bool {
	return p.DUIHistory || len(p.RiskActivities) > 0
}

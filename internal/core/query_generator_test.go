// ABOUTME: Tests for QueryGenerator profile-to-query derivation
// ABOUTME: Verifies ordering, conditional probes and the query count bounds
package core

import (
	"strings"
	"testing"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/models"
)

func dimensions(queries []models.Query) []models.Dimension {
	out := make([]models.Dimension, len(queries))
	for i, q := range queries {
		out[i] = q.Dimension
	}
	return out
}

func normalized(p models.ClientProfile) models.ClientProfile {
	return p.Normalize()
}

func TestGenerate_MinimalProfile(t *testing.T) {
	qg := NewQueryGenerator(config.DefaultScoring())
	p := normalized(models.ClientProfile{
		Age: 72, HeightInches: 66, WeightPounds: 150, CoverageAmount: 1_000_000,
	})

	queries := qg.Generate(p)
	if len(queries) == 0 || !strings.Contains(queries[0].Text, "$1000000") {
		t.Fatalf("eligibility query should carry the coverage amount, got %v", queries)
	}

	got := dimensions(queries)
	want := []models.Dimension{models.DimensionEligibility, models.DimensionBuild, models.DimensionTobacco}
	if len(got) != len(want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerate_FullProfileOrder(t *testing.T) {
	qg := NewQueryGenerator(config.DefaultScoring())
	p := normalized(models.ClientProfile{
		Age:            52,
		Sex:            "female",
		HeightInches:   64,
		WeightPounds:   190,
		Tobacco:        models.TobaccoUse{Status: "current", Type: "cigarettes"},
		Cannabis:       models.CannabisUse{Status: "occasional", Type: "edibles"},
		Conditions:     []models.MedicalCondition{{Name: "melanoma"}, {Name: "type 2 diabetes", Severity: "mild"}, {Name: "atrial fibrillation"}},
		RiskActivities: []string{"scuba diving"},
		DUIHistory:     true,
		CoverageAmount: 250_000,
	})

	got := dimensions(qg.Generate(p))
	want := []models.Dimension{
		models.DimensionEligibility, models.DimensionBuild, models.DimensionTobacco,
		models.DimensionCannabis, models.DimensionDiabetes, models.DimensionCardiac,
		models.DimensionCancer, models.DimensionRisk, models.DimensionAccelerated,
	}
	if len(got) != len(want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerate_FinancialInsteadOfAccelerated(t *testing.T) {
	qg := NewQueryGenerator(config.DefaultScoring())
	p := normalized(models.ClientProfile{
		Age: 40, HeightInches: 70, WeightPounds: 170, CoverageAmount: 5_000_000,
	})

	got := dimensions(qg.Generate(p))
	last := got[len(got)-1]
	if last != models.DimensionFinancial {
		t.Errorf("last query = %s, want financial", last)
	}
	for _, d := range got {
		if d == models.DimensionAccelerated {
			t.Error("accelerated query generated above accelerated coverage limit")
		}
	}
}

func TestGenerate_TobaccoWording(t *testing.T) {
	qg := NewQueryGenerator(config.DefaultScoring())
	tests := []struct {
		status string
		want   string
	}{
		{"never", "non-tobacco qualification"},
		{"current", "current"},
		{"former", "look-back"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			p := normalized(models.ClientProfile{
				Age: 30, HeightInches: 68, WeightPounds: 160, CoverageAmount: 100_000,
				Tobacco: models.TobaccoUse{Status: tt.status, YearsSinceQuit: 3},
			})
			queries := qg.Generate(p)
			if !strings.Contains(queries[2].Text, tt.want) {
				t.Errorf("tobacco query = %q, want containing %q", queries[2].Text, tt.want)
			}
		})
	}
}

func TestGenerate_Bounds(t *testing.T) {
	qg := NewQueryGenerator(config.DefaultScoring())
	ages := []int{18, 45, 60, 61, 100}
	coverages := []int64{1, 500_000, 1_000_000, 1_000_001, 10_000_000}
	tobacco := []string{"never", "former", "current"}
	cannabis := []string{"never", "regular"}

	for _, age := range ages {
		for _, cov := range coverages {
			for _, tb := range tobacco {
				for _, cb := range cannabis {
					p := normalized(models.ClientProfile{
						Age: age, HeightInches: 70, WeightPounds: 200, CoverageAmount: cov,
						Tobacco:        models.TobaccoUse{Status: tb},
						Cannabis:       models.CannabisUse{Status: cb},
						Conditions:     []models.MedicalCondition{{Name: "diabetes"}, {Name: "heart attack"}, {Name: "lymphoma"}},
						RiskActivities: []string{"racing"},
					})
					queries := qg.Generate(p)
					if len(queries) < 3 || len(queries) > MaxQueries {
						t.Errorf("age=%d cov=%d: %d queries, want 3..%d", age, cov, len(queries), MaxQueries)
					}
					if queries[0].Dimension != models.DimensionEligibility {
						t.Errorf("first query = %s, want eligibility", queries[0].Dimension)
					}
				}
			}
		}
	}
}

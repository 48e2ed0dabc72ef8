package score

import (
	"math"
	"testing"

	"github.com/huangsam/ecoscore/schema"
)

// FuzzAggregate checks that scores stay within [0,1] for arbitrary outcomes and weights.
func FuzzAggregate(f *testing.F) {
	f.Add(0.3, 0.3, 0.3, 0.1, 0.5, 1.0, 0.2, 0.8)
	f.Add(1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 1.0, 1.0)
	f.Add(5.0, 2.0, 0.1, 9.0, -3.0, 7.0, 2.0, 0.0)
	f.Add(0.0, 0.0, 0.0, 0.0, 0.5, 0.5, 0.5, 0.5)

	f.Fuzz(func(t *testing.T, we, wr, wo, wc, s1, s2, s3, s4 float64) {
		settings := schema.DefaultSettings()
		settings.Weights = schema.CategoryWeights{
			EnergyEfficiency:  we,
			ResourceUsage:     wr,
			CodeOptimizations: wo,
			CustomRules:       wc,
		}
		outcomes := []schema.RuleOutcome{
			{RuleID: "e", Category: schema.EnergyEfficiency, Weight: 1, Score: s1},
			{RuleID: "r", Category: schema.ResourceUsage, Weight: 0.5, Score: s2},
			{RuleID: "o", Category: schema.CodeOptimizations, Weight: 0.25, Score: s3},
			{RuleID: "c", Category: schema.CustomRules, Weight: 2, Score: s4},
		}

		categories, overall, _, err := Aggregate(outcomes, settings)
		if err != nil {
			// Only malformed weights may fail.
			if _, nerr := NormalizeWeights(settings.Weights); nerr == nil {
				t.Fatalf("unexpected error for valid weights: %v", err)
			}
			return
		}
		if math.IsNaN(overall) || overall < 0 || overall > 1 {
			t.Fatalf("overall score out of range: %v", overall)
		}
		for c, cs := range categories {
			if math.IsNaN(cs.Score) || cs.Score < 0 || cs.Score > 1 {
				t.Fatalf("category %s score out of range: %v", c, cs.Score)
			}
		}
	})
}

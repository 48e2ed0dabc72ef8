// Package score reduces rule outcomes to category scores and an overall eco-score.
package score

import (
	"fmt"
	"math"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// WeightTolerance is how far the category weight sum may drift from 1.0 before renormalizing.
const WeightTolerance = 1e-6

// NeutralScore is assigned to categories with no applicable outcomes.
const NeutralScore = 1.0

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// NormalizeWeights validates category weights and rescales them to sum to 1.0.
// Negative, non-finite or all-zero weights are a configuration error.
func NormalizeWeights(w schema.CategoryWeights) (schema.CategoryWeights, error) {
	for _, c := range schema.AllCategories {
		v := w.Get(c)
		key := fmt.Sprintf("weights.%s", c)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return w, contract.NewConfigurationError(key, "must be a finite number")
		}
		if v < 0 {
			return w, contract.NewConfigurationError(key, "must be non-negative (received %.3f)", v)
		}
	}
	sum := w.Sum()
	if sum <= 0 {
		return w, contract.NewConfigurationError("weights", "at least one category weight must be positive")
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return w.Scale(1.0 / sum), nil
	}
	return w, nil
}

// Aggregate groups outcomes by category, scores each category as the weighted mean
// of its non-skipped outcomes, and combines categories with the normalized weights.
func Aggregate(outcomes []schema.RuleOutcome, settings schema.Settings) (map[schema.Category]schema.CategoryScore, float64, bool, error) {
	weights, err := NormalizeWeights(settings.Weights)
	if err != nil {
		return nil, 0, false, err
	}

	grouped := make(map[schema.Category][]schema.RuleOutcome, len(schema.AllCategories))
	for _, o := range outcomes {
		if _, ok := schema.ValidCategories[o.Category]; !ok {
			return nil, 0, false, fmt.Errorf("outcome %s has unknown category %q", o.RuleID, o.Category)
		}
		if o.Weight < 0 || math.IsNaN(o.Weight) {
			return nil, 0, false, fmt.Errorf("outcome %s has invalid weight %v", o.RuleID, o.Weight)
		}
		grouped[o.Category] = append(grouped[o.Category], o)
	}

	categories := make(map[schema.Category]schema.CategoryScore, len(schema.AllCategories))
	overall := 0.0
	for _, c := range schema.AllCategories {
		members := grouped[c]
		cs := schema.CategoryScore{
			Category: c,
			Score:    categoryScore(members),
			Weight:   weights.Get(c),
			Outcomes: members,
		}
		if cs.Outcomes == nil {
			cs.Outcomes = []schema.RuleOutcome{}
		}
		cs.BelowTarget = cs.Score < settings.Thresholds.CategoryScore
		categories[c] = cs
		overall += cs.Weight * cs.Score
	}

	overall = Clamp01(overall)
	return categories, overall, overall < settings.Thresholds.EcoScore, nil
}

func categoryScore(outcomes []schema.RuleOutcome) float64 {
	num, den := 0.0, 0.0
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		num += o.Weight * Clamp01(o.Score)
		den += o.Weight
	}
	if den == 0 {
		return NeutralScore
	}
	return Clamp01(num / den)
}

// Project summarizes unit results as the mean of the successful unit scores.
// With no successful units the project is neutral.
func Project(units []schema.UnitResult) (float64, map[schema.Category]float64) {
	averages := make(map[schema.Category]float64, len(schema.AllCategories))
	n := 0
	total := 0.0
	for _, u := range units {
		if u.Result == nil {
			continue
		}
		n++
		total += u.Result.OverallScore
		for _, c := range schema.AllCategories {
			averages[c] += u.Result.CategoryScoreOf(c)
		}
	}
	if n == 0 {
		for _, c := range schema.AllCategories {
			averages[c] = NeutralScore
		}
		return NeutralScore, averages
	}
	for _, c := range schema.AllCategories {
		averages[c] = Clamp01(averages[c] / float64(n))
	}
	return Clamp01(total / float64(n)), averages
}

package rules

import (
	"fmt"
	"math"

	"github.com/huangsam/ecoscore/schema"
)

// EvaluateAll runs every rule in order against the same facts.
// A rule that errors, panics or reports a NaN score is recorded as skipped
// with a neutral score and a warning; the remaining rules still run.
func EvaluateAll(reg *Registry, facts schema.StructuralFacts, src []byte) ([]schema.RuleOutcome, []schema.RuleEvaluationWarning) {
	outcomes := make([]schema.RuleOutcome, 0, reg.Len())
	var warnings []schema.RuleEvaluationWarning

	for _, rule := range reg.rules {
		info := rule.Info()
		out, err := safeEvaluate(rule, facts, src)
		if err == nil && math.IsNaN(out.Score) {
			err = fmt.Errorf("score is NaN")
		}
		if err != nil {
			warnings = append(warnings, schema.RuleEvaluationWarning{RuleID: info.ID, Reason: err.Error()})
			outcomes = append(outcomes, skipped(info, err))
			continue
		}

		// The registry is authoritative for identity and weight.
		out.RuleID = info.ID
		out.Category = info.Category
		out.Weight = info.Weight
		out.Score = clamp01(out.Score)
		out.Passed = out.Passed && out.Score >= 1.0
		outcomes = append(outcomes, out)
	}
	return outcomes, warnings
}

func safeEvaluate(rule Rule, facts schema.StructuralFacts, src []byte) (out schema.RuleOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Evaluate(facts, src)
}

func skipped(info Info, err error) schema.RuleOutcome {
	return schema.RuleOutcome{
		RuleID:     info.ID,
		Category:   info.Category,
		Score:      1.0,
		Passed:     true,
		Weight:     info.Weight,
		Skipped:    true,
		Diagnostic: err.Error(),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Package rules holds the ordered rule set that grades structural facts.
package rules

import (
	"math"

	"github.com/huangsam/ecoscore/schema"
)

// Info describes a rule independently of any analysis.
type Info struct {
	ID          string          `json:"id" yaml:"id"`
	Category    schema.Category `json:"category" yaml:"category"`
	Weight      float64         `json:"weight" yaml:"weight"`
	Description string          `json:"description" yaml:"description"`
}

// Rule is an independent check over the facts and raw text of one unit.
// Rules never see each other's outcomes.
type Rule interface {
	Info() Info
	Evaluate(facts schema.StructuralFacts, src []byte) (schema.RuleOutcome, error)
}

// countRule grades a single counted pattern with a multiplicative penalty
// per occurrence above the tolerated count.
type countRule struct {
	info      Info
	count     func(f schema.StructuralFacts, src []byte) int
	tolerance int
	penalty   float64
	advice    schema.SuggestionPayload
}

var _ Rule = &countRule{} // Compile-time check

func (r *countRule) Info() Info {
	return r.info
}

func (r *countRule) Evaluate(f schema.StructuralFacts, src []byte) (schema.RuleOutcome, error) {
	over := r.count(f, src) - r.tolerance
	if over < 0 {
		over = 0
	}
	return newOutcome(r.info, GradedScore(r.penalty, over), over, r.advice), nil
}

// GradedScore returns penalty^n, the score left after n penalized occurrences.
func GradedScore(penalty float64, n int) float64 {
	if n <= 0 {
		return 1.0
	}
	return math.Pow(penalty, float64(n))
}

// newOutcome builds an outcome that carries advice only when the rule failed.
func newOutcome(info Info, score float64, occurrences int, advice schema.SuggestionPayload) schema.RuleOutcome {
	out := schema.RuleOutcome{
		RuleID:      info.ID,
		Category:    info.Category,
		Score:       score,
		Passed:      score >= 1.0,
		Weight:      info.Weight,
		Occurrences: occurrences,
	}
	if !out.Passed {
		payload := advice
		out.Suggestion = &payload
	}
	return out
}

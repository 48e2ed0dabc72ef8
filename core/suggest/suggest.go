// Package suggest turns failing rule outcomes into ranked recommendations.
package suggest

import (
	"sort"

	"github.com/huangsam/ecoscore/schema"
)

// Severity bands by rule score.
const (
	HighSeverityBelow   = 0.4
	MediumSeverityBelow = 0.7
)

// Notes for specific rules; anything else falls back to its category note.
var ruleNotes = map[string]string{
	"nested_loops":             "Cutting iteration counts reduces CPU time, the largest driver of a program's energy use.",
	"io_in_loop":               "Batched I/O lets disks and network links idle longer between bursts.",
	"unbounded_recursion":      "Memoized work is computed once instead of burning cycles on repeats.",
	"container_growth_in_loop": "Single-pass construction avoids repeated reallocation and copying, lowering memory churn.",
	"unmanaged_resource":       "Promptly released handles let the OS reclaim buffers and descriptors sooner.",
	"string_concat_in_loop":    "Avoiding quadratic copying saves both CPU cycles and memory bandwidth.",
}

var categoryNotes = map[schema.Category]string{
	schema.EnergyEfficiency:  "Reducing redundant CPU work lowers the energy drawn on every run.",
	schema.ResourceUsage:     "Lower memory and handle pressure means less hardware for the same workload.",
	schema.CodeOptimizations: "Cheaper operations shorten run time, cutting energy use and emissions.",
	schema.CustomRules:       "Addresses a project-specific inefficiency flagged by your team.",
}

var genericText = map[schema.Category]string{
	schema.EnergyEfficiency:  "Consider more efficient loop constructs, comprehensions and generator expressions.",
	schema.ResourceUsage:     "Review memory and resource management, using with statements and sets where they fit.",
	schema.CodeOptimizations: "Optimize string operations and prefer efficient data structures.",
	schema.CustomRules:       "Review the custom rule and apply its recommendation.",
}

// SeverityFor maps a rule score to a severity band.
func SeverityFor(score float64) schema.Severity {
	switch {
	case score < HighSeverityBelow:
		return schema.SeverityHigh
	case score < MediumSeverityBelow:
		return schema.SeverityMedium
	default:
		return schema.SeverityLow
	}
}

// EnvironmentalNote returns the qualitative impact note for a rule.
func EnvironmentalNote(ruleID string, c schema.Category) string {
	if note, ok := ruleNotes[ruleID]; ok {
		return note
	}
	return categoryNotes[c]
}

// Generate emits one suggestion per failing rule, ranked by category weight times
// rule weight. Ties keep category order then rule registration order.
func Generate(categories map[schema.Category]schema.CategoryScore) []schema.Suggestion {
	var out []schema.Suggestion
	index := make(map[string]int)

	for _, c := range schema.AllCategories {
		cs, ok := categories[c]
		if !ok {
			continue
		}
		for _, o := range cs.Outcomes {
			if o.Skipped || o.Score >= 1.0 {
				continue
			}
			occurrences := max(o.Occurrences, 1)
			if i, seen := index[o.RuleID]; seen {
				out[i].Occurrences += occurrences
				if o.Score < out[i].Score {
					out[i].Score = o.Score
					out[i].Severity = SeverityFor(o.Score)
				}
				continue
			}
			index[o.RuleID] = len(out)
			out = append(out, newSuggestion(cs, o, occurrences))
		}
	}

	sortByPriority(out)
	return out
}

func newSuggestion(cs schema.CategoryScore, o schema.RuleOutcome, occurrences int) schema.Suggestion {
	s := schema.Suggestion{
		RuleID:            o.RuleID,
		Category:          cs.Category,
		Text:              genericText[cs.Category],
		Severity:          SeverityFor(o.Score),
		EnvironmentalNote: EnvironmentalNote(o.RuleID, cs.Category),
		Occurrences:       occurrences,
		Priority:          cs.Weight * o.Weight,
		Score:             o.Score,
	}
	if p := o.Suggestion; p != nil {
		if p.Text != "" {
			s.Text = p.Text
		}
		s.Impact = p.Impact
		s.Example = p.Example
	}
	return s
}

// Merge combines suggestion lists from several units, summing occurrences of
// the same rule and keeping its worst score.
func Merge(lists ...[]schema.Suggestion) []schema.Suggestion {
	var out []schema.Suggestion
	index := make(map[string]int)
	for _, list := range lists {
		for _, s := range list {
			i, seen := index[s.RuleID]
			if !seen {
				index[s.RuleID] = len(out)
				out = append(out, s)
				continue
			}
			out[i].Occurrences += s.Occurrences
			out[i].Priority = max(out[i].Priority, s.Priority)
			if s.Score < out[i].Score {
				out[i].Score = s.Score
				out[i].Severity = SeverityFor(s.Score)
			}
		}
	}
	sortByPriority(out)
	return out
}

func sortByPriority(s []schema.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Priority > s[j].Priority
	})
}

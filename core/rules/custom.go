package rules

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// DefaultCustomRuleWeight applies when a custom rule omits its weight.
const DefaultCustomRuleWeight = 1.0

// MaxLineLength is the longest line long_lines accepts.
const MaxLineLength = 120

// catalog holds optional checks that users enable by name under custom_rules.
var catalog = map[string]func(info Info) *countRule{
	"print_calls": func(info Info) *countRule {
		info.Description = "Calls to print in library code"
		return &countRule{
			info:    info,
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.PrintCalls },
			penalty: 0.9,
			advice: schema.SuggestionPayload{
				Text:    "Route diagnostics through the logging module so they can be filtered.",
				Impact:  "Unconditional console output costs a write syscall per call.",
				Example: `logger.debug("processed %s", item)`,
			},
		}
	},
	"sleep_calls": func(info Info) *countRule {
		info.Description = "Blocking sleeps used for waiting"
		return &countRule{
			info:    info,
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.SleepCalls },
			penalty: 0.7,
			advice: schema.SuggestionPayload{
				Text:    "Wait on events or futures instead of polling with sleep.",
				Impact:  "Polling loops wake the CPU repeatedly without doing useful work.",
				Example: `done.wait(timeout=30)`,
			},
		}
	},
	"long_lines": func(info Info) *countRule {
		info.Description = fmt.Sprintf("Lines longer than %d characters", MaxLineLength)
		return &countRule{
			info:    info,
			count:   func(_ schema.StructuralFacts, src []byte) int { return countLongLines(src, MaxLineLength) },
			penalty: 0.95,
			advice: schema.SuggestionPayload{
				Text:   "Break long expressions into named intermediate values.",
				Impact: "Dense lines hide repeated work that is easier to spot and hoist when split.",
				Example: `subtotal = price * quantity
total = subtotal + shipping`,
			},
		}
	},
}

// CatalogNames returns the optional check names in sorted order.
func CatalogNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCustomRule resolves a custom rule spec into a rule in the custom_rules category.
func NewCustomRule(spec schema.CustomRuleSpec) (Rule, error) {
	key := fmt.Sprintf("custom_rules[%s]", spec.Name)
	if spec.Name == "" {
		return nil, contract.NewConfigurationError("custom_rules", "rule name is required")
	}
	weight := spec.WeightOr(DefaultCustomRuleWeight)
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, contract.NewConfigurationError(key, "weight must be a non-negative number (received %.3f)", weight)
	}
	info := Info{ID: spec.Name, Category: schema.CustomRules, Weight: weight}

	var rule *countRule
	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, &contract.ConfigurationError{Key: key, Reason: "invalid pattern", Err: err}
		}
		info.Description = fmt.Sprintf("Source matching /%s/", spec.Pattern)
		rule = &countRule{
			info:    info,
			count:   func(_ schema.StructuralFacts, src []byte) int { return len(re.FindAllIndex(src, -1)) },
			penalty: 0.8,
			advice: schema.SuggestionPayload{
				Text:   fmt.Sprintf("Avoid code matching %q.", spec.Pattern),
				Impact: "Flagged by a project-specific efficiency rule.",
			},
		}
	} else {
		build, ok := catalog[spec.Name]
		if !ok {
			return nil, contract.NewConfigurationError(key, "unknown rule; set a pattern or use one of %v", CatalogNames())
		}
		rule = build(info)
	}

	if spec.Message != "" {
		rule.advice.Text = spec.Message
	}
	if spec.Example != "" {
		rule.advice.Example = spec.Example
	}
	return rule, nil
}

func countLongLines(src []byte, limit int) int {
	count := 0
	for line := range bytes.SplitSeq(src, []byte{'\n'}) {
		if utf8.RuneCount(bytes.TrimRight(line, "\r")) > limit {
			count++
		}
	}
	return count
}

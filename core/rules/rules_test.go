package rules

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

func weight(v float64) *float64 { return &v }

// stubRule is a configurable rule for exercising the registry protocol.
type stubRule struct {
	info     Info
	score    float64
	err      error
	panicMsg string
}

func (s *stubRule) Info() Info { return s.info }

func (s *stubRule) Evaluate(_ schema.StructuralFacts, _ []byte) (schema.RuleOutcome, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return schema.RuleOutcome{}, s.err
	}
	return schema.RuleOutcome{RuleID: "spoofed", Score: s.score, Passed: s.score >= 1}, nil
}

func stub(id string, score float64) *stubRule {
	return &stubRule{info: Info{ID: id, Category: schema.CustomRules, Weight: 1}, score: score}
}

// TestBuiltinsOrderAndCategories pins the built-in registry layout.
func TestBuiltinsOrderAndCategories(t *testing.T) {
	expected := []struct {
		id       string
		category schema.Category
		weight   float64
	}{
		{NestedLoops, schema.EnergyEfficiency, 1.0},
		{IOInLoop, schema.EnergyEfficiency, 0.8},
		{UnboundedRecursion, schema.EnergyEfficiency, 0.6},
		{EagerMaterialization, schema.EnergyEfficiency, 0.5},
		{ContainerGrowthInLoop, schema.ResourceUsage, 1.0},
		{GlobalState, schema.ResourceUsage, 0.5},
		{UnmanagedResource, schema.ResourceUsage, 0.7},
		{StringConcatInLoop, schema.CodeOptimizations, 1.0},
		{StringLiteralConcat, schema.CodeOptimizations, 0.3},
		{KeyErrorLookup, schema.CodeOptimizations, 0.5},
		{ListMembership, schema.CodeOptimizations, 0.6},
		{WildcardImport, schema.CodeOptimizations, 0.4},
	}

	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	require.Equal(t, len(expected), reg.Len())

	for i, info := range reg.Infos() {
		assert.Equal(t, expected[i].id, info.ID)
		assert.Equal(t, expected[i].category, info.Category)
		assert.InDelta(t, expected[i].weight, info.Weight, 1e-9)
		assert.NotEmpty(t, info.Description)
	}
}

// TestBuiltinGrading checks pass and graded failure for representative rules.
func TestBuiltinGrading(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		facts       schema.StructuralFacts
		score       float64
		occurrences int
	}{
		{name: "two levels pass", id: NestedLoops, facts: schema.StructuralFacts{MaxLoopDepth: 2}, score: 1.0},
		{name: "three levels fail", id: NestedLoops, facts: schema.StructuralFacts{MaxLoopDepth: 3}, score: 0.5, occurrences: 1},
		{name: "four levels fail harder", id: NestedLoops, facts: schema.StructuralFacts{MaxLoopDepth: 4}, score: 0.25, occurrences: 2},
		{name: "one growth", id: ContainerGrowthInLoop, facts: schema.StructuralFacts{ContainerGrowthInLoop: 1}, score: 0.5, occurrences: 1},
		{name: "globals", id: GlobalState, facts: schema.StructuralFacts{GlobalStatements: 2}, score: 0.49, occurrences: 2},
		{name: "clean source", id: IOInLoop, facts: schema.StructuralFacts{}, score: 1.0},
	}

	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := reg.Get(tt.id)
			require.True(t, ok)
			out, err := rule.Evaluate(tt.facts, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.score, out.Score, 1e-9)
			assert.Equal(t, tt.occurrences, out.Occurrences)
			assert.Equal(t, tt.score >= 1.0, out.Passed)
			if out.Passed {
				assert.Nil(t, out.Suggestion)
			} else {
				require.NotNil(t, out.Suggestion)
				assert.NotEmpty(t, out.Suggestion.Example)
			}
		})
	}
}

// TestContainerGrowthSuggestsSinglePass pins the comprehension example.
func TestContainerGrowthSuggestsSinglePass(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	rule, _ := reg.Get(ContainerGrowthInLoop)
	out, err := rule.Evaluate(schema.StructuralFacts{ContainerGrowthInLoop: 1}, nil)
	require.NoError(t, err)
	require.NotNil(t, out.Suggestion)
	assert.Contains(t, out.Suggestion.Example, "for i in range(n) for j in range(m)")
	assert.Equal(t, schema.ResourceUsage, out.Category)
}

// TestNewRegistryCustomRules covers catalog, pattern and invalid specs.
func TestNewRegistryCustomRules(t *testing.T) {
	tests := []struct {
		name    string
		specs   []schema.CustomRuleSpec
		wantErr bool
		wantLen int
	}{
		{
			name:    "catalog rules",
			specs:   []schema.CustomRuleSpec{{Name: "print_calls", Weight: weight(0.5)}, {Name: "sleep_calls"}},
			wantLen: 14,
		},
		{
			name:    "pattern rule",
			specs:   []schema.CustomRuleSpec{{Name: "no_pickle", Pattern: `pickle\.loads`, Weight: weight(2)}},
			wantLen: 13,
		},
		{name: "unknown name", specs: []schema.CustomRuleSpec{{Name: "mystery"}}, wantErr: true},
		{name: "bad pattern", specs: []schema.CustomRuleSpec{{Name: "broken", Pattern: "("}}, wantErr: true},
		{name: "negative weight", specs: []schema.CustomRuleSpec{{Name: "print_calls", Weight: weight(-1)}}, wantErr: true},
		{name: "collides with builtin", specs: []schema.CustomRuleSpec{{Name: NestedLoops, Pattern: "x"}}, wantErr: true},
		{name: "duplicate custom", specs: []schema.CustomRuleSpec{{Name: "print_calls"}, {Name: "print_calls"}}, wantErr: true},
		{name: "missing name", specs: []schema.CustomRuleSpec{{Pattern: "x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.specs)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, contract.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, reg.Len())
			for _, spec := range tt.specs {
				rule, ok := reg.Get(spec.Name)
				require.True(t, ok)
				assert.Equal(t, schema.CustomRules, rule.Info().Category)
			}
		})
	}
}

// TestCustomRuleWeightAndAdvice checks defaults and overrides from config.
func TestCustomRuleWeightAndAdvice(t *testing.T) {
	rule, err := NewCustomRule(schema.CustomRuleSpec{Name: "sleep_calls"})
	require.NoError(t, err)
	assert.InDelta(t, DefaultCustomRuleWeight, rule.Info().Weight, 1e-9)

	rule, err = NewCustomRule(schema.CustomRuleSpec{
		Name:    "no_eval",
		Pattern: `\beval\(`,
		Weight:  weight(0.25),
		Message: "Do not eval user input.",
		Example: "ast.literal_eval(text)",
	})
	require.NoError(t, err)
	out, err := rule.Evaluate(schema.StructuralFacts{}, []byte("x = eval(a)\ny = eval(b)\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Occurrences)
	assert.InDelta(t, 0.64, out.Score, 1e-9)
	require.NotNil(t, out.Suggestion)
	assert.Equal(t, "Do not eval user input.", out.Suggestion.Text)
	assert.Equal(t, "ast.literal_eval(text)", out.Suggestion.Example)
}

// TestCustomRuleZeroWeight keeps an explicit zero instead of the default.
func TestCustomRuleZeroWeight(t *testing.T) {
	rule, err := NewCustomRule(schema.CustomRuleSpec{Name: "print_calls", Weight: weight(0)})
	require.NoError(t, err)
	assert.Zero(t, rule.Info().Weight)

	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(rule))
	outcomes, warnings := EvaluateAll(reg, schema.StructuralFacts{PrintCalls: 3}, nil)
	require.Empty(t, warnings)
	require.Len(t, outcomes, 1)
	assert.Zero(t, outcomes[0].Weight)
	assert.Less(t, outcomes[0].Score, 1.0)
}

// TestLongLines checks the raw-text catalog rule.
func TestLongLines(t *testing.T) {
	rule, err := NewCustomRule(schema.CustomRuleSpec{Name: "long_lines"})
	require.NoError(t, err)

	src := "short = 1\n" + "x = " + strings.Repeat("a", MaxLineLength) + "\n"
	out, err := rule.Evaluate(schema.StructuralFacts{}, []byte(src))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Occurrences)
	assert.False(t, out.Passed)
}

// TestEvaluateAllIsolatesFailures ensures one broken rule never stops the set.
func TestEvaluateAllIsolatesFailures(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(stub("good", 0.5)))
	require.NoError(t, reg.Register(&stubRule{info: Info{ID: "errs", Category: schema.CustomRules, Weight: 1}, err: errors.New("assumption violated")}))
	require.NoError(t, reg.Register(&stubRule{info: Info{ID: "panics", Category: schema.CustomRules, Weight: 1}, panicMsg: "boom"}))
	require.NoError(t, reg.Register(stub("nan", math.NaN())))
	require.NoError(t, reg.Register(stub("too_high", 3)))

	outcomes, warnings := EvaluateAll(reg, schema.StructuralFacts{}, nil)
	require.Len(t, outcomes, 5)
	require.Len(t, warnings, 3)

	assert.Equal(t, "good", outcomes[0].RuleID)
	assert.InDelta(t, 0.5, outcomes[0].Score, 1e-9)
	assert.False(t, outcomes[0].Skipped)

	for _, out := range outcomes[1:4] {
		assert.True(t, out.Skipped, out.RuleID)
		assert.InDelta(t, 1.0, out.Score, 1e-9)
		assert.NotEmpty(t, out.Diagnostic)
	}
	assert.Contains(t, outcomes[2].Diagnostic, "boom")

	assert.InDelta(t, 1.0, outcomes[4].Score, 1e-9)
	assert.Equal(t, "too_high", outcomes[4].RuleID)

	assert.Equal(t, "errs", warnings[0].RuleID)
	assert.Equal(t, "panics", warnings[1].RuleID)
	assert.Equal(t, "nan", warnings[2].RuleID)
}

// TestRegistryRejectsDuplicates covers the Register contract.
func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(stub("a", 1)))
	assert.Error(t, reg.Register(stub("a", 1)))
	assert.Error(t, reg.Register(&stubRule{info: Info{ID: "b", Category: "bogus"}}))
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Get("missing")
	assert.False(t, ok)
}

// TestGradedScore covers the penalty curve.
func TestGradedScore(t *testing.T) {
	assert.InDelta(t, 1.0, GradedScore(0.5, 0), 1e-9)
	assert.InDelta(t, 1.0, GradedScore(0.5, -2), 1e-9)
	assert.InDelta(t, 0.125, GradedScore(0.5, 3), 1e-9)
}

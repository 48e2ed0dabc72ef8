// Package schema has configs, models and constants for all parts of ecoscore.
package schema

import "fmt"

// StructuralFacts is the read-only summary of one source unit consumed by every rule.
type StructuralFacts struct {
	Lines                 int `json:"lines" yaml:"lines"`
	Functions             int `json:"functions" yaml:"functions"`
	Loops                 int `json:"loops" yaml:"loops"`
	MaxLoopDepth          int `json:"max_loop_depth" yaml:"max_loop_depth"`
	ContainerGrowthInLoop int `json:"container_growth_in_loop" yaml:"container_growth_in_loop"`
	StringConcatInLoop    int `json:"string_concat_in_loop" yaml:"string_concat_in_loop"`
	StringLiteralConcat   int `json:"string_literal_concat" yaml:"string_literal_concat"`
	IOCallsInLoop         int `json:"io_calls_in_loop" yaml:"io_calls_in_loop"`
	RecursiveWithoutMemo  int `json:"recursive_without_memo" yaml:"recursive_without_memo"`
	RecursiveWithMemo     int `json:"recursive_with_memo" yaml:"recursive_with_memo"`
	GlobalStatements      int `json:"global_statements" yaml:"global_statements"`
	Imports               int `json:"imports" yaml:"imports"`
	WildcardImports       int `json:"wildcard_imports" yaml:"wildcard_imports"`
	OpenWithoutContext    int `json:"open_without_context" yaml:"open_without_context"`
	WithStatements        int `json:"with_statements" yaml:"with_statements"`
	MultiItemWith         int `json:"multi_item_with" yaml:"multi_item_with"`
	KeyErrorHandlers      int `json:"key_error_handlers" yaml:"key_error_handlers"`
	DictGetCalls          int `json:"dict_get_calls" yaml:"dict_get_calls"`
	ListMembershipTests   int `json:"list_membership_tests" yaml:"list_membership_tests"`
	EagerMaterializations int `json:"eager_materializations" yaml:"eager_materializations"`
	ListComprehensions    int `json:"list_comprehensions" yaml:"list_comprehensions"`
	GeneratorExpressions  int `json:"generator_expressions" yaml:"generator_expressions"`
	SetComprehensions     int `json:"set_comprehensions" yaml:"set_comprehensions"`
	DictComprehensions    int `json:"dict_comprehensions" yaml:"dict_comprehensions"`
	SetLiterals           int `json:"set_literals" yaml:"set_literals"`
	ShortCircuitOps       int `json:"short_circuit_ops" yaml:"short_circuit_ops"`
	PrintCalls            int `json:"print_calls" yaml:"print_calls"`
	SleepCalls            int `json:"sleep_calls" yaml:"sleep_calls"`
}

// SuggestionPayload is the optional advice a rule attaches to its outcome.
type SuggestionPayload struct {
	Text    string `json:"text" yaml:"text"`
	Impact  string `json:"impact" yaml:"impact"`
	Example string `json:"example" yaml:"example"`
}

// RuleOutcome is the result of one rule on one unit.
type RuleOutcome struct {
	RuleID      string             `json:"rule_id" yaml:"rule_id"`
	Category    Category           `json:"category" yaml:"category"`
	Score       float64            `json:"score" yaml:"score"`
	Passed      bool               `json:"passed" yaml:"passed"`
	Weight      float64            `json:"weight" yaml:"weight"`
	Occurrences int                `json:"occurrences" yaml:"occurrences"`
	Skipped     bool               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Diagnostic  string             `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	Suggestion  *SuggestionPayload `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// RuleEvaluationWarning records a rule that could not be evaluated.
// The rule is scored as neutral and the analysis continues.
type RuleEvaluationWarning struct {
	RuleID string `json:"rule_id" yaml:"rule_id"`
	Reason string `json:"reason" yaml:"reason"`
}

// Error implements the error interface.
func (w RuleEvaluationWarning) Error() string {
	return fmt.Sprintf("rule %s skipped: %s", w.RuleID, w.Reason)
}

// CategoryScore is the weighted mean of the outcomes in one category.
type CategoryScore struct {
	Category    Category      `json:"category" yaml:"category"`
	Score       float64       `json:"score" yaml:"score"`
	Weight      float64       `json:"weight" yaml:"weight"`
	BelowTarget bool          `json:"below_target" yaml:"below_target"`
	Outcomes    []RuleOutcome `json:"outcomes" yaml:"outcomes"`
}

// Suggestion is a ranked recommendation tied to a failing rule.
type Suggestion struct {
	RuleID            string   `json:"rule_id" yaml:"rule_id"`
	Category          Category `json:"category" yaml:"category"`
	Text              string   `json:"text" yaml:"text"`
	Impact            string   `json:"impact" yaml:"impact"`
	Severity          Severity `json:"severity" yaml:"severity"`
	Example           string   `json:"example" yaml:"example"`
	EnvironmentalNote string   `json:"environmental_note" yaml:"environmental_note"`
	Occurrences       int      `json:"occurrences" yaml:"occurrences"`
	Priority          float64  `json:"priority" yaml:"priority"`
	Score             float64  `json:"score" yaml:"score"`
}

// EnvironmentalEstimate holds the potential savings implied by an eco-score.
type EnvironmentalEstimate struct {
	EnergyKWhPerYear      float64 `json:"energy_kwh_per_year" yaml:"energy_kwh_per_year"`
	CO2KgPerYear          float64 `json:"co2_kg_per_year" yaml:"co2_kg_per_year"`
	TreesEquivalent       float64 `json:"trees_equivalent" yaml:"trees_equivalent"`
	ExcessCPUCycles       float64 `json:"excess_cpu_cycles" yaml:"excess_cpu_cycles"`
	FootprintCO2KgPerYear float64 `json:"footprint_co2_kg_per_year" yaml:"footprint_co2_kg_per_year"`
}

// AnalysisResult is the full output of the engine for one source unit.
type AnalysisResult struct {
	OverallScore float64                    `json:"overall_score" yaml:"overall_score"`
	BelowTarget  bool                       `json:"below_target" yaml:"below_target"`
	Categories   map[Category]CategoryScore `json:"categories" yaml:"categories"`
	Suggestions  []Suggestion               `json:"suggestions" yaml:"suggestions"`
	Estimate     EnvironmentalEstimate      `json:"estimate" yaml:"estimate"`
	Facts        StructuralFacts            `json:"facts" yaml:"facts"`
	Warnings     []RuleEvaluationWarning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// CategoryScoreOf returns the score of a category, or the neutral score when absent.
func (r *AnalysisResult) CategoryScoreOf(c Category) float64 {
	if cs, ok := r.Categories[c]; ok {
		return cs.Score
	}
	return 1.0
}

// UnitResult is the status and optional result of one unit in a batch run.
type UnitResult struct {
	Path   string          `json:"path" yaml:"path"`
	Status UnitStatus      `json:"status" yaml:"status"`
	Reason string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Result *AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// ProjectResult aggregates the unit results of a directory run.
type ProjectResult struct {
	Root             string                `json:"root" yaml:"root"`
	ProjectScore     float64               `json:"project_score" yaml:"project_score"`
	BelowTarget      bool                  `json:"below_target" yaml:"below_target"`
	CategoryAverages map[Category]float64  `json:"category_averages" yaml:"category_averages"`
	Suggestions      []Suggestion          `json:"suggestions" yaml:"suggestions"`
	Estimate         EnvironmentalEstimate `json:"estimate" yaml:"estimate"`
	Units            []UnitResult          `json:"units" yaml:"units"`
	Analyzed         int                   `json:"analyzed" yaml:"analyzed"`
	Failed           int                   `json:"failed" yaml:"failed"`
}

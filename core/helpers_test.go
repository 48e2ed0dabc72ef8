package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/core/facts"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// fakeAnalyzer scores sources of the form "score=0.7" or "score=0.7 resource=0.2".
// "broken" yields a parse error, "explode" a plain failure and "warn" a
// perfect result with one skipped rule.
type fakeAnalyzer struct {
	calls atomic.Int32
}

func (f *fakeAnalyzer) Analyze(_ context.Context, src []byte) (*schema.AnalysisResult, error) {
	f.calls.Add(1)
	text := strings.TrimSpace(string(src))
	switch text {
	case "broken":
		return nil, &facts.ParseError{Line: 1, Column: 1, Message: "invalid syntax"}
	case "explode":
		return nil, errors.New("engine unavailable")
	case "warn":
		r := fakeResult(1, 1)
		r.Warnings = []schema.RuleEvaluationWarning{{RuleID: "always_panics", Reason: "panic: boom"}}
		return r, nil
	}

	overall := 1.0
	resource := 1.0
	for field := range strings.FieldsSeq(text) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		switch key {
		case "score":
			overall = v
		case "resource":
			resource = v
		}
	}
	return fakeResult(overall, resource), nil
}

// fakeResult builds a result whose resource_usage category scores resource
// and whose other categories are perfect.
func fakeResult(overall, resource float64) *schema.AnalysisResult {
	th := schema.DefaultSettings().Thresholds
	cats := make(map[schema.Category]schema.CategoryScore, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		cs := schema.CategoryScore{Category: c, Score: 1, Weight: 0.25}
		if c == schema.ResourceUsage {
			cs.Score = resource
		}
		cs.BelowTarget = cs.Score < th.CategoryScore
		cats[c] = cs
	}
	var suggestions []schema.Suggestion
	if resource < 1 {
		suggestions = []schema.Suggestion{{
			RuleID:      "container_growth_in_loop",
			Category:    schema.ResourceUsage,
			Text:        "Build the list in a single pass",
			Severity:    schema.SeverityHigh,
			Occurrences: 1,
			Priority:    0.25,
			Score:       resource,
		}}
	}
	return &schema.AnalysisResult{
		OverallScore: overall,
		BelowTarget:  overall < th.EcoScore,
		Categories:   cats,
		Suggestions:  suggestions,
	}
}

// writeTree creates files under a temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

// testConfig returns a config analyzing target with JSON output to a temp file.
func testConfig(t *testing.T, target string) *contract.Config {
	t.Helper()
	return &contract.Config{
		Settings:            schema.DefaultSettings(),
		TargetPath:          target,
		Workers:             4,
		Excludes:            append([]string{}, contract.DefaultExcludes...),
		Precision:           2,
		Output:              schema.JSONOut,
		OutputFile:          filepath.Join(t.TempDir(), "out.json"),
		Commits:             contract.DefaultCommits,
		Ref:                 "HEAD",
		RegressionTolerance: contract.DefaultRegressionTolerance,
		Debounce:            contract.DefaultDebounce,
	}
}

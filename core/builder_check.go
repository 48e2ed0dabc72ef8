package core

import (
	"context"
	"fmt"

	"github.com/huangsam/ecoscore/core/trend"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	cfg        *contract.Config
	mgr        contract.CacheManager
	ctx        context.Context
	analyzer   trend.Analyzer
	project    *schema.ProjectResult
	violations []schema.CheckViolation
	result     *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) *CheckResultBuilder {
	return &CheckResultBuilder{
		cfg: cfg,
		mgr: mgr,
		ctx: ctx,
	}
}

// ValidatePrerequisites validates the target and builds the engine.
func (b *CheckResultBuilder) ValidatePrerequisites() (*CheckResultBuilder, error) {
	if _, err := contract.StatTarget(b.cfg.TargetPath); err != nil {
		return nil, fmt.Errorf("check target %s is not accessible: %w", b.cfg.TargetPath, err)
	}
	if b.analyzer == nil {
		eng, err := newEngine(b.cfg)
		if err != nil {
			return nil, err
		}
		b.analyzer = newCachedAnalyzer(eng, b.mgr)
	}
	return b, nil
}

// RunAnalysis analyzes every unit under the target.
func (b *CheckResultBuilder) RunAnalysis() (*CheckResultBuilder, error) {
	project, err := runProjectAnalysis(b.ctx, b.cfg, b.analyzer, b.mgr)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", b.cfg.TargetPath, err)
	}
	b.project = project
	return b, nil
}

// ComputeMetrics compares every analyzed unit against the targets.
// Categories with zero weight do not gate the check.
func (b *CheckResultBuilder) ComputeMetrics() *CheckResultBuilder {
	th := b.cfg.Thresholds
	b.violations = []schema.CheckViolation{}

	for _, u := range b.project.Units {
		if u.Result == nil {
			continue
		}
		if u.Result.OverallScore < th.EcoScore {
			b.violations = append(b.violations, schema.CheckViolation{
				Path:      u.Path,
				Score:     u.Result.OverallScore,
				Threshold: th.EcoScore,
			})
		}
		for _, c := range schema.AllCategories {
			cs, ok := u.Result.Categories[c]
			if !ok || cs.Weight == 0 || !cs.BelowTarget {
				continue
			}
			b.violations = append(b.violations, schema.CheckViolation{
				Path:      u.Path,
				Category:  c,
				Score:     cs.Score,
				Threshold: th.CategoryScore,
			})
		}
	}
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	b.result = &schema.CheckResult{
		Passed:       len(b.violations) == 0,
		ProjectScore: b.project.ProjectScore,
		Thresholds:   b.cfg.Thresholds,
		TotalUnits:   len(b.project.Units),
		FailedUnits:  b.project.Failed,
		Violations:   b.violations,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}

// GetProject returns the project analysis behind the check.
func (b *CheckResultBuilder) GetProject() *schema.ProjectResult {
	return b.project
}

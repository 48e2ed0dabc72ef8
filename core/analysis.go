package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/huangsam/ecoscore/core/facts"
	"github.com/huangsam/ecoscore/core/impact"
	"github.com/huangsam/ecoscore/core/score"
	"github.com/huangsam/ecoscore/core/suggest"
	"github.com/huangsam/ecoscore/core/trend"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// sourceUnit is one file queued for analysis.
type sourceUnit struct {
	path string // Slash-separated, relative to the target
	abs  string
}

// collectUnits lists the Python files under target in lexical order.
// A file target is analyzed as-is regardless of its extension.
func collectUnits(target string, excludes []string) ([]sourceUnit, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", target, err)
	}
	if !info.IsDir() {
		return []sourceUnit{{path: filepath.Base(target), abs: target}}, nil
	}

	var units []sourceUnit
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(target, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if contract.ShouldIgnore(rel+"/", excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".py" || !d.Type().IsRegular() {
			return nil
		}
		if contract.ShouldIgnore(rel, excludes) {
			return nil
		}
		units = append(units, sourceUnit{path: rel, abs: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", target, err)
	}
	return units, nil
}

// analyzeUnits processes all units in parallel using a worker pool.
// Results keep the order of units.
func analyzeUnits(ctx context.Context, analyzer trend.Analyzer, units []sourceUnit, workers int) []schema.UnitResult {
	indexCh := make(chan int, len(units))
	results := make([]schema.UnitResult, len(units))
	var wg sync.WaitGroup

	for range max(workers, 1) {
		wg.Go(func() {
			for i := range indexCh {
				results[i] = analyzeUnit(ctx, analyzer, units[i])
			}
		})
	}

	for i := range units {
		indexCh <- i
	}
	close(indexCh)

	wg.Wait()
	return results
}

// analyzeUnit reads and scores one unit. Failures are recorded on the
// result and never abort the batch.
func analyzeUnit(ctx context.Context, analyzer trend.Analyzer, u sourceUnit) schema.UnitResult {
	result := schema.UnitResult{Path: u.path}
	if err := ctx.Err(); err != nil {
		result.Status = schema.StatusFailed
		result.Reason = err.Error()
		return result
	}

	src, err := os.ReadFile(u.abs)
	if err != nil {
		result.Status = schema.StatusReadError
		result.Reason = err.Error()
		return result
	}

	res, err := analyzer.Analyze(ctx, src)
	if err != nil {
		var pe *facts.ParseError
		if errors.As(err, &pe) {
			result.Status = schema.StatusParseError
		} else {
			result.Status = schema.StatusFailed
		}
		result.Reason = err.Error()
		return result
	}

	for _, warning := range res.Warnings {
		contract.LogWarn(fmt.Sprintf("Rule skipped for %s", u.path), warning)
	}
	result.Status = schema.StatusOK
	result.Result = res
	return result
}

// buildProjectResult summarizes the unit results of one run.
func buildProjectResult(root string, units []schema.UnitResult, settings schema.Settings) (*schema.ProjectResult, error) {
	projectScore, averages := score.Project(units)

	lists := make([][]schema.Suggestion, 0, len(units))
	analyzed := 0
	for _, u := range units {
		if u.Result == nil {
			continue
		}
		analyzed++
		lists = append(lists, u.Result.Suggestions)
	}

	estimate, err := impact.Estimate(projectScore, settings.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("estimate project impact: %w", err)
	}

	if units == nil {
		units = []schema.UnitResult{}
	}
	return &schema.ProjectResult{
		Root:             root,
		ProjectScore:     projectScore,
		BelowTarget:      projectScore < settings.Thresholds.EcoScore,
		CategoryAverages: averages,
		Suggestions:      suggest.Merge(lists...),
		Estimate:         estimate,
		Units:            units,
		Analyzed:         analyzed,
		Failed:           len(units) - analyzed,
	}, nil
}

// runProjectAnalysis analyzes every unit under cfg.TargetPath and records the
// run when a history store is configured.
func runProjectAnalysis(ctx context.Context, cfg *contract.Config, analyzer trend.Analyzer, mgr contract.CacheManager) (*schema.ProjectResult, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		contract.LogAnalysisHeader(cfg)
	}

	units, err := collectUnits(cfg.TargetPath, cfg.Excludes)
	if err != nil {
		return nil, err
	}

	results := analyzeUnits(ctx, analyzer, units, cfg.Workers)
	project, err := buildProjectResult(cfg.TargetPath, results, cfg.Settings)
	if err != nil {
		return nil, err
	}

	recordRun(cfg, mgr, start, project)
	return project, nil
}

// recordRun stores the run in the history store. Tracking failures are
// logged and never fail the analysis.
func recordRun(cfg *contract.Config, mgr contract.CacheManager, start time.Time, project *schema.ProjectResult) {
	if mgr == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}

	runID, err := history.BeginRun(start, cfg.ConfigParams())
	if err != nil {
		logTrackingError("BeginRun", cfg.TargetPath, err)
		return
	}

	now := time.Now()
	for _, u := range project.Units {
		if err := history.RecordUnit(runID, schema.NewUnitScoreRecord(runID, u, now)); err != nil {
			logTrackingError("RecordUnit", u.Path, err)
		}
	}

	if err := history.EndRun(runID, time.Now(), len(project.Units), project.ProjectScore); err != nil {
		logTrackingError("EndRun", cfg.TargetPath, err)
	}
}

// logTrackingError logs history tracking errors to stderr without disrupting analysis.
func logTrackingError(operation, path string, err error) {
	contract.LogWarn(fmt.Sprintf("History tracking failed for %s on %s", operation, path), err)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/ecoscore/core/score"
	"github.com/huangsam/ecoscore/core/trend"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// shortRev is the revision prefix used in reasons.
func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// listRevisions returns up to n commits touching relPath, oldest first.
func listRevisions(ctx context.Context, client contract.GitClient, repoRoot, relPath, ref string, n int) ([]contract.RevisionRef, error) {
	refs, err := client.GetRevisionsForPath(ctx, repoRoot, relPath, ref, n)
	if err != nil {
		return nil, fmt.Errorf("listing revisions of %s: %w", relPath, err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no commits touch %s on %s", relPath, ref)
	}
	slices.Reverse(refs)
	return refs, nil
}

// loadRevisions turns the commits touching relPath into oldest-first revisions.
// A commit that deleted the file becomes a missing revision.
func loadRevisions(ctx context.Context, client contract.GitClient, repoRoot, relPath, ref string, n int) ([]trend.Revision, error) {
	refs, err := listRevisions(ctx, client, repoRoot, relPath, ref, n)
	if err != nil {
		return nil, err
	}

	revisions := make([]trend.Revision, 0, len(refs))
	for _, r := range refs {
		rev := trend.Revision{ID: r.Hash, Timestamp: r.Time}
		src, err := client.ShowFileAtRevision(ctx, repoRoot, r.Hash, relPath)
		switch {
		case errors.Is(err, contract.ErrPathNotAtRevision):
			rev.Missing = true
			rev.Reason = fmt.Sprintf("%s not present at %s", relPath, shortRev(r.Hash))
		case err != nil:
			rev.Missing = true
			rev.Reason = err.Error()
		default:
			rev.Source = src
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

// loadSnapshots turns the commits touching relDir into oldest-first snapshots
// of the Python files under it. Unit paths are relative to relDir.
func loadSnapshots(ctx context.Context, client contract.GitClient, repoRoot, relDir, ref string, n int, excludes []string) ([]trend.Snapshot, error) {
	refs, err := listRevisions(ctx, client, repoRoot, relDir, ref, n)
	if err != nil {
		return nil, err
	}

	snapshots := make([]trend.Snapshot, 0, len(refs))
	for _, r := range refs {
		snap := trend.Snapshot{ID: r.Hash, Timestamp: r.Time}
		files, err := client.ListFilesAtRevision(ctx, repoRoot, r.Hash, relDir)
		if err != nil {
			snap.Missing = true
			snap.Reason = err.Error()
			snapshots = append(snapshots, snap)
			continue
		}

		for _, file := range files {
			rel, ok := unitPathUnder(relDir, file)
			if !ok || !strings.HasSuffix(rel, ".py") || contract.ShouldIgnore(rel, excludes) {
				continue
			}
			unit := trend.Revision{ID: rel, Timestamp: r.Time}
			src, err := client.ShowFileAtRevision(ctx, repoRoot, r.Hash, file)
			if err != nil {
				unit.Missing = true
				unit.Reason = err.Error()
			} else {
				unit.Source = src
			}
			snap.Units = append(snap.Units, unit)
		}
		if len(snap.Units) == 0 {
			snap.Missing = true
			snap.Reason = fmt.Sprintf("no Python files under %s at %s", relDir, shortRev(r.Hash))
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// unitPathUnder strips the directory prefix from a repo-relative file path.
func unitPathUnder(relDir, file string) (string, bool) {
	if relDir == "." || relDir == "" {
		return file, true
	}
	return strings.CutPrefix(file, relDir+"/")
}

// projectReducer scores a directory revision the way analyze scores a project.
// A revision where no unit could be analyzed has no score.
func projectReducer(root string, settings schema.Settings) trend.Reducer {
	return func(units []schema.UnitResult) (*schema.AnalysisResult, error) {
		project, err := buildProjectResult(root, units, settings)
		if err != nil {
			return nil, err
		}
		if project.Analyzed == 0 {
			return nil, fmt.Errorf("none of %d units could be analyzed", len(units))
		}
		return projectAsResult(project, settings)
	}
}

// projectAsResult presents a project summary as a single analysis result,
// with the category averages standing in for category scores.
func projectAsResult(project *schema.ProjectResult, settings schema.Settings) (*schema.AnalysisResult, error) {
	weights, err := score.NormalizeWeights(settings.Weights)
	if err != nil {
		return nil, err
	}
	categories := make(map[schema.Category]schema.CategoryScore, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		avg := project.CategoryAverages[c]
		categories[c] = schema.CategoryScore{
			Category:    c,
			Score:       avg,
			Weight:      weights.Get(c),
			Outcomes:    []schema.RuleOutcome{},
			BelowTarget: avg < settings.Thresholds.CategoryScore,
		}
	}
	return &schema.AnalysisResult{
		OverallScore: project.ProjectScore,
		BelowTarget:  project.BelowTarget,
		Categories:   categories,
		Suggestions:  project.Suggestions,
		Estimate:     project.Estimate,
	}, nil
}

// runHistory replays the last cfg.Commits revisions of cfg.TargetPath.
// A directory is scored as a project at every revision.
func runHistory(ctx context.Context, cfg *contract.Config, client contract.GitClient, analyzer trend.Analyzer) (*schema.TrendSeries, error) {
	isDir, err := contract.StatTarget(cfg.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %s", cfg.TargetPath)
	}

	contextDir := cfg.TargetPath
	if !isDir {
		contextDir = filepath.Dir(cfg.TargetPath)
	}
	repoRoot, err := client.GetRepoRoot(ctx, contextDir)
	if err != nil {
		return nil, err
	}
	target := cfg.TargetPath
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved // git reports the resolved root
	}
	relPath, err := contract.NormalizeRepoPath(repoRoot, target)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if !shouldSuppressHeader(ctx) {
		contract.LogHistoryHeader(cfg, relPath)
	}

	var series schema.TrendSeries
	if isDir {
		snapshots, err := loadSnapshots(ctx, client, repoRoot, relPath, cfg.Ref, cfg.Commits, cfg.Excludes)
		if err != nil {
			return nil, err
		}
		series = trend.AnalyzeSnapshots(ctx, analyzer, snapshots, cfg.Workers, projectReducer(relPath, cfg.Settings))
	} else {
		revisions, err := loadRevisions(ctx, client, repoRoot, relPath, cfg.Ref, cfg.Commits)
		if err != nil {
			return nil, err
		}
		series = trend.Analyze(ctx, analyzer, revisions, cfg.Workers)
	}
	series.Path = relPath
	series.Regressions = trend.DetectRegressions(series.Points, cfg.RegressionTolerance)
	return &series, nil
}

// GetTrendSeries analyzes the git history of a file or directory.
func GetTrendSeries(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.TrendSeries, time.Duration, error) {
	start := time.Now()
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, 0, err
	}
	series, err := runHistory(ctx, cfg, contract.NewLocalGitClient(), newCachedAnalyzer(eng, mgr))
	if err != nil {
		return nil, 0, err
	}
	return series, time.Since(start), nil
}

// ExecuteHistory prints the eco-score trend of a file or directory across its recent commits.
// It serves as the main entry point for the 'history' command.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	series, duration, err := GetTrendSeries(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return writer.WriteTrend(*series, cfg, duration)
}

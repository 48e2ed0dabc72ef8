// Package trend runs the analysis pipeline across ordered historical revisions.
package trend

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huangsam/ecoscore/core/facts"
	"github.com/huangsam/ecoscore/schema"
)

// Revision is one historical version of a source unit, supplied oldest first.
// Missing marks a revision at which the unit did not exist.
type Revision struct {
	ID        string
	Timestamp time.Time
	Source    []byte
	Missing   bool
	Reason    string
}

// Analyzer runs the single-unit pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, src []byte) (*schema.AnalysisResult, error)
}

// Analyze evaluates every revision with at most workers in flight and returns
// the points in input order. Failed revisions become points with a nil result
// and a reason; they never stop later revisions.
func Analyze(ctx context.Context, analyzer Analyzer, revisions []Revision, workers int) schema.TrendSeries {
	points := make([]schema.TrendPoint, len(revisions))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, rev := range revisions {
		g.Go(func() error {
			points[i] = analyzeRevision(ctx, analyzer, rev)
			return nil
		})
	}
	_ = g.Wait()

	return schema.TrendSeries{Points: points}
}

func analyzeRevision(ctx context.Context, analyzer Analyzer, rev Revision) schema.TrendPoint {
	point := schema.TrendPoint{Revision: rev.ID, Timestamp: rev.Timestamp}
	if rev.Missing {
		point.Status = schema.StatusMissing
		point.Reason = rev.Reason
		if point.Reason == "" {
			point.Reason = "source not present at revision"
		}
		return point
	}

	result, err := analyzer.Analyze(ctx, rev.Source)
	if err != nil {
		var pe *facts.ParseError
		if errors.As(err, &pe) {
			point.Status = schema.StatusParseError
		} else {
			point.Status = schema.StatusFailed
		}
		point.Reason = err.Error()
		return point
	}

	point.Status = schema.StatusOK
	point.Result = result
	return point
}

// Snapshot is a whole directory at one revision: one Revision per file,
// with ID set to the file path. Missing marks a revision at which the
// directory held no source units.
type Snapshot struct {
	ID        string
	Timestamp time.Time
	Units     []Revision
	Missing   bool
	Reason    string
}

// Reducer folds the unit results of one snapshot into a single result.
type Reducer func(units []schema.UnitResult) (*schema.AnalysisResult, error)

// AnalyzeSnapshots scores every unit of every snapshot and reduces each
// snapshot to one point, in input order. A unit that fails becomes a failed
// unit of its point; only a missing snapshot or a failed reduction leaves a gap.
func AnalyzeSnapshots(ctx context.Context, analyzer Analyzer, snapshots []Snapshot, workers int, reduce Reducer) schema.TrendSeries {
	points := make([]schema.TrendPoint, len(snapshots))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, snap := range snapshots {
		g.Go(func() error {
			points[i] = analyzeSnapshot(ctx, analyzer, snap, reduce)
			return nil
		})
	}
	_ = g.Wait()

	return schema.TrendSeries{Points: points}
}

func analyzeSnapshot(ctx context.Context, analyzer Analyzer, snap Snapshot, reduce Reducer) schema.TrendPoint {
	point := schema.TrendPoint{Revision: snap.ID, Timestamp: snap.Timestamp}
	if snap.Missing {
		point.Status = schema.StatusMissing
		point.Reason = snap.Reason
		if point.Reason == "" {
			point.Reason = "no source units at revision"
		}
		return point
	}

	units := make([]schema.UnitResult, len(snap.Units))
	for i, unit := range snap.Units {
		p := analyzeRevision(ctx, analyzer, unit)
		units[i] = schema.UnitResult{Path: unit.ID, Status: p.Status, Reason: p.Reason, Result: p.Result}
	}
	point.Units = units

	result, err := reduce(units)
	if err != nil {
		point.Status = schema.StatusFailed
		point.Reason = err.Error()
		return point
	}
	point.Status = schema.StatusOK
	point.Result = result
	return point
}

// DetectRegressions lists consecutive populated points whose overall score
// dropped by more than tolerance. Gaps are skipped, not interpolated.
func DetectRegressions(points []schema.TrendPoint, tolerance float64) []schema.Regression {
	var out []schema.Regression
	var prev *schema.TrendPoint
	for i := range points {
		cur := &points[i]
		if cur.Result == nil {
			continue
		}
		if prev != nil {
			delta := cur.Result.OverallScore - prev.Result.OverallScore
			if -delta > tolerance {
				out = append(out, schema.Regression{From: prev.Revision, To: cur.Revision, Delta: delta})
			}
		}
		prev = cur
	}
	return out
}

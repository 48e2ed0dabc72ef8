package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/ecoscore/internal/contract"
)

// exit terminates the process; tests replace it.
var exit = os.Exit

// ExecuteCheck runs the check command for CI/CD gating.
// It analyzes the target, compares each unit and category against the targets,
// and exits with a non-zero code if any of them falls below.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	builder := NewCheckResultBuilder(ctx, cfg, mgr)

	// Validate prerequisites
	if _, err := builder.ValidatePrerequisites(); err != nil {
		return err
	}

	// Run analysis
	if _, err := builder.RunAnalysis(); err != nil {
		return err
	}

	// Compute metrics and build result
	builder.ComputeMetrics().BuildResult()

	result := builder.GetResult()
	if err := writer.WriteCheck(*result, cfg, time.Since(start)); err != nil {
		return err
	}
	if err := writer.WriteMetrics(cfg.MetricsFile, *builder.GetProject(), result); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}

	if !result.Passed {
		exit(1)
	}
	return nil
}

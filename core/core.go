// Package core orchestrates analysis runs over files, directories and git history.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/ecoscore/core/engine"
	"github.com/huangsam/ecoscore/core/rules"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/internal/outwriter"
	"github.com/huangsam/ecoscore/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// writer renders every command's results.
var writer = outwriter.NewOutWriter()

// newEngine builds the engine for cfg; settings problems surface as configuration errors.
func newEngine(cfg *contract.Config) (*engine.Engine, error) {
	eng, err := engine.New(cfg.Settings)
	if err != nil {
		if contract.IsConfigurationError(err) {
			return nil, err
		}
		return nil, &contract.ConfigurationError{Key: "settings", Reason: "rejected by engine", Err: err}
	}
	return eng, nil
}

// GetProjectResult analyzes cfg.TargetPath and returns the project summary.
func GetProjectResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.ProjectResult, time.Duration, error) {
	start := time.Now()
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, 0, err
	}
	result, err := runProjectAnalysis(ctx, cfg, newCachedAnalyzer(eng, mgr), mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// AnalyzeSource scores a single in-memory unit.
func AnalyzeSource(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, src []byte) (*schema.AnalysisResult, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	return newCachedAnalyzer(eng, mgr).Analyze(ctx, src)
}

// GetRules returns the rules active under cfg in evaluation order.
func GetRules(cfg *contract.Config) ([]rules.Info, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	return eng.Rules(), nil
}

// ExecuteAnalyze runs the analysis of a file or directory and prints the results.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetProjectResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := writer.WriteProject(*result, cfg, duration); err != nil {
		return err
	}
	if err := writer.WriteMetrics(cfg.MetricsFile, *result, nil); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

// ExecuteRules displays the active rule registry.
// This is a static display that does not read any source.
func ExecuteRules(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	infos, err := GetRules(cfg)
	if err != nil {
		return err
	}
	return writer.WriteRules(infos, cfg)
}

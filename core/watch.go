package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/ecoscore/core/trend"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/internal/watcher"
)

// ExecuteWatch analyzes the target, then re-analyzes it whenever a Python file
// under it (or the target file itself) changes, until ctx is cancelled.
// Unchanged files are served from the result cache on every rerun.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	isDir, err := contract.StatTarget(cfg.TargetPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", cfg.TargetPath)
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	analyzer := newCachedAnalyzer(eng, mgr)

	var w *watcher.Watcher
	if isDir {
		w, err = watcher.New(cfg.TargetPath, cfg.Debounce, cfg.Excludes)
	} else {
		w, err = watcher.NewForFile(cfg.TargetPath, cfg.Debounce)
	}
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := analyzeAndPrint(ctx, cfg, analyzer, mgr); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "👀 Watching %s for changes (Ctrl+C to stop)\n", cfg.TargetPath)

	quiet := WithSuppressHeader(ctx)
	return w.Run(ctx, func(paths []string) {
		_, _ = fmt.Fprintf(os.Stderr, "🔁 %d file(s) changed, re-analyzing\n", len(paths))
		if err := analyzeAndPrint(quiet, cfg, analyzer, mgr); err != nil {
			contract.LogWarn("Re-analysis failed", err)
		}
	})
}

// analyzeAndPrint runs one project analysis and prints it.
func analyzeAndPrint(ctx context.Context, cfg *contract.Config, analyzer trend.Analyzer, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := runProjectAnalysis(ctx, cfg, analyzer, mgr)
	if err != nil {
		return err
	}
	return writer.WriteProject(*result, cfg, time.Since(start))
}

package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// headerOut is where run headers go; stdout stays reserved for reports.
var headerOut io.Writer = os.Stderr

// targetName returns a short display name for the analysis target.
func targetName(cfg *Config) string {
	name := filepath.Base(cfg.TargetPath)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "current"
	}
	return name
}

// LogAnalysisHeader prints a concise, 2-line header for an analysis run.
func LogAnalysisHeader(cfg *Config) {
	_, _ = fmt.Fprintf(headerOut, "🔎 Target: %s (workers: %d)\n", targetName(cfg), cfg.Workers)
	w := cfg.Weights
	_, _ = fmt.Fprintf(headerOut, "⚖️  Weights: energy=%.2f, resource=%.2f, optimizations=%.2f, custom=%.2f\n",
		w.EnergyEfficiency, w.ResourceUsage, w.CodeOptimizations, w.CustomRules)
}

// LogHistoryHeader prints a header for a trend run over git history.
func LogHistoryHeader(cfg *Config, relPath string) {
	_, _ = fmt.Fprintf(headerOut, "🔎 Path: %s\n", relPath)
	_, _ = fmt.Fprintf(headerOut, "📜 Revisions: last %d on %s\n", cfg.Commits, cfg.Ref)
}

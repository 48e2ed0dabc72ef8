// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/ecoscore/core/rules"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteProject prints a project analysis using the configured output format.
func (ow *OutWriter) WriteProject(result schema.ProjectResult, cfg *contract.Config, duration time.Duration) error {
	return PrintProjectResult(result, cfg, duration)
}

// WriteTrend prints a trend series using the configured output format.
func (ow *OutWriter) WriteTrend(series schema.TrendSeries, cfg *contract.Config, duration time.Duration) error {
	return PrintTrendSeries(series, cfg, duration)
}

// WriteCheck prints a check result using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return PrintCheckResult(result, cfg, duration)
}

// WriteRules prints the active rule registry using the configured output format.
func (ow *OutWriter) WriteRules(infos []rules.Info, cfg *contract.Config) error {
	return PrintRules(infos, cfg)
}

// WriteMetrics writes the Prometheus textfile for a run. An empty path is a no-op.
func (ow *OutWriter) WriteMetrics(path string, result schema.ProjectResult, check *schema.CheckResult) error {
	return WriteMetricsFile(path, result, check)
}

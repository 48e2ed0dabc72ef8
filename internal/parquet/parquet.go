// Package parquet exports ecoscore run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/ecoscore/schema"
)

// Run is one ecoscore analyze or check run.
// This struct maps to the ecoscore_runs table.
type Run struct {
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is stable across backends, unlike RunID
	RunUUID string `parquet:"run_uuid,snappy"`

	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalUnits    int32      `parquet:"total_units,snappy"`

	// ProjectScore is the mean eco-score of successful units (nullable for unfinished runs)
	ProjectScore *float64 `parquet:"project_score,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// UnitScore holds the scores of one unit in one run.
// This struct maps to the ecoscore_unit_scores table.
type UnitScore struct {
	RunID             int64     `parquet:"run_id,snappy"`
	Path              string    `parquet:"path,snappy"`
	AnalysisTime      time.Time `parquet:"analysis_time,snappy"`
	Status            string    `parquet:"status,snappy"`
	OverallScore      float64   `parquet:"overall_score,snappy"`
	EnergyEfficiency  float64   `parquet:"energy_efficiency,snappy"`
	ResourceUsage     float64   `parquet:"resource_usage,snappy"`
	CodeOptimizations float64   `parquet:"code_optimizations,snappy"`
	CustomRules       float64   `parquet:"custom_rules,snappy"`
	Suggestions       int32     `parquet:"suggestions,snappy"`
	EnergyKWhPerYear  float64   `parquet:"energy_kwh_per_year,snappy"`
	CO2KgPerYear      float64   `parquet:"co2_kg_per_year,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteUnitScoresParquet writes unit scores to a Parquet file.
func WriteUnitScoresParquet(data []UnitScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalUnits:    record.TotalUnits,
			ProjectScore:  record.ProjectScore,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertUnitScoreRecords converts schema.UnitScoreRecord to UnitScore for Parquet export.
func ConvertUnitScoreRecords(records []schema.UnitScoreRecord) []UnitScore {
	result := make([]UnitScore, len(records))
	for i, r := range records {
		result[i] = UnitScore{
			RunID:             r.RunID,
			Path:              r.Path,
			AnalysisTime:      r.AnalysisTime,
			Status:            r.Status,
			OverallScore:      r.OverallScore,
			EnergyEfficiency:  r.EnergyEfficiency,
			ResourceUsage:     r.ResourceUsage,
			CodeOptimizations: r.CodeOptimizations,
			CustomRules:       r.CustomRules,
			Suggestions:       r.Suggestions,
			EnergyKWhPerYear:  r.EnergyKWhPerYear,
			CO2KgPerYear:      r.CO2KgPerYear,
		}
	}
	return result
}

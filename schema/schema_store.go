package schema

import "time"

// RunRecord represents a row from the ecoscore_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalUnits    int32
	ProjectScore  *float64
	ConfigParams  *string
}

// UnitScoreRecord represents a row from the ecoscore_unit_scores table.
type UnitScoreRecord struct {
	RunID             int64
	Path              string
	AnalysisTime      time.Time
	Status            string
	OverallScore      float64
	EnergyEfficiency  float64
	ResourceUsage     float64
	CodeOptimizations float64
	CustomRules       float64
	Suggestions       int32
	EnergyKWhPerYear  float64
	CO2KgPerYear      float64
}

// NewUnitScoreRecord flattens a unit result into a storable record.
func NewUnitScoreRecord(runID int64, u UnitResult, at time.Time) UnitScoreRecord {
	rec := UnitScoreRecord{
		RunID:        runID,
		Path:         u.Path,
		AnalysisTime: at,
		Status:       string(u.Status),
	}
	if u.Result == nil {
		return rec
	}
	r := u.Result
	rec.OverallScore = r.OverallScore
	rec.EnergyEfficiency = r.CategoryScoreOf(EnergyEfficiency)
	rec.ResourceUsage = r.CategoryScoreOf(ResourceUsage)
	rec.CodeOptimizations = r.CategoryScoreOf(CodeOptimizations)
	rec.CustomRules = r.CategoryScoreOf(CustomRules)
	rec.Suggestions = int32(len(r.Suggestions))
	rec.EnergyKWhPerYear = r.Estimate.EnergyKWhPerYear
	rec.CO2KgPerYear = r.Estimate.CO2KgPerYear
	return rec
}

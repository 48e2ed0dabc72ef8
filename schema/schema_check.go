package schema

// CheckViolation is one unit or category that fell below its target.
type CheckViolation struct {
	Path      string   `json:"path" yaml:"path"`
	Category  Category `json:"category,omitempty" yaml:"category,omitempty"`
	Score     float64  `json:"score" yaml:"score"`
	Threshold float64  `json:"threshold" yaml:"threshold"`
}

// CheckResult is the outcome of a CI check run.
type CheckResult struct {
	Passed       bool             `json:"passed" yaml:"passed"`
	ProjectScore float64          `json:"project_score" yaml:"project_score"`
	Thresholds   Thresholds       `json:"thresholds" yaml:"thresholds"`
	TotalUnits   int              `json:"total_units" yaml:"total_units"`
	FailedUnits  int              `json:"failed_units" yaml:"failed_units"`
	Violations   []CheckViolation `json:"violations" yaml:"violations"`
}

package schema

import "time"

// TrendPoint is one revision of a trend run.
// Result is nil when the revision could not be analyzed; Reason says why.
// Units holds the per-file results of a directory trend.
type TrendPoint struct {
	Revision  string          `json:"revision" yaml:"revision"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Status    UnitStatus      `json:"status" yaml:"status"`
	Reason    string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Result    *AnalysisResult `json:"result" yaml:"result"`
	Units     []UnitResult    `json:"units,omitempty" yaml:"units,omitempty"`
}

// Regression is a drop in score between two consecutive populated points.
type Regression struct {
	From  string  `json:"from" yaml:"from"`
	To    string  `json:"to" yaml:"to"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// TrendSeries is the ordered output of a trend run, oldest revision first.
type TrendSeries struct {
	Path        string       `json:"path" yaml:"path"`
	Points      []TrendPoint `json:"points" yaml:"points"`
	Regressions []Regression `json:"regressions,omitempty" yaml:"regressions,omitempty"`
}

// Populated returns the number of points with a result.
func (s TrendSeries) Populated() int {
	n := 0
	for _, p := range s.Points {
		if p.Result != nil {
			n++
		}
	}
	return n
}

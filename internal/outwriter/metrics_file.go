package outwriter

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/huangsam/ecoscore/schema"
)

const metricsNamespace = "ecoscore"

// newProjectRegistry builds a registry holding the gauges of one project run.
func newProjectRegistry(result schema.ProjectResult, check *schema.CheckResult) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	projectScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "project_score",
		Help:      "Project eco-score in [0,1]",
	})
	categoryScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "category_score",
		Help:      "Mean category score across analyzed units",
	}, []string{"category"})
	unitScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "unit_score",
		Help:      "Eco-score of one analyzed unit",
	}, []string{"path"})
	unitsTotal := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "units",
		Help:      "Number of units by analysis status",
	}, []string{"status"})
	suggestionsTotal := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "suggestions",
		Help:      "Number of merged suggestions by severity",
	}, []string{"severity"})
	energySavings := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "potential_energy_kwh_per_year",
		Help:      "Estimated yearly energy savings in kWh",
	})
	co2Savings := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "potential_co2_kg_per_year",
		Help:      "Estimated yearly CO2 reduction in kg",
	})
	reg.MustRegister(projectScore, categoryScore, unitScore, unitsTotal, suggestionsTotal, energySavings, co2Savings)

	projectScore.Set(result.ProjectScore)
	for c, avg := range result.CategoryAverages {
		categoryScore.WithLabelValues(string(c)).Set(avg)
	}
	for _, u := range result.Units {
		unitsTotal.WithLabelValues(string(u.Status)).Inc()
		if u.Result != nil {
			unitScore.WithLabelValues(u.Path).Set(u.Result.OverallScore)
		}
	}
	for _, s := range result.Suggestions {
		suggestionsTotal.WithLabelValues(string(s.Severity)).Inc()
	}
	energySavings.Set(result.Estimate.EnergyKWhPerYear)
	co2Savings.Set(result.Estimate.CO2KgPerYear)

	if check != nil {
		passed := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "check_passed",
			Help:      "1 when every unit met the eco-score targets",
		})
		violations := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "check_violations",
			Help:      "Number of threshold violations",
		})
		reg.MustRegister(passed, violations)
		if check.Passed {
			passed.Set(1)
		}
		violations.Set(float64(len(check.Violations)))
	}
	return reg
}

// WriteMetricsFile writes the project gauges in the Prometheus text format,
// for pickup by a node_exporter textfile collector or a CI artifact step.
func WriteMetricsFile(path string, result schema.ProjectResult, check *schema.CheckResult) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, newProjectRegistry(result, check)); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote metrics to %s\n", path)
	return nil
}

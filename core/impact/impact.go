// Package impact converts an eco-score into heuristic energy and CO2 savings.
//
// The model scales an assumed annual baseline by the inefficiency implied by
// the score: potential savings = base * (1 - score). The figures are estimates
// driven entirely by configurable coefficients, not measurements.
package impact

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// ErrScoreOutOfRange is returned for a score that is NaN or outside [0,1].
var ErrScoreOutOfRange = errors.New("eco-score out of range [0,1]")

// ValidateCoefficients rejects coefficients that are not positive and finite.
func ValidateCoefficients(c schema.Coefficients) error {
	fields := []struct {
		key   string
		value float64
	}{
		{"coefficients.energy_consumption_per_cpu_cycle", c.EnergyConsumptionPerCPUCycle},
		{"coefficients.co2_emissions_per_kwh", c.CO2EmissionsPerKWh},
		{"coefficients.base_energy_consumption_per_year", c.BaseEnergyConsumptionPerYear},
		{"coefficients.base_co2_emissions_per_year", c.BaseCO2EmissionsPerYear},
		{"coefficients.trees_equivalent_factor", c.TreesEquivalentFactor},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return contract.NewConfigurationError(f.key, "must be a positive number (received %v)", f.value)
		}
	}
	return nil
}

// Estimate returns the potential annual savings implied by score.
// A score of 1.0 yields zero savings; 0.0 yields the full baseline.
func Estimate(score float64, c schema.Coefficients) (schema.EnvironmentalEstimate, error) {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return schema.EnvironmentalEstimate{}, fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
	if err := ValidateCoefficients(c); err != nil {
		return schema.EnvironmentalEstimate{}, err
	}

	inefficiency := 1.0 - score
	energy := c.BaseEnergyConsumptionPerYear * inefficiency
	co2 := c.BaseCO2EmissionsPerYear * inefficiency
	return schema.EnvironmentalEstimate{
		EnergyKWhPerYear:      energy,
		CO2KgPerYear:          co2,
		TreesEquivalent:       co2 / c.TreesEquivalentFactor,
		ExcessCPUCycles:       energy / c.EnergyConsumptionPerCPUCycle,
		FootprintCO2KgPerYear: c.BaseEnergyConsumptionPerYear * c.CO2EmissionsPerKWh,
	}, nil
}

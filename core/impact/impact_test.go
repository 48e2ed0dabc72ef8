package impact

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// TestEstimateEndPoints checks zero and full savings for several coefficient sets.
func TestEstimateEndPoints(t *testing.T) {
	coefficientSets := []schema.Coefficients{
		schema.DefaultCoefficients(),
		{
			EnergyConsumptionPerCPUCycle: 2e-9,
			CO2EmissionsPerKWh:           0.2,
			BaseEnergyConsumptionPerYear: 50,
			BaseCO2EmissionsPerYear:      10,
			TreesEquivalentFactor:        5,
		},
	}

	for _, c := range coefficientSets {
		perfect, err := Estimate(1.0, c)
		require.NoError(t, err)
		assert.Zero(t, perfect.EnergyKWhPerYear)
		assert.Zero(t, perfect.CO2KgPerYear)
		assert.Zero(t, perfect.TreesEquivalent)
		assert.Zero(t, perfect.ExcessCPUCycles)

		worst, err := Estimate(0.0, c)
		require.NoError(t, err)
		assert.InDelta(t, c.BaseEnergyConsumptionPerYear, worst.EnergyKWhPerYear, 1e-9)
		assert.InDelta(t, c.BaseCO2EmissionsPerYear, worst.CO2KgPerYear, 1e-9)
		assert.InDelta(t, c.BaseCO2EmissionsPerYear/c.TreesEquivalentFactor, worst.TreesEquivalent, 1e-9)
	}
}

// TestEstimateDefaults pins the default model at a mid score.
func TestEstimateDefaults(t *testing.T) {
	got, err := Estimate(0.75, schema.DefaultCoefficients())
	require.NoError(t, err)
	assert.InDelta(t, 250, got.EnergyKWhPerYear, 1e-9)
	assert.InDelta(t, 118.75, got.CO2KgPerYear, 1e-9)
	assert.InDelta(t, 118.75/21, got.TreesEquivalent, 1e-9)
	assert.InDelta(t, 250/1e-12, got.ExcessCPUCycles, 1)
	assert.InDelta(t, 475, got.FootprintCO2KgPerYear, 1e-9)
}

// TestEstimateRejectsInvalidInput covers the estimator's own guards.
func TestEstimateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		mutate    func(c *schema.Coefficients)
		wantRange bool
	}{
		{name: "negative score", score: -0.01, wantRange: true},
		{name: "score above one", score: 1.01, wantRange: true},
		{name: "nan score", score: math.NaN(), wantRange: true},
		{name: "zero trees factor", score: 0.5, mutate: func(c *schema.Coefficients) { c.TreesEquivalentFactor = 0 }},
		{name: "negative base energy", score: 0.5, mutate: func(c *schema.Coefficients) { c.BaseEnergyConsumptionPerYear = -1 }},
		{name: "infinite co2", score: 0.5, mutate: func(c *schema.Coefficients) { c.CO2EmissionsPerKWh = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := schema.DefaultCoefficients()
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			_, err := Estimate(tt.score, c)
			require.Error(t, err)
			if tt.wantRange {
				assert.True(t, errors.Is(err, ErrScoreOutOfRange))
			} else {
				assert.True(t, contract.IsConfigurationError(err))
			}
		})
	}
}

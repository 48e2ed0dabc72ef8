package schema

// CategoryWeights holds the weight of every category in the overall score.
type CategoryWeights struct {
	EnergyEfficiency  float64 `json:"energy_efficiency" yaml:"energy_efficiency" validate:"gte=0,finite"`
	ResourceUsage     float64 `json:"resource_usage" yaml:"resource_usage" validate:"gte=0,finite"`
	CodeOptimizations float64 `json:"code_optimizations" yaml:"code_optimizations" validate:"gte=0,finite"`
	CustomRules       float64 `json:"custom_rules" yaml:"custom_rules" validate:"gte=0,finite"`
}

// Get returns the weight for a category.
func (w CategoryWeights) Get(c Category) float64 {
	switch c {
	case EnergyEfficiency:
		return w.EnergyEfficiency
	case ResourceUsage:
		return w.ResourceUsage
	case CodeOptimizations:
		return w.CodeOptimizations
	case CustomRules:
		return w.CustomRules
	default:
		return 0
	}
}

// Sum returns the total of all category weights.
func (w CategoryWeights) Sum() float64 {
	return w.EnergyEfficiency + w.ResourceUsage + w.CodeOptimizations + w.CustomRules
}

// Scale returns a copy with every weight multiplied by f.
func (w CategoryWeights) Scale(f float64) CategoryWeights {
	return CategoryWeights{
		EnergyEfficiency:  w.EnergyEfficiency * f,
		ResourceUsage:     w.ResourceUsage * f,
		CodeOptimizations: w.CodeOptimizations * f,
		CustomRules:       w.CustomRules * f,
	}
}

// Thresholds decide when a result is flagged as below target.
type Thresholds struct {
	EcoScore      float64 `json:"eco_score" yaml:"eco_score" validate:"gte=0,lte=1"`
	CategoryScore float64 `json:"category_score" yaml:"category_score" validate:"gte=0,lte=1"`
}

// Coefficients are the assumptions used by the environmental impact estimator.
type Coefficients struct {
	EnergyConsumptionPerCPUCycle float64 `json:"energy_consumption_per_cpu_cycle" yaml:"energy_consumption_per_cpu_cycle" validate:"gt=0,finite"`
	CO2EmissionsPerKWh           float64 `json:"co2_emissions_per_kwh" yaml:"co2_emissions_per_kwh" validate:"gt=0,finite"`
	BaseEnergyConsumptionPerYear float64 `json:"base_energy_consumption_per_year" yaml:"base_energy_consumption_per_year" validate:"gt=0,finite"`
	BaseCO2EmissionsPerYear      float64 `json:"base_co2_emissions_per_year" yaml:"base_co2_emissions_per_year" validate:"gt=0,finite"`
	TreesEquivalentFactor        float64 `json:"trees_equivalent_factor" yaml:"trees_equivalent_factor" validate:"gt=0,finite"`
}

// CustomRuleSpec registers a user-supplied check into the custom_rules category.
// Name resolves against the optional check catalog unless Pattern is set.
// A nil Weight takes the default; an explicit 0 turns the rule's contribution off.
type CustomRuleSpec struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Weight  *float64 `json:"weight,omitempty" yaml:"weight,omitempty" mapstructure:"weight" validate:"omitempty,gte=0,finite"`
	Pattern string  `json:"pattern,omitempty" yaml:"pattern,omitempty" mapstructure:"pattern"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	Example string  `json:"example,omitempty" yaml:"example,omitempty" mapstructure:"example"`
}

// Settings is the immutable engine configuration passed into every analysis.
type Settings struct {
	Weights      CategoryWeights  `json:"weights" yaml:"weights"`
	Thresholds   Thresholds       `json:"thresholds" yaml:"thresholds"`
	CustomRules  []CustomRuleSpec `json:"custom_rules" yaml:"custom_rules" validate:"dive"`
	Coefficients Coefficients     `json:"coefficients" yaml:"coefficients"`
}

// Default weights, matching the long-standing 0.3/0.3/0.3/0.1 split.
const (
	DefaultEnergyWeight       = 0.3
	DefaultResourceWeight     = 0.3
	DefaultOptimizationWeight = 0.3
	DefaultCustomWeight       = 0.1
)

// Default thresholds.
const (
	DefaultEcoScoreThreshold      = 0.7
	DefaultCategoryScoreThreshold = 0.7
)

// Default coefficients.
const (
	DefaultEnergyPerCPUCycle = 1e-12 // kWh per cycle
	DefaultCO2PerKWh         = 0.475 // kg CO2 per kWh, global grid average
	DefaultBaseEnergyPerYear = 1000  // kWh per year
	DefaultBaseCO2PerYear    = 475   // kg CO2 per year
	DefaultTreesEquivalentKg = 21    // kg CO2 absorbed by one tree per year
)

// DefaultWeights returns the default category weights.
func DefaultWeights() CategoryWeights {
	return CategoryWeights{
		EnergyEfficiency:  DefaultEnergyWeight,
		ResourceUsage:     DefaultResourceWeight,
		CodeOptimizations: DefaultOptimizationWeight,
		CustomRules:       DefaultCustomWeight,
	}
}

// DefaultCoefficients returns the default impact coefficients.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		EnergyConsumptionPerCPUCycle: DefaultEnergyPerCPUCycle,
		CO2EmissionsPerKWh:           DefaultCO2PerKWh,
		BaseEnergyConsumptionPerYear: DefaultBaseEnergyPerYear,
		BaseCO2EmissionsPerYear:      DefaultBaseCO2PerYear,
		TreesEquivalentFactor:        DefaultTreesEquivalentKg,
	}
}

// DefaultSettings returns settings with every documented default applied.
func DefaultSettings() Settings {
	return Settings{
		Weights: DefaultWeights(),
		Thresholds: Thresholds{
			EcoScore:      DefaultEcoScoreThreshold,
			CategoryScore: DefaultCategoryScoreThreshold,
		},
		Coefficients: DefaultCoefficients(),
	}
}

// WeightOr returns the configured weight, or def when none was set.
func (c CustomRuleSpec) WeightOr(def float64) float64 {
	if c.Weight == nil {
		return def
	}
	return *c.Weight
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	clone := s
	if s.CustomRules != nil {
		clone.CustomRules = make([]CustomRuleSpec, len(s.CustomRules))
		for i, spec := range s.CustomRules {
			if spec.Weight != nil {
				w := *spec.Weight
				spec.Weight = &w
			}
			clone.CustomRules[i] = spec
		}
	}
	return clone
}

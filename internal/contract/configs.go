package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/ecoscore/schema"
)

// Default values for configuration.
const (
	DefaultPrecision           = 2
	DefaultCommits             = 10
	MaxCommits                 = 500
	DefaultDebounce            = 500 * time.Millisecond
	DefaultRegressionTolerance = 0.05
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExcludes lists the paths skipped when walking a project.
var DefaultExcludes = []string{
	".git/", ".hg/",
	"venv/", ".venv/", "env/", ".tox/", ".nox/", "site-packages/",
	"__pycache__/", ".mypy_cache/", ".pytest_cache/",
	"build/", "dist/", "node_modules/",
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds the category weights from the YAML config file.
// Pointer fields distinguish "not provided" from zero.
type WeightsRawInput struct {
	EnergyEfficiency  *float64 `mapstructure:"energy_efficiency"`
	ResourceUsage     *float64 `mapstructure:"resource_usage"`
	CodeOptimizations *float64 `mapstructure:"code_optimizations"`
	CustomRules       *float64 `mapstructure:"custom_rules"`
}

// ThresholdsRawInput holds the target thresholds from the YAML config file.
type ThresholdsRawInput struct {
	EcoScore      *float64 `mapstructure:"eco_score"`
	CategoryScore *float64 `mapstructure:"category_score"`
}

// CoefficientsRawInput holds the impact coefficients from the YAML config file.
type CoefficientsRawInput struct {
	EnergyConsumptionPerCPUCycle *float64 `mapstructure:"energy_consumption_per_cpu_cycle"`
	CO2EmissionsPerKWh           *float64 `mapstructure:"co2_emissions_per_kwh"`
	BaseEnergyConsumptionPerYear *float64 `mapstructure:"base_energy_consumption_per_year"`
	BaseCO2EmissionsPerYear      *float64 `mapstructure:"base_co2_emissions_per_year"`
	TreesEquivalentFactor        *float64 `mapstructure:"trees_equivalent_factor"`
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	schema.Settings

	TargetPath string // Absolute file or directory to analyze
	Workers    int
	Excludes   []string
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Verbose    bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	MetricsFile string // Prometheus textfile written after analyze and check

	Commits             int
	Ref                 string
	RegressionTolerance float64

	Debounce time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Workers          int    `mapstructure:"workers"`
	Exclude          string `mapstructure:"exclude"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Verbose          bool   `mapstructure:"verbose"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	MetricsFile      string `mapstructure:"metrics-file"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from historyCmd.Flags() ---
	Path      string  `mapstructure:"path"`
	Commits   int     `mapstructure:"commits"`
	Ref       string  `mapstructure:"ref"`
	Tolerance float64 `mapstructure:"tolerance"`

	// --- Fields from watchCmd.Flags() ---
	Debounce string `mapstructure:"debounce"`

	// --- Engine settings from config file ---
	Weights      WeightsRawInput         `mapstructure:"weights"`
	Thresholds   ThresholdsRawInput      `mapstructure:"thresholds"`
	Coefficients CoefficientsRawInput    `mapstructure:"coefficients"`
	CustomRules  []schema.CustomRuleSpec `mapstructure:"custom_rules"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Settings = c.Settings.Clone()
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ConfigParams returns the settings recorded alongside a history run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"path":         c.TargetPath,
		"workers":      c.Workers,
		"weights":      c.Weights,
		"thresholds":   c.Thresholds,
		"coefficients": c.Coefficients,
		"custom_rules": len(c.CustomRules),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Engine settings failures are returned
// as *ConfigurationError.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTargetPath(cfg, input); err != nil {
		return err
	}
	if err := processHistoryMode(cfg, input); err != nil {
		return err
	}
	if err := processWatchMode(cfg, input); err != nil {
		return err
	}
	return processSettings(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// The cache and the history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseColorMode(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	cfg.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}
	return nil
}

// processTargetPath resolves the positional path argument, or --path when no argument was given.
func processTargetPath(cfg *Config, input *ConfigRawInput) error {
	target := strings.TrimSpace(input.PathStr)
	if target == "" {
		target = strings.TrimSpace(input.Path)
	}
	if target == "" {
		target = "."
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	cfg.TargetPath = filepath.Clean(abs)
	return nil
}

// processHistoryMode handles the revision window of the history command.
func processHistoryMode(cfg *Config, input *ConfigRawInput) error {
	cfg.Commits = input.Commits
	if cfg.Commits == 0 {
		cfg.Commits = DefaultCommits
	}
	if cfg.Commits < 1 || cfg.Commits > MaxCommits {
		return fmt.Errorf("commits must be between 1 and %d (received %d)", MaxCommits, input.Commits)
	}

	cfg.Ref = strings.TrimSpace(input.Ref)
	if cfg.Ref == "" {
		cfg.Ref = "HEAD"
	}

	if input.Tolerance < 0 || input.Tolerance > 1 {
		return fmt.Errorf("tolerance must be between 0 and 1 (received %v)", input.Tolerance)
	}
	cfg.RegressionTolerance = input.Tolerance
	return nil
}

// processWatchMode parses the debounce interval of the watch command.
func processWatchMode(cfg *Config, input *ConfigRawInput) error {
	cfg.Debounce = DefaultDebounce
	if input.Debounce == "" {
		return nil
	}
	d, err := time.ParseDuration(input.Debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("debounce must be positive (received %s)", d)
	}
	cfg.Debounce = d
	return nil
}

// processSettings overlays the config file values on the defaults and validates the result.
func processSettings(cfg *Config, input *ConfigRawInput) error {
	s := schema.DefaultSettings()

	overlay := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	overlay(&s.Weights.EnergyEfficiency, input.Weights.EnergyEfficiency)
	overlay(&s.Weights.ResourceUsage, input.Weights.ResourceUsage)
	overlay(&s.Weights.CodeOptimizations, input.Weights.CodeOptimizations)
	overlay(&s.Weights.CustomRules, input.Weights.CustomRules)

	overlay(&s.Thresholds.EcoScore, input.Thresholds.EcoScore)
	overlay(&s.Thresholds.CategoryScore, input.Thresholds.CategoryScore)

	overlay(&s.Coefficients.EnergyConsumptionPerCPUCycle, input.Coefficients.EnergyConsumptionPerCPUCycle)
	overlay(&s.Coefficients.CO2EmissionsPerKWh, input.Coefficients.CO2EmissionsPerKWh)
	overlay(&s.Coefficients.BaseEnergyConsumptionPerYear, input.Coefficients.BaseEnergyConsumptionPerYear)
	overlay(&s.Coefficients.BaseCO2EmissionsPerYear, input.Coefficients.BaseCO2EmissionsPerYear)
	overlay(&s.Coefficients.TreesEquivalentFactor, input.Coefficients.TreesEquivalentFactor)

	if len(input.CustomRules) > 0 {
		s.CustomRules = append([]schema.CustomRuleSpec{}, input.CustomRules...)
	}

	if err := ValidateSettings(s); err != nil {
		return err
	}
	cfg.Settings = s
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// StatTarget reports whether the target path is a directory.
func StatTarget(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

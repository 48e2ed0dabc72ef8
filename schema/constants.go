package schema

// Custom string types for type safety.
type (
	// Category is one of the four fixed buckets that group rules.
	Category string

	// OutputMode represents the format of the output.
	OutputMode string

	// UnitStatus represents the outcome of analyzing one source unit.
	UnitStatus string

	// Severity ranks how far a failing rule is from passing.
	Severity string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string
)

// All categories supported.
const (
	EnergyEfficiency  Category = "energy_efficiency"
	ResourceUsage     Category = "resource_usage"
	CodeOptimizations Category = "code_optimizations"
	CustomRules       Category = "custom_rules"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
)

// All unit statuses supported.
const (
	StatusOK         UnitStatus = "ok"
	StatusParseError UnitStatus = "parse_error"
	StatusReadError  UnitStatus = "read_error"
	StatusMissing    UnitStatus = "missing"
	StatusFailed     UnitStatus = "failed"
)

// All severities supported.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllCategories lists every category in report order.
var AllCategories = []Category{EnergyEfficiency, ResourceUsage, CodeOptimizations, CustomRules}

// ValidCategories lists all valid categories.
var ValidCategories = map[Category]struct{}{
	EnergyEfficiency:  {},
	ResourceUsage:     {},
	CodeOptimizations: {},
	CustomRules:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Title returns the human-readable name of the category.
func (c Category) Title() string {
	switch c {
	case EnergyEfficiency:
		return "Energy Efficiency"
	case ResourceUsage:
		return "Resource Usage"
	case CodeOptimizations:
		return "Code Optimizations"
	case CustomRules:
		return "Custom Rules"
	default:
		return string(c)
	}
}

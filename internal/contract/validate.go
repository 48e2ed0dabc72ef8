package contract

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/huangsam/ecoscore/schema"
)

// settingsValidate checks the numeric constraints declared on schema.Settings.
var settingsValidate *validator.Validate

func init() {
	settingsValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report config keys, not Go field names
	settingsValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = settingsValidate.RegisterValidation("finite", validateFinite)
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	default:
		return true
	}
}

// ValidateSettings checks weights, thresholds, coefficients and custom rule specs.
// The first violation is returned as a *ConfigurationError.
func ValidateSettings(s schema.Settings) error {
	err := settingsValidate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Key: "settings", Reason: "validation failed", Err: err}
	}

	fe := verrs[0]
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	key := strings.TrimPrefix(fe.Namespace(), "Settings.")
	return NewConfigurationError(key, "must satisfy %s (received %v)", constraint, fe.Value())
}

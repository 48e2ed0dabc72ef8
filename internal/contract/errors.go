package contract

import (
	"errors"
	"fmt"
)

// ConfigurationError reports malformed weights, thresholds, coefficients or custom rules.
// It is global and fatal: no analysis runs once one is raised.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

// NewConfigurationError builds a ConfigurationError for a config key.
func NewConfigurationError(key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

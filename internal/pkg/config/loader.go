// Package config provides fail-open environment loaders and reusable validators.
//
// Every loader returns a valid value: when the variable is unset the default is
// used silently, when it is set but unparsable or invalid the default is used
// and a warning is attached to the result. Callers decide how to log warnings
// and which metrics to record.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadResult represents the result of loading a configuration value.
//
// Example:
//
//	result := LoadEnvDuration("RUN_TIMEOUT", 30*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    for _, warning := range result.Warnings {
//	        logger.Warn("configuration fallback applied", slog.String("warning", warning))
//	    }
//	}
//	timeout := result.Value
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, reason any, defaultValue T) LoadResult[T] {
	return LoadResult[T]{
		Value:           defaultValue,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, reason, defaultValue)},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the environment value or defaultValue when unset. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string value and validates it.
// A nil validator accepts any non-empty value.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return LoadResult[string]{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}

	return LoadResult[string]{Value: value}
}

// LoadEnvDuration loads a Go duration string ("30s", "5m", "1h30m") and validates it.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[time.Duration]{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}

	return LoadResult[time.Duration]{Value: parsed}
}

// LoadEnvInt loads a base-10 integer and validates it.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[int]{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(envKey, raw, "invalid integer format", defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}

	return LoadResult[int]{Value: parsed}
}

// LoadEnvBool loads a boolean accepted by strconv.ParseBool ("1", "t", "true", "0", "f", "false", ...).
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[bool]{Value: defaultValue}
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(envKey, raw, "invalid boolean format, expected 'true' or 'false'", defaultValue)
	}

	return LoadResult[bool]{Value: parsed}
}

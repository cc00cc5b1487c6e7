package env

import (
	"os"
	"strconv"
	"strings"
)

// Bool reads a boolean environment variable, falling back to defaultValue
// when the variable is unset or unparsable.
func Bool(env string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// Int reads an integer environment variable.
func Int(env string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return num
}

// Float64 reads a float environment variable.
func Float64(env string, defaultValue float64) float64 {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return defaultValue
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return num
}

// String reads a string environment variable.
func String(env string, defaultValue string) string {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return defaultValue
}

package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envValue interface {
	string | int | bool | float64 | time.Duration
}

func parseEnv[T envValue](envVarName, raw string) T {
	var zero T
	var parsed any
	var err error

	switch any(zero).(type) {
	case string:
		parsed = raw
	case int:
		parsed, err = strconv.Atoi(raw)
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case time.Duration:
		parsed, err = time.ParseDuration(raw)
	}
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not valid: '%s' cannot be parsed as %T", envVarName, raw, zero))
	}
	return parsed.(T)
}

// GetEnv reads the environment variable, falling back to defaultValue when it is unset or empty.
// It panics if the value cannot be parsed into the type of defaultValue.
func GetEnv[T envValue](envVarName string, defaultValue T) T {
	raw, ok := os.LookupEnv(envVarName)
	if !ok || raw == "" {
		return defaultValue
	}
	return parseEnv[T](envVarName, raw)
}

func GetRequiredEnv[T envValue](envVarName string) T {
	raw, ok := os.LookupEnv(envVarName)
	if !ok || raw == "" {
		log.Fatalf("%s environment variable is required", envVarName)
	}
	return parseEnv[T](envVarName, raw)
}

// Package envutil reads bounded numeric settings from environment variables.
package envutil

import (
	"os"
	"strconv"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

// GetIntFromEnv returns the integer value of name when it parses and lies in
// [minValue, maxValue]; otherwise defaultValue. log may be nil.
func GetIntFromEnv(name string, defaultValue, minValue, maxValue int, log *logger.Logger) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Printf("Ignoring %s=%q: not an integer", name, raw)
		}
		return defaultValue
	}
	if v < minValue || v > maxValue {
		if log != nil {
			log.Printf("Ignoring %s=%d: outside [%d, %d]", name, v, minValue, maxValue)
		}
		return defaultValue
	}
	if log != nil {
		log.Printf("Using %s=%d", name, v)
	}
	return v
}

// GetMillisFromEnv is GetIntFromEnv for durations expressed in milliseconds.
func GetMillisFromEnv(name string, defaultValue time.Duration, minMs, maxMs int, log *logger.Logger) time.Duration {
	ms := GetIntFromEnv(name, int(defaultValue/time.Millisecond), minMs, maxMs, log)
	return time.Duration(ms) * time.Millisecond
}

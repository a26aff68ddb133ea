//go:build !integration

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Duration
		expected string
	}{
		{name: "microseconds", in: 250 * time.Microsecond, expected: "250µs"},
		{name: "milliseconds", in: 850 * time.Millisecond, expected: "850ms"},
		{name: "seconds", in: 2300 * time.Millisecond, expected: "2.3s"},
		{name: "minutes", in: 4*time.Minute + 12*time.Second, expected: "4m12s"},
		{name: "hours", in: time.Hour + 5*time.Minute, expected: "1h5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.in))
		})
	}
}

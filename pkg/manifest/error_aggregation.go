package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var errorAggregationLog = logger.New("manifest:error_aggregation")

// ErrorCollector gathers field errors. With failFast set, Add hands the
// first error straight back so the caller can stop.
type ErrorCollector struct {
	errors   []*FieldError
	failFast bool
}

// NewErrorCollector creates a collector.
func NewErrorCollector(failFast bool) *ErrorCollector {
	return &ErrorCollector{failFast: failFast}
}

// Add records err. It returns err only in fail-fast mode.
func (c *ErrorCollector) Add(err *FieldError) error {
	if err == nil {
		return nil
	}
	errorAggregationLog.Printf("Field error: %v", err)
	c.errors = append(c.errors, err)
	if c.failFast {
		return err
	}
	return nil
}

func (c *ErrorCollector) HasErrors() bool { return len(c.errors) > 0 }

func (c *ErrorCollector) Count() int { return len(c.errors) }

// FieldErrors returns the collected errors in the order they were added.
func (c *ErrorCollector) FieldErrors() []*FieldError {
	return c.errors
}

// Error joins every collected error, or returns nil.
func (c *ErrorCollector) Error() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	}
	errs := make([]error, len(c.errors))
	for i, e := range c.errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// FormattedError prefixes the joined errors with a count header.
func (c *ErrorCollector) FormattedError(category string) error {
	if len(c.errors) <= 1 {
		return c.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d %s errors:", len(c.errors), category)
	for _, err := range c.errors {
		sb.WriteString("\n  • ")
		sb.WriteString(err.Error())
	}
	return errors.New(sb.String())
}

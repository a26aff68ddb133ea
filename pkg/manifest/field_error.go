package manifest

import "fmt"

// Rule names the constraint a FieldError violated.
type Rule string

const (
	RuleRequired       Rule = "required"
	RuleType           Rule = "type"
	RuleLength         Rule = "length"
	RuleRange          Rule = "range"
	RuleEnum           Rule = "enum"
	RulePattern        Rule = "pattern"
	RuleURL            Rule = "url"
	RuleReservedPrefix Rule = "reserved_prefix"
	RuleTaglinePeriod  Rule = "tagline_period"
	RuleSelfDependency Rule = "self_dependency"
	RulePath           Rule = "path"
	RuleSemver         Rule = "semver"
)

// FieldError is one violated constraint on a manifest field.
type FieldError struct {
	// Field is the top-level key, or "key.N" for list elements.
	Field      string
	Rule       Rule
	Value      string
	Reason     string
	Suggestion string
}

// NewFieldError builds a FieldError.
func NewFieldError(field string, rule Rule, value, reason, suggestion string) *FieldError {
	return &FieldError{Field: field, Rule: rule, Value: value, Reason: reason, Suggestion: suggestion}
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Title is a short headline for the violation.
func (e *FieldError) Title() string {
	switch e.Rule {
	case RuleTaglinePeriod:
		return "Invalid tagline"
	case RuleRequired:
		return fmt.Sprintf("Missing required field %q", e.Field)
	}
	if e.Field == "" {
		return "Invalid manifest"
	}
	return fmt.Sprintf("Invalid field %q", e.Field)
}

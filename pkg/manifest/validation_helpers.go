package manifest

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fields reads typed values out of a mapping node and reports problems to
// the collector. Every reader returns a zero value alongside a reported
// error so callers can keep going.
type fields struct {
	node *yamlnode.Node
	c    *ErrorCollector
}

func (f *fields) report(err *FieldError) {
	_ = f.c.Add(err)
}

func (f *fields) missing(name string) {
	f.report(NewFieldError(name, RuleRequired, "",
		fmt.Sprintf("The required field %q is missing", name),
		fmt.Sprintf("Add %q to the manifest", name)))
}

func (f *fields) wrongType(name string, v *yamlnode.Node, want string) {
	f.report(NewFieldError(name, RuleType, v.Text(),
		fmt.Sprintf("The field %q must be %s, but received %s", name, want, v.Kind()),
		quoteHint(v, want)))
}

func quoteHint(v *yamlnode.Node, want string) string {
	if want == "a string" && v.IsScalar() && !v.IsNull() {
		return fmt.Sprintf("Wrap the value in quotes: %q", v.Text())
	}
	return ""
}

// lookup returns the node for name. Absent keys and explicit nulls are
// both reported as "not present".
func (f *fields) lookup(name string) (*yamlnode.Node, bool) {
	v := f.node.Get(name)
	if v == nil || v.IsNull() {
		return nil, false
	}
	return v, true
}

// str reads a string field. When required is set an absent value is an error.
func (f *fields) str(name string, required bool) (string, bool) {
	v, ok := f.lookup(name)
	if !ok {
		if required {
			f.missing(name)
		}
		return "", false
	}
	s, ok := v.Str()
	if !ok {
		f.wrongType(name, v, "a string")
		return "", false
	}
	return s, true
}

// coercedStr reads a string field, accepting numbers and rendering them as text.
func (f *fields) coercedStr(name string) (string, bool) {
	v, ok := f.lookup(name)
	if !ok {
		f.missing(name)
		return "", false
	}
	if v.IsNumber() {
		return v.Text(), true
	}
	s, ok := v.Str()
	if !ok {
		f.wrongType(name, v, "a string")
		return "", false
	}
	return s, true
}

// length checks utf-8 character length bounds; max <= 0 means unbounded.
func (f *fields) length(name, value string, min, max int) bool {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		f.report(NewFieldError(name, RuleLength, value,
			fmt.Sprintf("The field %q must be at least %d characters long", name, min),
			fmt.Sprintf("Provide a non-empty value for %q", name)))
		return false
	case max > 0 && n > max:
		f.report(NewFieldError(name, RuleLength, value,
			fmt.Sprintf("The field %q must be at most %d characters long (got %d)", name, max, n),
			fmt.Sprintf("Shorten %q to %d characters or less", name, max)))
		return false
	}
	return true
}

func (f *fields) inList(name, value string, allowed []string) bool {
	if slices.Contains(allowed, value) {
		return true
	}
	f.report(NewFieldError(name, RuleEnum, value,
		fmt.Sprintf("%s must be one of: %s", name, strings.Join(allowed, ", ")),
		fmt.Sprintf("Choose one of the allowed values for %q", name)))
	return false
}

// integer reads an integer field. Whole floats and digit strings are accepted.
func (f *fields) integer(name string, required bool) (int64, bool) {
	v, ok := f.lookup(name)
	if !ok {
		if required {
			f.missing(name)
		}
		return 0, false
	}
	if i, ok := v.IntValue(); ok {
		return i, true
	}
	if s, ok := v.Str(); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i, true
		}
	}
	f.wrongType(name, v, "an integer")
	return 0, false
}

func (f *fields) intRange(name string, value, min, max int64) bool {
	if value >= min && value <= max {
		return true
	}
	f.report(NewFieldError(name, RuleRange, strconv.FormatInt(value, 10),
		fmt.Sprintf("%s must be between %d and %d, got %d", name, min, max, value),
		""))
	return false
}

// boolean reads an optional boolean. The strings "true" and "false" are accepted.
func (f *fields) boolean(name string) *bool {
	v, ok := f.lookup(name)
	if !ok {
		return nil
	}
	if b, ok := v.BoolValue(); ok {
		return &b
	}
	if s, ok := v.Str(); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return &b
		}
	}
	f.wrongType(name, v, "a boolean")
	return nil
}

// stringList reads an optional list of strings, reporting each bad element.
func (f *fields) stringList(name string) ([]string, bool) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, true
	}
	if !v.IsSequence() {
		f.wrongType(name, v, "a list")
		return nil, false
	}
	out := make([]string, 0, v.Len())
	valid := true
	for i, item := range v.Items() {
		s, ok := item.Str()
		if !ok {
			f.wrongType(fmt.Sprintf("%s.%d", name, i), item, "a string")
			valid = false
			continue
		}
		out = append(out, s)
	}
	return out, valid
}

// url reads a required http(s) URL.
func (f *fields) url(name string) (string, bool) {
	s, ok := f.str(name, true)
	if !ok {
		return "", false
	}
	if err := validate.Var(s, "required,http_url"); err != nil {
		f.report(NewFieldError(name, RuleURL, s,
			fmt.Sprintf("The field %q must be a valid http or https URL", name),
			"Use a full URL such as https://example.com"))
		return "", false
	}
	return s, true
}

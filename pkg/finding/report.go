package finding

import (
	"encoding/json"
	"slices"
)

// Report is an ordered list of findings plus counters. The counters are
// only ever advanced by Add, so success stays consistent with the list.
type Report struct {
	findings []Finding
	errors   int
	warnings int
	infos    int
}

// ReportJSON is the serialized form of a Report.
type ReportJSON struct {
	Success       bool      `json:"success" jsonschema:"true when no finding has error severity"`
	TotalErrors   int       `json:"total_errors"`
	TotalWarnings int       `json:"total_warnings"`
	TotalInfo     int       `json:"total_info"`
	Errors        []Finding `json:"errors"`
}

// NewReport returns an empty, successful report.
func NewReport() *Report {
	return &Report{}
}

// Add appends findings in order.
func (r *Report) Add(findings ...Finding) {
	for _, f := range findings {
		switch f.Severity {
		case Error:
			r.errors++
		case Warning:
			r.warnings++
		case Info:
			r.infos++
		}
		r.findings = append(r.findings, f)
	}
}

// Merge appends every finding of other. A nil report is ignored.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Add(other.findings...)
}

// Findings returns a copy of the findings in insertion order.
func (r *Report) Findings() []Finding {
	return slices.Clone(r.findings)
}

func (r *Report) Len() int      { return len(r.findings) }
func (r *Report) Errors() int   { return r.errors }
func (r *Report) Warnings() int { return r.warnings }
func (r *Report) Infos() int    { return r.infos }

// Success is true iff no finding has Error severity.
func (r *Report) Success() bool { return r.errors == 0 }

func (r *Report) HasErrors() bool   { return r.errors > 0 }
func (r *Report) HasWarnings() bool { return r.warnings > 0 }

// Failed decides the process outcome: any error fails, and in strict mode
// so does any warning.
func (r *Report) Failed(strict bool) bool {
	return r.HasErrors() || (strict && r.HasWarnings())
}

// Filter returns a new report keeping findings at min severity or above
// for which keep (if non-nil) returns true.
func (r *Report) Filter(min Severity, keep func(Finding) bool) *Report {
	out := NewReport()
	for _, f := range r.findings {
		if !f.Severity.AtLeast(min) {
			continue
		}
		if keep != nil && !keep(f) {
			continue
		}
		out.Add(f)
	}
	return out
}

// ByFile groups findings by file, returning file names in first-seen order.
func (r *Report) ByFile() ([]string, map[string][]Finding) {
	var order []string
	groups := make(map[string][]Finding)
	for _, f := range r.findings {
		if _, ok := groups[f.File]; !ok {
			order = append(order, f.File)
		}
		groups[f.File] = append(groups[f.File], f)
	}
	return order, groups
}

// HasAnyID reports whether a finding with one of ids is present.
func (r *Report) HasAnyID(ids ...string) bool {
	return slices.ContainsFunc(r.findings, func(f Finding) bool {
		return slices.Contains(ids, f.ID)
	})
}

// JSON returns the serializable view of the report.
func (r *Report) JSON() ReportJSON {
	errs := r.Findings()
	if errs == nil {
		errs = []Finding{}
	}
	return ReportJSON{
		Success:       r.Success(),
		TotalErrors:   r.errors,
		TotalWarnings: r.warnings,
		TotalInfo:     r.infos,
		Errors:        errs,
	}
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.JSON())
}

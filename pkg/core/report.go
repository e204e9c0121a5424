package core

// Failure is one logged violation.
type Failure struct {
	Check   string `json:"check" yaml:"check"`
	Message string `json:"message" yaml:"message"`
}

// Report is the aggregate result of one validation run.
//
// PassedChecks + FailedChecks equals the number of sub-checks evaluated and
// len(Failures) equals FailedChecks.
type Report struct {
	DatasetName  string    `json:"dataset_name" yaml:"dataset_name"`
	TotalRecords int       `json:"total_records" yaml:"total_records"`
	PassedChecks int       `json:"passed_checks" yaml:"passed_checks"`
	FailedChecks int       `json:"failed_checks" yaml:"failed_checks"`
	Failures     []Failure `json:"failures" yaml:"failures"`
}

// NewReport returns an empty report bound to a dataset name and record count.
func NewReport(name string, total int) Report {
	return Report{
		DatasetName:  name,
		TotalRecords: total,
		Failures:     []Failure{},
	}
}

// HasFailures reports whether any sub-check failed.
func (r Report) HasFailures() bool {
	return r.FailedChecks > 0
}

// TotalChecks returns the number of sub-checks evaluated.
func (r Report) TotalChecks() int {
	return r.PassedChecks + r.FailedChecks
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	out := r
	out.Failures = make([]Failure, len(r.Failures))
	copy(out.Failures, r.Failures)
	return out
}

// AsMap returns the report as a plain nested mapping.
func (r Report) AsMap() map[string]any {
	failures := make([]map[string]any, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, map[string]any{
			"check":   f.Check,
			"message": f.Message,
		})
	}
	return map[string]any{
		"dataset_name":  r.DatasetName,
		"total_records": r.TotalRecords,
		"passed_checks": r.PassedChecks,
		"failed_checks": r.FailedChecks,
		"failures":      failures,
	}
}

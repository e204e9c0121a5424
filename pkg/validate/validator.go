// Package validate implements the data-quality validation engine.
//
// A Validator holds a reference to a loaded dataset and a mutable report.
// Each rule method inspects the dataset and appends either a success tally
// or a structured failure record. Rules are independent: they may run in any
// order, any number of times, and none can abort the run.
package validate

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Validator evaluates rules against one dataset and accumulates a report.
// It is safe for concurrent use; report updates are serialized.
type Validator struct {
	ds     *core.Dataset
	logger *slog.Logger

	mu     sync.Mutex
	report core.Report
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used to surface skipped evaluations.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a validator bound to ds with an empty report labelled name.
func New(ds *core.Dataset, name string, opts ...Option) *Validator {
	v := &Validator{
		ds:     ds,
		logger: slog.New(slog.DiscardHandler),
		report: core.NewReport(name, ds.Len()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Report returns a snapshot of the current report.
func (v *Validator) Report() core.Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report.Clone()
}

// CheckSchema verifies that every expected column exists.
// It is evaluated once regardless of how many columns are expected.
func (v *Validator) CheckSchema(expected []string) {
	var missing []string
	for _, col := range expected {
		if !v.ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		v.logFailure("Schema Check", fmt.Sprintf("Missing columns: %s", formatList(missing)))
		return
	}
	v.logSuccess()
}

// CheckNulls evaluates the null fraction of each present column against
// threshold. Columns absent from the dataset are skipped.
func (v *Validator) CheckNulls(columns []string, threshold float64) {
	for _, col := range columns {
		vals, ok := v.ds.Column(col)
		if !ok {
			v.skip("nulls", col)
			continue
		}
		nulls := 0
		for _, val := range vals {
			if core.IsNull(val) {
				nulls++
			}
		}
		pct := v.fraction(nulls)
		if pct > threshold {
			v.logFailure(fmt.Sprintf("Null Check (%s)", col),
				fmt.Sprintf("Null percentage %s exceeds threshold %s", percent(pct), percent(threshold)))
			continue
		}
		v.logSuccess()
	}
}

// CheckDuplicates counts records whose key over subset repeats an earlier
// record. The first occurrence of each key is not a duplicate. An empty
// subset keys on every column.
func (v *Validator) CheckDuplicates(subset []string, threshold float64) {
	keyCols := subset
	if len(keyCols) == 0 {
		keyCols = v.ds.Columns()
	}
	vectors := make([][]any, 0, len(keyCols))
	for _, col := range keyCols {
		vals, ok := v.ds.Column(col)
		if !ok {
			v.skip("duplicates", col)
			return
		}
		vectors = append(vectors, vals)
	}

	seen := make(map[string]struct{}, v.ds.Len())
	dups := 0
	var key strings.Builder
	for row := 0; row < v.ds.Len(); row++ {
		key.Reset()
		for i, vals := range vectors {
			if i > 0 {
				key.WriteByte(0x1f)
			}
			key.WriteString(core.ValueKey(vals[row]))
		}
		k := key.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}

	pct := v.fraction(dups)
	if pct > threshold {
		v.logFailure(fmt.Sprintf("Duplicate Check (%s)", formatList(keyCols)),
			fmt.Sprintf("Duplicate percentage %s exceeds threshold %s", percent(pct), percent(threshold)))
		return
	}
	v.logSuccess()
}

// CheckRange counts values strictly below min and strictly above max.
// Each supplied bound is a separate evaluation. Nulls and non-numeric values
// never violate a bound. Absent columns are skipped.
func (v *Validator) CheckRange(column string, minVal, maxVal *float64) {
	vals, ok := v.ds.Column(column)
	if !ok {
		v.skip("range", column)
		return
	}

	if minVal != nil {
		below := countWhere(vals, func(f float64) bool { return f < *minVal })
		if below > 0 {
			v.logFailure(fmt.Sprintf("Range Check Min (%s)", column),
				fmt.Sprintf("Found %d records below %s", below, core.FormatValue(*minVal)))
		} else {
			v.logSuccess()
		}
	}

	if maxVal != nil {
		above := countWhere(vals, func(f float64) bool { return f > *maxVal })
		if above > 0 {
			v.logFailure(fmt.Sprintf("Range Check Max (%s)", column),
				fmt.Sprintf("Found %d records above %s", above, core.FormatValue(*maxVal)))
		} else {
			v.logSuccess()
		}
	}
}

// CheckCategorical verifies that every value of column is in allowed.
// Nulls are never allowed. Absent columns are skipped.
func (v *Validator) CheckCategorical(column string, allowed []any) {
	vals, ok := v.ds.Column(column)
	if !ok {
		v.skip("categorical", column)
		return
	}

	permitted := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		if core.IsNull(a) {
			continue
		}
		permitted[core.ValueKey(a)] = struct{}{}
	}

	var invalid []string
	reported := make(map[string]struct{})
	for _, val := range vals {
		k := core.ValueKey(val)
		if _, ok := permitted[k]; ok {
			continue
		}
		if _, ok := reported[k]; ok {
			continue
		}
		reported[k] = struct{}{}
		invalid = append(invalid, core.FormatValue(val))
	}

	if len(invalid) > 0 {
		v.logFailure(fmt.Sprintf("Category Check (%s)", column),
			fmt.Sprintf("Found invalid values: %s", formatList(invalid)))
		return
	}
	v.logSuccess()
}

// fraction returns n / total records, or 0 for an empty dataset.
func (v *Validator) fraction(n int) float64 {
	total := v.ds.Len()
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func (v *Validator) skip(rule, column string) {
	v.logger.Warn("column not found, skipping check",
		slog.String("dataset", v.report.DatasetName),
		slog.String("rule", rule),
		slog.String("column", column))
}

func (v *Validator) logSuccess() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.report.PassedChecks++
}

func (v *Validator) logFailure(check, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.report.FailedChecks++
	v.report.Failures = append(v.report.Failures, core.Failure{Check: check, Message: message})
}

func countWhere(vals []any, pred func(float64) bool) int {
	n := 0
	for _, val := range vals {
		if f, ok := core.AsFloat(val); ok && pred(f) {
			n++
		}
	}
	return n
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func formatList(items []string) string {
	return "[" + strings.Join(items, " ") + "]"
}

package validate

import "fmt"

func init() {
	Register(CheckDef{
		Kind:        "schema",
		Description: "Fails once when any expected column is missing from the dataset.",
		Params:      []string{"columns"},
		Example:     "kind: schema\ncolumns: [transaction_id, user_id, amount]",
		Decode: func(params map[string]any) (Check, error) {
			var c SchemaCheck
			if err := decodeParams(params, &c); err != nil {
				return nil, err
			}
			if len(c.Columns) == 0 {
				return nil, fmt.Errorf("columns is required")
			}
			return c, nil
		},
	})
	Register(CheckDef{
		Kind:        "nulls",
		Description: "Fails per column whose null fraction exceeds the threshold.",
		Params:      []string{"columns", "threshold"},
		Example:     "kind: nulls\ncolumns: [user_id]\nthreshold: 0.0",
		Decode: func(params map[string]any) (Check, error) {
			var c NullCheck
			if err := decodeParams(params, &c); err != nil {
				return nil, err
			}
			if len(c.Columns) == 0 {
				return nil, fmt.Errorf("columns is required")
			}
			if err := validThreshold(c.Threshold); err != nil {
				return nil, err
			}
			return c, nil
		},
	})
	Register(CheckDef{
		Kind:        "duplicates",
		Description: "Fails when the fraction of repeated keys over the subset exceeds the threshold.",
		Params:      []string{"subset", "threshold"},
		Example:     "kind: duplicates\nsubset: [transaction_id]\nthreshold: 0.0",
		Decode: func(params map[string]any) (Check, error) {
			var c DuplicateCheck
			if err := decodeParams(params, &c); err != nil {
				return nil, err
			}
			if err := validThreshold(c.Threshold); err != nil {
				return nil, err
			}
			return c, nil
		},
	})
	Register(CheckDef{
		Kind:        "range",
		Description: "Fails per bound when any numeric value lies strictly outside it.",
		Params:      []string{"column", "min", "max"},
		Example:     "kind: range\ncolumn: amount\nmin: 0",
		Decode: func(params map[string]any) (Check, error) {
			var c RangeCheck
			if err := decodeParams(params, &c); err != nil {
				return nil, err
			}
			if c.Column == "" {
				return nil, fmt.Errorf("column is required")
			}
			if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
				return nil, fmt.Errorf("min %v is greater than max %v", *c.Min, *c.Max)
			}
			return c, nil
		},
	})
	Register(CheckDef{
		Kind:        "categorical",
		Description: "Fails when the column holds values outside the allowed set.",
		Params:      []string{"column", "allowed"},
		Example:     "kind: categorical\ncolumn: status\nallowed: [COMPLETED, PENDING, FAILED]",
		Decode: func(params map[string]any) (Check, error) {
			var c CategoricalCheck
			if err := decodeParams(params, &c); err != nil {
				return nil, err
			}
			if c.Column == "" {
				return nil, fmt.Errorf("column is required")
			}
			if len(c.Allowed) == 0 {
				return nil, fmt.Errorf("allowed is required")
			}
			return c, nil
		},
	})
}

// SchemaCheck expects every listed column to exist.
type SchemaCheck struct {
	Columns []string `mapstructure:"columns"`
}

// Kind implements Check.
func (SchemaCheck) Kind() string { return "schema" }

// Apply implements Check.
func (c SchemaCheck) Apply(v *Validator) { v.CheckSchema(c.Columns) }

// NullCheck bounds the null fraction of each column.
type NullCheck struct {
	Columns   []string `mapstructure:"columns"`
	Threshold float64  `mapstructure:"threshold"`
}

// Kind implements Check.
func (NullCheck) Kind() string { return "nulls" }

// Apply implements Check.
func (c NullCheck) Apply(v *Validator) { v.CheckNulls(c.Columns, c.Threshold) }

// DuplicateCheck bounds the fraction of repeated composite keys.
type DuplicateCheck struct {
	Subset    []string `mapstructure:"subset"`
	Threshold float64  `mapstructure:"threshold"`
}

// Kind implements Check.
func (DuplicateCheck) Kind() string { return "duplicates" }

// Apply implements Check.
func (c DuplicateCheck) Apply(v *Validator) { v.CheckDuplicates(c.Subset, c.Threshold) }

// RangeCheck bounds the numeric values of a column.
type RangeCheck struct {
	Column string   `mapstructure:"column"`
	Min    *float64 `mapstructure:"min"`
	Max    *float64 `mapstructure:"max"`
}

// Kind implements Check.
func (RangeCheck) Kind() string { return "range" }

// Apply implements Check.
func (c RangeCheck) Apply(v *Validator) { v.CheckRange(c.Column, c.Min, c.Max) }

// CategoricalCheck restricts a column to an allowed set.
type CategoricalCheck struct {
	Column  string `mapstructure:"column"`
	Allowed []any  `mapstructure:"allowed"`
}

// Kind implements Check.
func (CategoricalCheck) Kind() string { return "categorical" }

// Apply implements Check.
func (c CategoricalCheck) Apply(v *Validator) { v.CheckCategorical(c.Column, c.Allowed) }

package config

// ExpectedColumns is the schema of the transactions batch.
var ExpectedColumns = []string{"transaction_id", "user_id", "amount", "timestamp", "status"}

// DefaultChecks returns the rule set applied when leapdq.yaml has no checks
// section: schema, zero-tolerance nulls and duplicates, non-negative amounts
// and a closed set of statuses.
func DefaultChecks() []map[string]any {
	return []map[string]any{
		{"kind": "schema", "columns": toAny(ExpectedColumns)},
		{"kind": "nulls", "columns": []any{"user_id", "transaction_id", "amount"}, "threshold": 0.0},
		{"kind": "duplicates", "subset": []any{"transaction_id"}, "threshold": 0.0},
		{"kind": "range", "column": "amount", "min": 0.0},
		{"kind": "categorical", "column": "status", "allowed": []any{"COMPLETED", "PENDING", "FAILED"}},
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

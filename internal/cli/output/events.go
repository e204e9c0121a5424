package output

// RunEvent is one JSON line emitted by run --json.
type RunEvent struct {
	Event     string `json:"event"`
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`

	Dataset string `json:"dataset,omitempty"`
	Source  string `json:"source,omitempty"`

	// check_failed
	Check   string `json:"check,omitempty"`
	Message string `json:"message,omitempty"`

	// run_complete
	Status       string `json:"status,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
	Level        string `json:"level,omitempty"`
	Destination  string `json:"destination,omitempty"`
	TotalRecords int    `json:"total_records,omitempty"`
	Passed       int    `json:"passed_checks,omitempty"`
	Failed       int    `json:"failed_checks,omitempty"`
	TotalMS      int64  `json:"total_ms,omitempty"`
	Error        string `json:"error,omitempty"`
}

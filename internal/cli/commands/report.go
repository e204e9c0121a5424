package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/pipeline"
)

// renderResult prints a run result in the renderer's effective mode.
func renderResult(r *output.Renderer, res *pipeline.Result) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeYAML:
		return r.YAML(res)
	case output.ModeMarkdown:
		renderResultMarkdown(r, res)
	default:
		renderResultText(r, res)
	}
	return nil
}

func renderResultText(r *output.Renderer, res *pipeline.Result) {
	styles := r.Styles()
	rep := res.Report

	r.Println("")
	r.Header(1, fmt.Sprintf("Validation Report: %s", rep.DatasetName))
	r.Printf("   Records: %d | Passed: %d | Failed: %d\n", rep.TotalRecords, rep.PassedChecks, rep.FailedChecks)
	r.Println("")

	if len(rep.Failures) == 0 {
		r.Success("All checks passed")
	} else {
		r.Header(2, "Failures")
		for _, f := range rep.Failures {
			r.StatusLine(f.Check, "failed", f.Message)
		}
	}
	r.Println("")

	outcome := styles.Success.Render(string(res.Outcome))
	if rep.HasFailures() {
		outcome = styles.Error.Render(string(res.Outcome))
	}
	r.Printf("Outcome: %s  Level: %s\n", outcome, res.Level)
	if res.Destination != "" {
		r.Muted(fmt.Sprintf("Moved to %s", res.Destination))
	}
	r.Muted(fmt.Sprintf("Run %s completed in %s", res.RunID, res.Duration.Round(time.Millisecond)))
}

func renderResultMarkdown(r *output.Renderer, res *pipeline.Result) {
	rep := res.Report

	r.Println(output.FormatHeader(1, fmt.Sprintf("Validation Report: %s", rep.DatasetName)))
	r.Println("")
	r.Println(output.FormatKeyValue("Run", res.RunID.String()))
	r.Println(output.FormatKeyValue("Total Records", fmt.Sprintf("%d", rep.TotalRecords)))
	r.Println(output.FormatKeyValue("Passed Checks", fmt.Sprintf("%d", rep.PassedChecks)))
	r.Println(output.FormatKeyValue("Failed Checks", fmt.Sprintf("%d", rep.FailedChecks)))
	r.Println(output.FormatKeyValue("Outcome", string(res.Outcome)))
	r.Println(output.FormatKeyValue("Level", string(res.Level)))
	if res.Destination != "" {
		r.Println(output.FormatKeyValue("Destination", res.Destination))
	}

	if len(rep.Failures) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Failures"))
		r.Println("")
		rows := make([][]string, len(rep.Failures))
		for i, f := range rep.Failures {
			rows[i] = []string{f.Check, f.Message}
		}
		r.Table([]string{"Check", "Message"}, rows)
	}
}

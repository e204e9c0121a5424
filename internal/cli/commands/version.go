package commands

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

// VersionInfo is the build and capability summary printed by `leapdq version`.
type VersionInfo struct {
	Version    string   `json:"version"`
	GoVersion  string   `json:"go_version"`
	Platform   string   `json:"platform"`
	Sources    []string `json:"sources"`
	CheckKinds []string `json:"check_kinds"`
}

// CurrentVersionInfo reports the running binary: the registered source
// types and check kinds depend on which packages were linked in.
func CurrentVersionInfo(version string) VersionInfo {
	return VersionInfo{
		Version:    version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Sources:    adapter.ListAdapters(),
		CheckKinds: kindList(),
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version, source types and check kinds",
		Long: `Print the leapdq version with the Go runtime it was built with, and the
source types and check kinds this binary supports. Useful when a
leapdq.yaml written for one build is run by another.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := CurrentVersionInfo(version)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, _ = fmt.Fprintf(out, "leapdq %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
			_, _ = fmt.Fprintf(out, "sources: %s\n", orNone(info.Sources))
			_, _ = fmt.Fprintf(out, "checks:  %s\n", orNone(info.CheckKinds))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/pkg/validate"
)

// NewChecksCommand creates the checks command.
func NewChecksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks [kind]",
		Short: "List available check kinds",
		Long: `List the check kinds that can be used in the checks section of leapdq.yaml,
or show the parameters and an example for one kind.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all kinds
  leapdq checks

  # Show one kind
  leapdq checks range

  # Output as JSON
  leapdq checks -o json`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return kindList(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := NewCommandContext(cmd).Renderer
			if len(args) > 0 {
				return showCheck(r, args[0])
			}
			return listChecks(r)
		},
	}
	return cmd
}

// checkInfo is the machine-readable form of a check kind.
type checkInfo struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Description string   `json:"description" yaml:"description"`
	Params      []string `json:"params" yaml:"params"`
	Example     string   `json:"example" yaml:"example"`
}

func toCheckInfo(def validate.CheckDef) checkInfo {
	return checkInfo{Kind: def.Kind, Description: def.Description, Params: def.Params, Example: def.Example}
}

func listChecks(r *output.Renderer) error {
	defs := validate.Kinds()

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		infos := make([]checkInfo, len(defs))
		for i, def := range defs {
			infos[i] = toCheckInfo(def)
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(infos)
		}
		return r.YAML(infos)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Check Kinds (%d)", len(defs))))
		r.Println("")
	default:
		r.Println("")
		r.Header(1, fmt.Sprintf("Check Kinds (%d)", len(defs)))
		r.Println("")
	}

	rows := make([][]string, len(defs))
	for i, def := range defs {
		rows[i] = []string{def.Kind, strings.Join(def.Params, ", "), def.Description}
	}
	r.Table([]string{"Kind", "Params", "Description"}, rows)
	return nil
}

func showCheck(r *output.Renderer, kind string) error {
	def, ok := validate.Lookup(kind)
	if !ok {
		return &validate.UnknownCheckError{Kind: kind, Available: kindList()}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(toCheckInfo(def))
	case output.ModeYAML:
		return r.YAML(toCheckInfo(def))
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, output.Title(def.Kind)+" Check"))
		r.Println("")
		r.Println(def.Description)
		r.Println("")
		r.Println(output.FormatKeyValue("Params", strings.Join(def.Params, ", ")))
		r.Println("")
		r.Println(output.FormatCodeBlock("yaml", def.Example))
	default:
		styles := r.Styles()
		r.Println("")
		r.Header(1, output.Title(def.Kind)+" Check")
		r.Println(def.Description)
		r.Println("")
		r.Println(styles.Bold.Render("Params: ") + strings.Join(def.Params, ", "))
		r.Println("")
		r.Println(styles.Bold.Render("Example:"))
		for _, line := range strings.Split(def.Example, "\n") {
			r.Println("  " + line)
		}
	}
	return nil
}

func kindList() []string {
	defs := validate.Kinds()
	kinds := make([]string, len(defs))
	for i, def := range defs {
		kinds[i] = def.Kind
	}
	return kinds
}

// Package main provides the entry point for the rigup CLI.
package main

import (
	_ "embed"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/output"
)

//go:embed guide.md
var guideMarkdown string

// newGuideCmd creates the guide command.
func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Show the built-in user guide",
		Long: `Show the built-in user guide.

The guide covers the manifest format, the three managed areas, and how
marker blocks keep hand edits safe. Output is styled on a terminal and
plain markdown when piped.`,
		Args: cobra.NoArgs,
		RunE: runGuide,
	}
}

// runGuide executes the guide command.
func runGuide(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	if printer.IsJSON() {
		return printer.Success(map[string]any{"guide": guideMarkdown})
	}

	printer.Print("%s", renderMarkdown(guideMarkdown, printer.IsTTY()))
	return nil
}

// renderMarkdown renders markdown for the terminal. Styling failures
// fall back to the plain source so the content always shows.
func renderMarkdown(content string, isTTY bool) string {
	if !isTTY {
		return content
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

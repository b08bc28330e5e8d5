// Package main provides the entry point for the rigup CLI.
package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/config"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/output"
)

// initStyleSet holds lipgloss styles for init output.
type initStyleSet struct {
	heading lipgloss.Style
	pass    lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
}

// initStyles returns a TTY-aware style set.
func initStyles(isTTY bool) initStyleSet {
	if !isTTY {
		return initStyleSet{}
	}
	return initStyleSet{
		heading: lipgloss.NewStyle().Bold(true),
		pass:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "10", Dark: "10"}),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "12"}),
	}
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter machine manifest",
		Long: `Write a starter machine.yaml to the rigup config directory.

The starter manifest selects a small package set for Debian- and
Arch-family machines, the aliases and local-bin shell features, and the
Claude Code agent. Edit it to taste, then run 'rigup apply'.

Examples:
  rigup init           # Write the starter manifest
  rigup init --force   # Overwrite an existing manifest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing manifest")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, force bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))
	styles := initStyles(printer.IsTTY())

	path := config.ManifestPath()
	if _, err := os.Stat(path); err == nil && !force {
		return outputAlreadyInitialized(printer, styles, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		werr := output.NewSystemErrorWithCause("cannot create config directory", err)
		printer.Error(werr)
		return werr
	}
	if err := os.WriteFile(path, []byte(manifest.StarterYAML), 0o644); err != nil {
		werr := output.NewSystemErrorWithCause("cannot write manifest", err)
		printer.Error(werr)
		return werr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":   "ok",
			"manifest": path,
		})
	}

	printer.Println()
	printer.Print("%s %s\n", styles.heading.Render("Wrote starter manifest to"), styles.dim.Render(path))
	printer.Println()
	printer.Print("Edit it to taste, then run '%s' to converge the machine.\n", styles.accent.Render("rigup apply"))
	return nil
}

// outputAlreadyInitialized reports an existing manifest without
// touching it.
func outputAlreadyInitialized(printer *output.Printer, styles initStyleSet, path string) error {
	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":              "ok",
			"already_initialized": true,
			"manifest":            path,
		})
	}
	printer.Println()
	printer.Print("%s %s\n", styles.pass.Render("Manifest already exists at"), path)
	printer.Println()
	printer.Print("Edit it, or rerun with '%s' to reset to the starter.\n", styles.accent.Render("rigup init --force"))
	return nil
}

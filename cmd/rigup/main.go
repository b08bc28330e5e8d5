// Package main provides the entry point for the rigup CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/config"
	"github.com/rigup-dev/rigup/internal/execx"
	"github.com/rigup-dev/rigup/internal/logging"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
// Commands read the flag instead of sharing a global, so they stay
// independently testable.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		// Walk up to root to find the persistent flag
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor decides whether styled output goes to this command's writer.
func useColor(cmd *cobra.Command) bool {
	mode := "auto"
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

// cmdEnv resolves what every command operates on: the manifest path, the
// home directory to converge, the probed machine, and the subprocess
// runner for package managers.
type cmdEnv struct {
	manifestPath string
	home         string
	sys          sysinfo.Info
	run          execx.Runner
}

func resolveEnv() (cmdEnv, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return cmdEnv{}, output.NewSystemErrorWithCause("cannot resolve home directory", err)
	}
	return cmdEnv{
		manifestPath: config.ManifestPath(),
		home:         home,
		sys:          sysinfo.Probe(),
		run:          execx.System{},
	}, nil
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the rigup CLI.
func newRootCmd() *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:   "rigup",
		Short: "Personal developer-machine bootstrap",
		Long: `Rigup bootstraps and converges a developer machine from one manifest.

It keeps three areas in line with ~/.config/rigup/machine.yaml:
  - Packages installed through the native manager (apt, pacman, paru)
  - Shell rc features written as managed marker blocks
  - AI agent configs (Claude Code, Codex, OpenCode) plus shared skills

Writes stay inside marker-delimited blocks, so surrounding user content
is never touched and every command is safe to re-run.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If --json flag is set but no subcommand, output JSON error
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'rigup --help' for usage")
				printer.Error(err)
				return err
			}
			// Otherwise show help
			return cmd.Help()
		},
	}

	// Env files carry tokens that should not live in rc files. Variables
	// already set in the environment always win over file values.
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		loadEnvFiles()
		logging.Setup(verbosity)
		return nil
	}

	// Persistent flags available to all subcommands
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Color output: auto, always, never")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")

	// Configure lipgloss for TTY detection
	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins.
//
// Resolution order:
//  1. $CWD/.env.local     (per-directory override, gitignored)
//  2. $CWD/.env           (per-directory)
//  3. ~/.config/rigup/env (global fallback)
func loadEnvFiles() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	if dir := config.Dir(); dir != "" {
		_ = godotenv.Load(filepath.Join(dir, "env"))
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "area", Title: "Area Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	// Core commands: the daily converge loop
	addGroupedCommand(cmd, newInitCmd(), "core")
	addGroupedCommand(cmd, newPlanCmd(), "core")
	addGroupedCommand(cmd, newApplyCmd(), "core")
	addGroupedCommand(cmd, newStatusCmd(), "core")

	// Area commands: one concern at a time
	addGroupedCommand(cmd, newPackagesCmd(), "area")
	addGroupedCommand(cmd, newFeatureCmd(), "area")
	addGroupedCommand(cmd, newAgentCmd(), "area")
	addGroupedCommand(cmd, newSkillCmd(), "area")

	// Admin commands
	addGroupedCommand(cmd, newDoctorCmd(), "admin")
	addGroupedCommand(cmd, newUninstallCmd(), "admin")
	addGroupedCommand(cmd, newGuideCmd(), "admin")
	addGroupedCommand(cmd, newServeCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

// Package main provides the entry point for the rigup CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/output"
)

// Apply step statuses, shared vocabulary with the MCP apply tool.
const (
	stepOK      = "ok"
	stepSkipped = "skipped"
	stepFailed  = "failed"
	stepDryRun  = "dry_run"
)

// applyFlags holds the command-line flags for the apply command.
type applyFlags struct {
	dryRun bool
	only   string
}

// applyStepResult tracks the result of a single converge step.
type applyStepResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// newApplyCmd creates the apply command.
func newApplyCmd() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge the machine onto the manifest",
		Long: `Converge the machine onto the manifest: install missing packages,
write managed shell blocks, and configure selected agents.

Every area is idempotent. Packages already current are skipped, shell
blocks are rewritten only when their content drifted, and agent configs
merge without touching user-owned keys. The run stops at the first
failure so a broken step is never papered over.

Examples:
  rigup apply                   # Converge everything
  rigup apply --dry-run         # Show what would change
  rigup apply --only features   # Converge shell blocks only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().StringVar(&flags.only, "only", "", "Converge a single area: packages, features, or agents")

	return cmd
}

// runApply executes the apply command.
func runApply(cmd *cobra.Command, flags *applyFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	if err := validateArea(flags.only); err != nil {
		printer.Error(err)
		return err
	}

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	man, err := loadManifest(env.manifestPath)
	if err != nil {
		printer.Error(err)
		return err
	}

	if !printer.IsJSON() {
		printer.Println()
		if flags.dryRun {
			printer.Println("Dry run: nothing will be written.")
		} else {
			printer.Println("Converging machine...")
		}
		printer.Println()
	}

	steps, runErr := executeApplySteps(cmd, printer, env, man, flags)
	if runErr != nil {
		printer.Error(runErr)
		return runErr
	}

	changed := 0
	for _, step := range steps {
		if step.Status == stepOK {
			changed++
		}
	}

	if printer.IsJSON() {
		status := "ok"
		if flags.dryRun {
			status = stepDryRun
		}
		return printer.Success(map[string]any{
			"status":  status,
			"changed": changed,
			"steps":   steps,
		})
	}

	printApplySummary(printer, steps, changed, flags.dryRun)
	return nil
}

// validateArea rejects unknown --only values before any work happens.
func validateArea(only string) error {
	switch only {
	case "", "packages", "features", "agents":
		return nil
	default:
		return output.NewUserError("unknown area \"" + only + "\": use packages, features, or agents")
	}
}

// wantArea reports whether the area is selected by --only.
func wantArea(only, area string) bool {
	return only == "" || only == area
}

// printApplySummary prints the closing line for human output.
func printApplySummary(printer *output.Printer, steps []applyStepResult, changed int, dryRun bool) {
	printer.Println()
	switch {
	case len(steps) == 0:
		printer.Println("Nothing selected for this machine.")
	case dryRun && changed == 0 && !anyStatus(steps, stepDryRun):
		printer.Println("Machine is up to date.")
	case dryRun:
		printer.Print("Run 'rigup apply' to converge %d step(s).\n", countStatus(steps, stepDryRun))
	case changed == 0:
		printer.Println("Machine is up to date.")
	default:
		printer.Print("Converged %d step(s).\n", changed)
	}
}

// anyStatus reports whether any step carries the given status.
func anyStatus(steps []applyStepResult, status string) bool {
	return countStatus(steps, status) > 0
}

// countStatus counts steps with the given status.
func countStatus(steps []applyStepResult, status string) int {
	n := 0
	for _, step := range steps {
		if step.Status == status {
			n++
		}
	}
	return n
}

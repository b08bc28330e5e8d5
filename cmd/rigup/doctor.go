// Package main provides the entry point for the rigup CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/output"
)

// checkStatus represents the result of a health check.
type checkStatus string

const (
	checkPass checkStatus = "pass"
	checkWarn checkStatus = "warn"
	checkFail checkStatus = "fail"
)

// checkResult holds the result of a single health check.
type checkResult struct {
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// doctorResult holds all check results organized by category.
type doctorResult struct {
	Version     string         `json:"version"`
	System      []checkResult  `json:"system"`
	Manifest    []checkResult  `json:"manifest"`
	Integration []checkResult  `json:"integration"`
	Summary     *doctorSummary `json:"summary"`
}

// doctorSummary holds the counts of check results.
type doctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// doctorFlags holds the command-line flags for the doctor command.
type doctorFlags struct {
	fix   bool
	quiet bool
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check machine health and suggest fixes",
		Long: `Check machine health and suggest fixes.

Runs a series of health checks across three categories:
  SYSTEM      - Distro detection and config directory
  MANIFEST    - Manifest validity and package manager availability
  INTEGRATION - Managed shell blocks and agent configuration

Each check reports:
  Pass    - Check passed successfully
  Warning - Non-critical issue found
  Fail    - Critical issue that needs attention

Drifted blocks and agent surfaces can be repaired in place with --fix.
Marker conflicts are never auto-fixed; duplicated or unterminated
markers mean hand edits rigup refuses to guess about.

Examples:
  rigup doctor            # Run all health checks
  rigup doctor --fix      # Repair drifted blocks and surfaces
  rigup doctor --quiet    # Only show failures and warnings
  rigup doctor --json     # Output results as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.fix, "fix", false, "Repair drifted blocks and agent surfaces")
	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Only show failures and warnings")

	return cmd
}

// runDoctor executes the doctor command.
func runDoctor(cmd *cobra.Command, flags *doctorFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	result := gatherDoctorChecks(env, flags)

	if printer.IsJSON() {
		return outputDoctorJSON(printer, result)
	}

	outputDoctorHuman(printer, result, flags.quiet)
	return nil
}

// gatherDoctorChecks runs all health checks and returns results.
func gatherDoctorChecks(env cmdEnv, flags *doctorFlags) *doctorResult {
	// A broken manifest is itself a finding; integration checks then
	// cover the full catalog instead of the selection.
	man, manifestChecks := runManifestChecks(env)

	result := &doctorResult{
		Version:     version,
		System:      runSystemChecks(env),
		Manifest:    manifestChecks,
		Integration: runIntegrationChecks(env, man, flags),
		Summary:     &doctorSummary{},
	}

	allChecks := append(append(result.System, result.Manifest...), result.Integration...)
	for _, check := range allChecks {
		switch check.Status {
		case checkPass:
			result.Summary.Passed++
		case checkWarn:
			result.Summary.Warnings++
		case checkFail:
			result.Summary.Failed++
		}
	}

	return result
}

// outputDoctorJSON outputs the doctor result as JSON.
func outputDoctorJSON(printer *output.Printer, result *doctorResult) error {
	data := map[string]any{
		"version":     result.Version,
		"system":      result.System,
		"manifest":    result.Manifest,
		"integration": result.Integration,
		"summary": map[string]any{
			"passed":   result.Summary.Passed,
			"warnings": result.Summary.Warnings,
			"failed":   result.Summary.Failed,
		},
	}
	return printer.WriteJSON(data)
}

// outputDoctorHuman outputs the doctor result in human-readable format.
func outputDoctorHuman(printer *output.Printer, result *doctorResult, quiet bool) {
	printer.Println()
	printer.Print("rigup doctor v%s\n", result.Version)

	printCheckSection(printer, "SYSTEM", result.System, quiet)
	printCheckSection(printer, "MANIFEST", result.Manifest, quiet)
	printCheckSection(printer, "INTEGRATION", result.Integration, quiet)

	printer.Println()
	printer.Print("%s %d passed  %s %d warnings  %s %d failed\n",
		statusIcon(checkPass), result.Summary.Passed,
		statusIcon(checkWarn), result.Summary.Warnings,
		statusIcon(checkFail), result.Summary.Failed,
	)
}

// printCheckSection prints a section of checks.
func printCheckSection(printer *output.Printer, title string, checks []checkResult, quiet bool) {
	// In quiet mode, skip sections with only passing checks
	if quiet {
		hasNonPass := false
		for _, check := range checks {
			if check.Status != checkPass {
				hasNonPass = true
				break
			}
		}
		if !hasNonPass {
			return
		}
	}

	printer.Println()
	printer.Println(title)

	for _, check := range checks {
		if quiet && check.Status == checkPass {
			continue
		}

		printer.Print("  %s  %s %s\n", statusIcon(check.Status), check.Name, check.Message)
		if check.Hint != "" {
			printer.Print("     %s %s\n", hintPrefix(), check.Hint)
		}
	}
}

// statusIcon returns the icon for a check status.
func statusIcon(status checkStatus) string {
	switch status {
	case checkPass:
		return "ok"
	case checkWarn:
		return "!!"
	case checkFail:
		return "XX"
	default:
		return "??"
	}
}

// hintPrefix returns the prefix for hint lines.
func hintPrefix() string {
	return "->"
}

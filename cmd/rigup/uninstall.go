// Package main provides the entry point for the rigup CLI.
package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/config"
	"github.com/rigup-dev/rigup/internal/markblock"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// uninstallResult tracks what uninstall found and what it removed.
type uninstallResult struct {
	ConfigDir, StateDir             string
	FeatureBlocks, AgentFootprints  []string
	FeaturesRemoved, AgentsRemoved  []string
	ConfigDirExists, StateDirExists bool
	ConfigRemoved, StateRemoved     bool
}

// newUninstallCmd creates the uninstall command.
func newUninstallCmd() *cobra.Command {
	var dryRun, yes bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove everything rigup wrote to this machine",
		Long: `Remove everything rigup wrote to this machine: every managed shell
block, every agent instruction block and installed skill, and the rigup
config directory.

Installed packages stay installed, and shell files keep all content
outside the managed markers. Agent settings files keep merged keys;
unmerging user-edited JSON is riskier than a few stale defaults.

Examples:
  rigup uninstall            # Confirm, then remove
  rigup uninstall --dry-run  # Show what would be removed
  rigup uninstall --yes      # Skip the confirmation prompt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, dryRun, yes)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

// runUninstall executes the uninstall command.
func runUninstall(cmd *cobra.Command, dryRun, yes bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	result := gatherUninstallInfo(env)

	if dryRun {
		return outputDryRunUninstall(printer, result)
	}
	if !yes && !printer.IsJSON() && !confirmUninstall(cmd, printer, result) {
		printer.Println("Uninstall cancelled.")
		return nil
	}

	errs := doUninstall(env, result)
	return reportUninstallResult(printer, result, errs)
}

// gatherUninstallInfo scans the whole catalog, not just the manifest
// selection: uninstall removes what rigup ever wrote, even when the
// manifest has since shrunk or gone missing.
func gatherUninstallInfo(env cmdEnv) *uninstallResult {
	result := &uninstallResult{
		ConfigDir: config.Dir(),
		StateDir:  config.StateDir(),
	}

	for _, feat := range shellrc.Features() {
		start, _ := shellrc.Markers(feat.Name)
		if markblock.ContainsFile(feat.Target(env.home), start) {
			result.FeatureBlocks = append(result.FeatureBlocks, feat.Name)
		}
	}

	for _, agent := range agents.All() {
		if agentFootprint(env, agent) {
			result.AgentFootprints = append(result.AgentFootprints, agent.Name())
		}
	}

	if info, err := os.Stat(result.ConfigDir); err == nil && info.IsDir() {
		result.ConfigDirExists = true
	}
	if info, err := os.Stat(result.StateDir); err == nil && info.IsDir() {
		result.StateDirExists = true
	}

	return result
}

// agentFootprint reports whether the agent has any managed config on
// disk. The settings surface is excluded: removal leaves settings
// alone, so they never count as a footprint.
func agentFootprint(env cmdEnv, agent agents.Agent) bool {
	surfaces, err := agent.Check(env.home, agents.SkillNames())
	if err != nil {
		// A conflict still means managed markers exist.
		return true
	}
	for _, sc := range surfaces {
		if sc.Surface == "settings" {
			continue
		}
		if sc.State != agents.StateMissing {
			return true
		}
	}
	return false
}

// hasAnyComponents reports whether anything would be removed.
func hasAnyComponents(result *uninstallResult) bool {
	return len(result.FeatureBlocks) > 0 || len(result.AgentFootprints) > 0 ||
		result.ConfigDirExists || result.StateDirExists
}

// outputDryRunUninstall shows what would be removed without removing it.
func outputDryRunUninstall(printer *output.Printer, result *uninstallResult) error {
	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":            "dry_run",
			"feature_blocks":    result.FeatureBlocks,
			"agent_footprints":  result.AgentFootprints,
			"config_dir_exists": result.ConfigDirExists,
			"state_dir_exists":  result.StateDirExists,
		})
	}

	styles := uninstallStyles(printer.IsTTY())
	printer.Println(styles.warning.Render("Dry run: would remove the following:"))
	printer.Println()
	printComponents(printer, styles, result, "  ")
	if !hasAnyComponents(result) {
		printer.Println(styles.dim.Render("  (No rigup components found)"))
	}
	return nil
}

// printComponents lists everything uninstall found.
func printComponents(printer *output.Printer, styles uninstallStyleSet, result *uninstallResult, indent string) {
	for _, name := range result.FeatureBlocks {
		printer.Println(styles.bullet.Render(indent+"• ") + "Shell block: " + name)
	}
	for _, name := range result.AgentFootprints {
		printer.Println(styles.bullet.Render(indent+"• ") + "Agent config: " + name)
	}
	if result.ConfigDirExists {
		printer.Println(styles.bullet.Render(indent+"• ") + "Config directory: " + result.ConfigDir)
	}
	if result.StateDirExists {
		printer.Println(styles.bullet.Render(indent+"• ") + "State directory: " + result.StateDir)
	}
}

// confirmUninstall prompts before removing anything.
func confirmUninstall(cmd *cobra.Command, printer *output.Printer, result *uninstallResult) bool {
	styles := uninstallStyles(printer.IsTTY())
	printer.Println(styles.warning.Render("Removing rigup from this machine..."))
	printer.Println()
	printer.Println("  Components found:")
	if !hasAnyComponents(result) {
		printer.Println(styles.dim.Render("    (No components found)"))
		return false
	}
	printComponents(printer, styles, result, "    ")
	printer.Println()
	printer.Print("%s", "  ? Remove all components? [y/N] ")

	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// doUninstall removes every found component, collecting errors instead
// of stopping so one broken file cannot strand the rest.
func doUninstall(env cmdEnv, result *uninstallResult) []string {
	var errs []string

	for _, name := range result.FeatureBlocks {
		feat, ok := shellrc.Lookup(name)
		if !ok {
			continue
		}
		if _, err := feat.Remove(env.home); err != nil {
			errs = append(errs, "shell block "+name+": "+err.Error())
			continue
		}
		result.FeaturesRemoved = append(result.FeaturesRemoved, name)
	}

	for _, name := range result.AgentFootprints {
		agent, ok := agents.Get(name)
		if !ok {
			continue
		}
		if err := agent.Remove(env.home); err != nil {
			errs = append(errs, "agent "+name+": "+err.Error())
			continue
		}
		result.AgentsRemoved = append(result.AgentsRemoved, name)
	}

	if result.ConfigDirExists {
		if err := os.RemoveAll(result.ConfigDir); err != nil {
			errs = append(errs, "config dir: "+err.Error())
		} else {
			result.ConfigRemoved = true
		}
	}
	if result.StateDirExists {
		if err := os.RemoveAll(result.StateDir); err != nil {
			errs = append(errs, "state dir: "+err.Error())
		} else {
			result.StateRemoved = true
		}
	}

	return errs
}

// reportUninstallResult reports what was removed.
func reportUninstallResult(printer *output.Printer, result *uninstallResult, errs []string) error {
	if printer.IsJSON() {
		status := "ok"
		if len(errs) > 0 {
			status = "partial"
		}
		data := map[string]any{
			"status":           status,
			"features_removed": result.FeaturesRemoved,
			"agents_removed":   result.AgentsRemoved,
			"config_removed":   result.ConfigRemoved,
			"state_removed":    result.StateRemoved,
		}
		if len(errs) > 0 {
			data["errors"] = errs
			data["recovery_hint"] = "Check permissions and try again."
		}
		return printer.Success(data)
	}

	styles := uninstallStyles(printer.IsTTY())
	printer.Println()
	for _, name := range result.FeaturesRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Shell block removed: " + name)
	}
	for _, name := range result.AgentsRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Agent config removed: " + name)
	}
	if result.ConfigRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Config directory removed")
	}
	if result.StateRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "State directory removed")
	}
	printer.Println()
	if len(errs) > 0 {
		printer.Println(styles.warning.Render("Completed with errors: " + strings.Join(errs, "; ")))
		return nil
	}
	printer.Println(styles.dim.Render("  rigup removed. Shell files keep their unmanaged content."))
	return nil
}

type uninstallStyleSet struct{ warning, success, dim, bullet lipgloss.Style }

func uninstallStyles(isTTY bool) uninstallStyleSet {
	if !isTTY {
		return uninstallStyleSet{}
	}
	return uninstallStyleSet{
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		bullet:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

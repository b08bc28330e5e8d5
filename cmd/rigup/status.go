// Package main provides the entry point for the rigup CLI.
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
)

// featureStatus is one shell feature's drift state.
type featureStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// agentStatus is one agent's detection and per-surface states.
type agentStatus struct {
	Name     string                `json:"name"`
	Detected bool                  `json:"detected"`
	Surfaces []agents.SurfaceCheck `json:"surfaces"`
}

// statusResult holds everything the status command gathered.
type statusResult struct {
	Distro   string
	Family   string
	WSL      bool
	Manager  string
	Manifest string
	Packages []string
	Features []featureStatus
	Agents   []agentStatus
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the machine and every managed area",
		Long: `Show the probed machine, the manifest selection, and the drift
state of every managed shell block and agent surface.

Examples:
  rigup status          # Human-readable overview
  rigup status --json   # Machine-readable state`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

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

	result, err := gatherStatus(env, man)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return outputStatusJSON(printer, result)
	}

	printHumanStatus(printer, result)
	return nil
}

// gatherStatus collects machine facts and per-area drift states.
func gatherStatus(env cmdEnv, man *manifest.Manifest) (*statusResult, error) {
	result := &statusResult{
		Distro:   env.sys.Distro,
		Family:   string(env.sys.Family),
		WSL:      env.sys.WSL,
		Manifest: env.manifestPath,
		Packages: man.PackagesFor(env.sys.Family),
	}

	// Manager detection probes the PATH; skip it when the manifest
	// selects no packages for this family.
	if len(result.Packages) > 0 {
		if mgr, err := pkgmgr.Detect(env.sys.Family, env.run); err == nil {
			result.Manager = mgr.Name()
		}
	}

	for _, feat := range selectedFeatures(man) {
		state, err := feat.Check(env.home)
		if err != nil {
			return nil, err
		}
		result.Features = append(result.Features, featureStatus{Name: feat.Name, State: state})
	}

	skills := man.SelectedSkills(agents.SkillNames())
	for _, agent := range selectedAgents(man) {
		surfaces, err := agent.Check(env.home, skills)
		if err != nil {
			return nil, err
		}
		result.Agents = append(result.Agents, agentStatus{
			Name:     agent.Name(),
			Detected: agent.Detect(),
			Surfaces: surfaces,
		})
	}

	return result, nil
}

// outputStatusJSON outputs the status result as JSON.
func outputStatusJSON(printer *output.Printer, result *statusResult) error {
	data := map[string]any{
		"distro":   result.Distro,
		"family":   result.Family,
		"wsl":      result.WSL,
		"manifest": result.Manifest,
		"packages": result.Packages,
		"features": result.Features,
		"agents":   result.Agents,
	}
	if result.Manager != "" {
		data["package_manager"] = result.Manager
	}
	return printer.Success(data)
}

// printHumanStatus outputs the status in human-readable format.
func printHumanStatus(printer *output.Printer, result *statusResult) {
	printer.Section("Machine")
	printer.KeyValue("Distro", result.Distro)
	printer.KeyValue("Family", result.Family)
	printer.KeyValue("WSL", formatBool(result.WSL))
	if result.Manager != "" {
		printer.KeyValue("Manager", result.Manager)
	}

	printer.Section("Manifest")
	printer.KeyValue("Path", result.Manifest)
	printer.KeyValue("Packages", strconv.Itoa(len(result.Packages))+" selected for this machine")

	if len(result.Features) > 0 {
		printer.Section("Shell features")
		rows := make([][]string, 0, len(result.Features))
		for _, feat := range result.Features {
			rows = append(rows, []string{feat.Name, feat.State})
		}
		printer.Table([]string{"FEATURE", "STATE"}, rows)
	}

	if len(result.Agents) > 0 {
		printer.Section("Agents")
		var rows [][]string
		for _, agent := range result.Agents {
			for _, sc := range agent.Surfaces {
				rows = append(rows, []string{agent.Name, sc.Surface, sc.State})
			}
		}
		printer.Table([]string{"AGENT", "SURFACE", "STATE"}, rows)
		for _, agent := range result.Agents {
			if !agent.Detected {
				printer.Print("  note: %s CLI not on PATH; config applies once it is installed\n", agent.Name)
			}
		}
	}

	printer.Println()
}

// formatBool formats a boolean as yes/no.
func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

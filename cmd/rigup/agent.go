// Package main provides the entry point for the rigup CLI.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/output"
)

// newAgentCmd creates the agent command group.
func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage AI agent configuration surfaces",
		Long: `Manage the configuration surfaces of supported AI agents.

Each agent owns a few surfaces under the home directory: a settings
file merged without touching user keys, a shared instruction block
between managed markers, and, where the agent supports them, installed
skills. Installing converges every surface; removing deletes only what
rigup wrote.

Examples:
  rigup agent list            # Supported agents and detection state
  rigup agent check           # Surface drift for selected agents
  rigup agent install claude  # Converge one agent's surfaces
  rigup agent remove claude   # Delete managed blocks and skills`,
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentCheckCmd())
	cmd.AddCommand(newAgentInstallCmd())
	cmd.AddCommand(newAgentRemoveCmd())

	return cmd
}

// newAgentListCmd creates the agent list subcommand.
func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show supported agents and their detection state",
		Args:  cobra.NoArgs,
		RunE:  runAgentList,
	}
}

// newAgentCheckCmd creates the agent check subcommand.
func newAgentCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [name]",
		Short: "Show surface drift for selected agents or one agent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAgentCheck,
	}
}

// newAgentInstallCmd creates the agent install subcommand.
func newAgentInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <name>",
		Short: "Converge one agent's configuration surfaces",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentInstall,
	}
}

// newAgentRemoveCmd creates the agent remove subcommand.
func newAgentRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete one agent's managed blocks and skills",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentRemove,
	}
}

// runAgentList executes the agent list subcommand.
func runAgentList(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	selected := map[string]bool{}
	if man, err := loadManifest(env.manifestPath); err == nil {
		for _, name := range man.Agents {
			selected[name] = true
		}
	}

	if printer.IsJSON() {
		type agentInfo struct {
			Name        string `json:"name"`
			DisplayName string `json:"display_name"`
			Detected    bool   `json:"detected"`
			Selected    bool   `json:"selected"`
		}
		items := make([]agentInfo, 0, len(agents.All()))
		for _, agent := range agents.All() {
			items = append(items, agentInfo{
				Name:        agent.Name(),
				DisplayName: agent.DisplayName(),
				Detected:    agent.Detect(),
				Selected:    selected[agent.Name()],
			})
		}
		return printer.Success(map[string]any{"agents": items})
	}

	printer.Section("Agents")
	rows := make([][]string, 0, len(agents.All()))
	for _, agent := range agents.All() {
		mark := " "
		if selected[agent.Name()] {
			mark = "*"
		}
		rows = append(rows, []string{mark, agent.Name(), agent.DisplayName(), formatDetected(agent.Detect())})
	}
	printer.Table([]string{"", "AGENT", "DISPLAY NAME", "CLI"}, rows)
	printer.Println()
	printer.Println("* selected in the manifest")
	return nil
}

// runAgentCheck executes the agent check subcommand.
func runAgentCheck(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	sel, err := agentsToCheck(env, args)
	if err != nil {
		printer.Error(err)
		return err
	}

	skills := selectionSkills(env.manifestPath)
	states := make([]agentStatus, 0, len(sel))
	for _, agent := range sel {
		surfaces, err := agent.Check(env.home, skills)
		if err != nil {
			printer.Error(err)
			return err
		}
		states = append(states, agentStatus{
			Name:     agent.Name(),
			Detected: agent.Detect(),
			Surfaces: surfaces,
		})
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{"agents": states})
	}

	printer.Section("Agent surfaces")
	var rows [][]string
	for _, st := range states {
		for _, sc := range st.Surfaces {
			rows = append(rows, []string{st.Name, sc.Surface, sc.State})
		}
	}
	printer.Table([]string{"AGENT", "SURFACE", "STATE"}, rows)
	printer.Println()
	return nil
}

// agentsToCheck resolves the check target: the named agent, or the
// manifest's selection when no name is given.
func agentsToCheck(env cmdEnv, args []string) ([]agents.Agent, error) {
	if len(args) == 1 {
		agent, err := agentByName(args[0])
		if err != nil {
			return nil, err
		}
		return []agents.Agent{agent}, nil
	}
	man, err := loadManifest(env.manifestPath)
	if err != nil {
		return nil, err
	}
	return selectedAgents(man), nil
}

// runAgentInstall executes the agent install subcommand.
func runAgentInstall(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}
	agent, err := agentByName(args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	skills := selectionSkills(env.manifestPath)
	if err := agent.Install(env.home, skills); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "ok",
			"agent":  agent.Name(),
			"skills": skills,
		})
	}
	printer.Print("Configured %s.\n", agent.DisplayName())
	if !agent.Detect() {
		printer.Print("note: %s CLI not on PATH; config applies once it is installed\n", agent.Name())
	}
	return nil
}

// runAgentRemove executes the agent remove subcommand.
func runAgentRemove(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}
	agent, err := agentByName(args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	if err := agent.Remove(env.home); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "ok",
			"agent":  agent.Name(),
		})
	}
	printer.Print("Removed managed %s configuration.\n", agent.DisplayName())
	return nil
}

// agentByName resolves a registered agent or explains what exists.
func agentByName(name string) (agents.Agent, error) {
	agent, ok := agents.Get(name)
	if !ok {
		return nil, output.NewUserError(
			"unknown agent \"" + name + "\": available: " + strings.Join(agents.Names(), ", "))
	}
	return agent, nil
}

// formatDetected formats CLI detection for the agent table.
func formatDetected(detected bool) string {
	if detected {
		return "detected"
	}
	return "not found"
}

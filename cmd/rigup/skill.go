// Package main provides the entry point for the rigup CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/output"
)

// newSkillCmd creates the skill command group.
func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Browse and install bundled agent skills",
		Long: `Browse and install the skill documents bundled with rigup.

Skills are small SKILL.md playbooks an agent loads on demand. The
manifest can narrow the set; an empty skills list selects the whole
catalog. Installs go into the skills directory of an agent that keeps
one, Claude Code by default.

Examples:
  rigup skill list                    # Catalog with descriptions
  rigup skill show commit-hygiene     # Render one skill document
  rigup skill install commit-hygiene  # Install into the agent's skills dir`,
	}

	cmd.AddCommand(newSkillListCmd())
	cmd.AddCommand(newSkillShowCmd())
	cmd.AddCommand(newSkillInstallCmd())

	return cmd
}

// newSkillListCmd creates the skill list subcommand.
func newSkillListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the bundled skill catalog",
		Args:  cobra.NoArgs,
		RunE:  runSkillList,
	}
}

// newSkillShowCmd creates the skill show subcommand.
func newSkillShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Render one skill document",
		Args:  cobra.ExactArgs(1),
		RunE:  runSkillShow,
	}
}

// newSkillInstallCmd creates the skill install subcommand.
func newSkillInstallCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Install one skill into an agent's skills directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillInstall(cmd, args[0], agentName)
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "claude", "Agent whose skills directory receives the install")

	return cmd
}

// runSkillList executes the skill list subcommand.
func runSkillList(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	selected := map[string]bool{}
	for _, name := range selectionSkills(env.manifestPath) {
		selected[name] = true
	}

	skills := agents.Skills()

	if printer.IsJSON() {
		type skillInfo struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Selected    bool   `json:"selected"`
		}
		items := make([]skillInfo, 0, len(skills))
		for _, skill := range skills {
			items = append(items, skillInfo{
				Name:        skill.Name,
				Description: skill.Description,
				Selected:    selected[skill.Name],
			})
		}
		return printer.Success(map[string]any{"skills": items})
	}

	printer.Section("Skills")
	rows := make([][]string, 0, len(skills))
	for _, skill := range skills {
		mark := " "
		if selected[skill.Name] {
			mark = "*"
		}
		rows = append(rows, []string{mark, skill.Name, skill.Description})
	}
	printer.Table([]string{"", "SKILL", "DESCRIPTION"}, rows)
	printer.Println()
	printer.Println("* selected in the manifest (an empty skills list selects all)")
	return nil
}

// runSkillShow executes the skill show subcommand.
func runSkillShow(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	content, err := agents.SkillContent(args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"skill":   args[0],
			"content": content,
		})
	}

	printer.Print("%s", renderMarkdown(content, printer.IsTTY()))
	return nil
}

// runSkillInstall executes the skill install subcommand.
func runSkillInstall(cmd *cobra.Command, skillName, agentName string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}
	agent, err := agentByName(agentName)
	if err != nil {
		printer.Error(err)
		return err
	}
	host, ok := agent.(agents.SkillHost)
	if !ok {
		werr := output.NewUserError("agent \"" + agentName + "\" has no skills directory")
		printer.Error(werr)
		return werr
	}

	if err := agents.InstallSkills(host.SkillsDir(env.home), []string{skillName}); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "ok",
			"skill":  skillName,
			"agent":  agentName,
		})
	}
	printer.Print("Installed %s for %s.\n", skillName, agent.DisplayName())
	return nil
}

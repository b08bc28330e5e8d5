// Package main provides the entry point for the rigup CLI.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// newFeatureCmd creates the feature command group.
func newFeatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Manage shell rc feature blocks",
		Long: `Manage the shell rc feature blocks rigup owns.

Each feature is a named block of shell lines between managed markers in
a dotfile under the home directory. Installing rewrites only the marked
block and leaves everything around it alone; removing deletes the block
and keeps the rest of the file.

Examples:
  rigup feature list             # Catalog with manifest selection
  rigup feature check            # Drift state of selected features
  rigup feature install aliases  # Write one feature block
  rigup feature remove aliases   # Delete one feature block`,
	}

	cmd.AddCommand(newFeatureListCmd())
	cmd.AddCommand(newFeatureCheckCmd())
	cmd.AddCommand(newFeatureInstallCmd())
	cmd.AddCommand(newFeatureRemoveCmd())

	return cmd
}

// newFeatureListCmd creates the feature list subcommand.
func newFeatureListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the feature catalog and manifest selection",
		Args:  cobra.NoArgs,
		RunE:  runFeatureList,
	}
}

// newFeatureCheckCmd creates the feature check subcommand.
func newFeatureCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [name]",
		Short: "Show drift state for selected features or one feature",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFeatureCheck,
	}
}

// newFeatureInstallCmd creates the feature install subcommand.
func newFeatureInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <name>",
		Short: "Write one feature's managed block",
		Args:  cobra.ExactArgs(1),
		RunE:  runFeatureInstall,
	}
}

// newFeatureRemoveCmd creates the feature remove subcommand.
func newFeatureRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete one feature's managed block",
		Args:  cobra.ExactArgs(1),
		RunE:  runFeatureRemove,
	}
}

// runFeatureList executes the feature list subcommand.
func runFeatureList(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	// The catalog lists fine before init; selection is empty then.
	selected := map[string]bool{}
	if man, err := loadManifest(env.manifestPath); err == nil {
		for _, name := range man.Features {
			selected[name] = true
		}
	}

	if printer.IsJSON() {
		type featureInfo struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Target      string `json:"target"`
			Selected    bool   `json:"selected"`
		}
		items := make([]featureInfo, 0, len(shellrc.Features()))
		for _, feat := range shellrc.Features() {
			items = append(items, featureInfo{
				Name:        feat.Name,
				Description: feat.Description,
				Target:      feat.TargetRel,
				Selected:    selected[feat.Name],
			})
		}
		return printer.Success(map[string]any{"features": items})
	}

	printer.Section("Shell features")
	rows := make([][]string, 0, len(shellrc.Features()))
	for _, feat := range shellrc.Features() {
		mark := " "
		if selected[feat.Name] {
			mark = "*"
		}
		rows = append(rows, []string{mark, feat.Name, feat.TargetRel, feat.Description})
	}
	printer.Table([]string{"", "FEATURE", "TARGET", "DESCRIPTION"}, rows)
	printer.Println()
	printer.Println("* selected in the manifest")
	return nil
}

// runFeatureCheck executes the feature check subcommand.
func runFeatureCheck(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}

	feats, err := featuresToCheck(env, args)
	if err != nil {
		printer.Error(err)
		return err
	}

	states := make([]featureStatus, 0, len(feats))
	for _, feat := range feats {
		state, err := feat.Check(env.home)
		if err != nil {
			printer.Error(err)
			return err
		}
		states = append(states, featureStatus{Name: feat.Name, State: state})
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{"features": states})
	}

	printer.Section("Shell features")
	rows := make([][]string, 0, len(states))
	for _, fs := range states {
		rows = append(rows, []string{fs.Name, fs.State})
	}
	printer.Table([]string{"FEATURE", "STATE"}, rows)
	printer.Println()
	return nil
}

// featuresToCheck resolves the check target: the named feature, or the
// manifest's selection when no name is given.
func featuresToCheck(env cmdEnv, args []string) ([]shellrc.Feature, error) {
	if len(args) == 1 {
		feat, err := featureByName(args[0])
		if err != nil {
			return nil, err
		}
		return []shellrc.Feature{feat}, nil
	}
	man, err := loadManifest(env.manifestPath)
	if err != nil {
		return nil, err
	}
	return selectedFeatures(man), nil
}

// runFeatureInstall executes the feature install subcommand.
func runFeatureInstall(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}
	feat, err := featureByName(args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	if err := feat.Install(env.home); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":  "ok",
			"feature": feat.Name,
			"target":  feat.Target(env.home),
		})
	}
	printer.Print("Wrote %s block to %s.\n", feat.Name, feat.Target(env.home))
	return nil
}

// runFeatureRemove executes the feature remove subcommand.
func runFeatureRemove(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, err := resolveEnv()
	if err != nil {
		printer.Error(err)
		return err
	}
	feat, err := featureByName(args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	removed, err := feat.Remove(env.home)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":  "ok",
			"feature": feat.Name,
			"removed": removed,
		})
	}
	if removed {
		printer.Print("Removed %s block from %s.\n", feat.Name, feat.Target(env.home))
	} else {
		printer.Print("No %s block in %s; nothing to remove.\n", feat.Name, feat.Target(env.home))
	}
	return nil
}

// featureByName resolves a catalog feature or explains what exists.
func featureByName(name string) (shellrc.Feature, error) {
	feat, ok := shellrc.Lookup(name)
	if !ok {
		return shellrc.Feature{}, output.NewUserError(
			"unknown feature \"" + name + "\": available: " + strings.Join(shellrc.Names(), ", "))
	}
	return feat, nil
}

// Package main provides the entry point for the rigup CLI.
package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/markblock"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// planItem is one change apply would make. The diff travels as
// prefixed text in JSON and as structured lines for terminal color.
type planItem struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Diff   string `json:"diff,omitempty"`

	diffLines []output.DiffLine
}

// planResult holds everything plan gathered.
type planResult struct {
	Manager  string
	Items    []planItem
	UpToDate bool
}

// newPlanCmd creates the plan command.
func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview what apply would change",
		Long: `Preview what apply would change, without writing anything.

Lists the packages the manager would install, shows a line diff for
each shell block that drifted from its managed content, and names the
agent surfaces that would be rewritten.

Examples:
  rigup plan          # Human-readable preview with diffs
  rigup plan --json   # Machine-readable action list`,
		Args: cobra.NoArgs,
		RunE: runPlan,
	}

	return cmd
}

// runPlan executes the plan command.
func runPlan(cmd *cobra.Command, _ []string) error {
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

	plan, err := gatherPlan(cmd.Context(), env, man)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		data := map[string]any{
			"actions":    plan.Items,
			"up_to_date": plan.UpToDate,
		}
		if plan.Manager != "" {
			data["manager"] = plan.Manager
		}
		return printer.Success(data)
	}

	printHumanPlan(printer, plan)
	return nil
}

// gatherPlan collects pending changes across all three areas.
func gatherPlan(ctx context.Context, env cmdEnv, man *manifest.Manifest) (*planResult, error) {
	plan := &planResult{}

	if pkgs := man.PackagesFor(env.sys.Family); len(pkgs) > 0 {
		mgr, err := pkgmgr.Detect(env.sys.Family, env.run)
		if err != nil {
			return nil, err
		}
		plan.Manager = mgr.Name()
		res := pkgmgr.Plan(ctx, mgr, pkgs)
		for _, pkg := range res.Missing {
			plan.Items = append(plan.Items, planItem{
				Kind:   "package",
				Name:   pkg,
				Reason: "not installed or update available",
			})
		}
	}

	for _, feat := range selectedFeatures(man) {
		item, drifted, err := planFeatureItem(env.home, feat)
		if err != nil {
			return nil, err
		}
		if drifted {
			plan.Items = append(plan.Items, item)
		}
	}

	skills := man.SelectedSkills(agents.SkillNames())
	for _, agent := range selectedAgents(man) {
		checks, err := agent.Check(env.home, skills)
		if err != nil {
			return nil, err
		}
		for _, sc := range checks {
			if sc.State == agents.StateInstalled {
				continue
			}
			plan.Items = append(plan.Items, planItem{
				Kind:   "agent",
				Name:   agent.Name() + "/" + sc.Surface,
				Reason: sc.State,
			})
		}
	}

	plan.UpToDate = len(plan.Items) == 0
	return plan, nil
}

// planFeatureItem diffs one shell block against its managed content.
func planFeatureItem(home string, feat shellrc.Feature) (planItem, bool, error) {
	state, err := feat.Check(home)
	if err != nil {
		return planItem{}, false, err
	}
	if state == shellrc.StateInstalled {
		return planItem{}, false, nil
	}

	start, end := shellrc.Markers(feat.Name)
	current, _, err := markblock.ExtractFile(feat.Target(home), start, end)
	if err != nil {
		return planItem{}, false, err
	}

	lines := output.DiffLines(joinLines(current), joinLines(feat.Block))
	return planItem{
		Kind:      "feature",
		Name:      feat.Name,
		Reason:    state,
		Diff:      output.FormatDiff(lines),
		diffLines: lines,
	}, true, nil
}

// joinLines renders block lines as file content for diffing.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// printHumanPlan prints the plan in human-readable format.
func printHumanPlan(printer *output.Printer, plan *planResult) {
	if plan.UpToDate {
		printer.Println("Machine is up to date.")
		return
	}

	if pkgs := itemsOfKind(plan.Items, "package"); len(pkgs) > 0 {
		printer.Section("Packages (" + plan.Manager + ")")
		for _, item := range pkgs {
			printer.Print("  + %s\n", item.Name)
		}
	}

	if feats := itemsOfKind(plan.Items, "feature"); len(feats) > 0 {
		printer.Section("Shell features")
		for _, item := range feats {
			printer.Print("  ~ %s (%s)\n", item.Name, item.Reason)
			printer.PrintDiff(item.diffLines)
		}
	}

	if agentItems := itemsOfKind(plan.Items, "agent"); len(agentItems) > 0 {
		printer.Section("Agents")
		for _, item := range agentItems {
			printer.Print("  ~ %s (%s)\n", item.Name, item.Reason)
		}
	}

	printer.Println()
	printer.Print("%d change(s) pending. Run 'rigup apply' to converge.\n", len(plan.Items))
}

// itemsOfKind filters plan items by kind.
func itemsOfKind(items []planItem, kind string) []planItem {
	var out []planItem
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

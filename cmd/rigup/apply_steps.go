// Package main provides the entry point for the rigup CLI.
package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// executeApplySteps converges each selected area in order, printing
// steps as they complete and stopping at the first failure.
func executeApplySteps(
	cmd *cobra.Command, printer *output.Printer,
	env cmdEnv, man *manifest.Manifest, flags *applyFlags,
) ([]applyStepResult, error) {
	ctx := cmd.Context()
	var steps []applyStepResult

	record := func(step applyStepResult) {
		steps = append(steps, step)
		if !printer.IsJSON() {
			printApplyStep(printer, step)
		}
	}

	if wantArea(flags.only, "packages") {
		// Manager output would corrupt a JSON envelope.
		stream := io.Discard
		if !printer.IsJSON() {
			stream = cmd.OutOrStdout()
		}
		step, err := applyPackagesStep(ctx, env, man, flags.dryRun, stream)
		if step != nil {
			record(*step)
		}
		if err != nil {
			return steps, err
		}
	}

	if wantArea(flags.only, "features") {
		for _, feat := range selectedFeatures(man) {
			step, err := applyFeatureStep(env.home, feat, flags.dryRun)
			record(step)
			if err != nil {
				return steps, err
			}
		}
	}

	if wantArea(flags.only, "agents") {
		skills := man.SelectedSkills(agents.SkillNames())
		for _, agent := range selectedAgents(man) {
			step, err := applyAgentStep(env.home, agent, skills, flags.dryRun)
			record(step)
			if err != nil {
				return steps, err
			}
		}
	}

	return steps, nil
}

// applyPackagesStep converges the manifest's package set for this
// machine's family. Returns nil when the manifest selects none.
func applyPackagesStep(
	ctx context.Context, env cmdEnv, man *manifest.Manifest,
	dryRun bool, stream io.Writer,
) (*applyStepResult, error) {
	pkgs := man.PackagesFor(env.sys.Family)
	if len(pkgs) == 0 {
		return nil, nil
	}

	mgr, err := pkgmgr.Detect(env.sys.Family, env.run)
	if err != nil {
		return &applyStepResult{Name: "packages", Status: stepFailed, Message: err.Error()}, err
	}
	name := "packages (" + mgr.Name() + ")"

	if dryRun {
		res := pkgmgr.Plan(ctx, mgr, pkgs)
		if len(res.Missing) == 0 {
			return &applyStepResult{Name: name, Status: stepSkipped, Message: "all current"}, nil
		}
		return &applyStepResult{
			Name:    name,
			Status:  stepDryRun,
			Message: "would install " + strings.Join(res.Missing, ", "),
		}, nil
	}

	res, err := pkgmgr.Sync(ctx, mgr, stream, pkgs)
	if err != nil {
		return &applyStepResult{Name: name, Status: stepFailed, Message: err.Error()}, err
	}
	if len(res.Missing) == 0 {
		return &applyStepResult{Name: name, Status: stepSkipped, Message: "all current"}, nil
	}
	return &applyStepResult{
		Name:    name,
		Status:  stepOK,
		Message: "installed " + strings.Join(res.Missing, ", "),
	}, nil
}

// applyFeatureStep converges one managed shell block.
func applyFeatureStep(home string, feat shellrc.Feature, dryRun bool) (applyStepResult, error) {
	name := "feature " + feat.Name

	state, err := feat.Check(home)
	if err != nil {
		return applyStepResult{Name: name, Status: stepFailed, Message: err.Error()}, err
	}
	if state == shellrc.StateInstalled {
		return applyStepResult{Name: name, Status: stepSkipped, Message: "already current"}, nil
	}
	if dryRun {
		return applyStepResult{Name: name, Status: stepDryRun, Message: state + " in " + feat.TargetRel}, nil
	}

	if err := feat.Install(home); err != nil {
		return applyStepResult{Name: name, Status: stepFailed, Message: err.Error()}, err
	}
	return applyStepResult{Name: name, Status: stepOK, Message: "wrote " + feat.TargetRel}, nil
}

// applyAgentStep converges one agent's configuration surfaces.
func applyAgentStep(home string, agent agents.Agent, skills []string, dryRun bool) (applyStepResult, error) {
	name := "agent " + agent.Name()

	checks, err := agent.Check(home, skills)
	if err != nil {
		return applyStepResult{Name: name, Status: stepFailed, Message: err.Error()}, err
	}
	drifted := driftedSurfaces(checks)
	if len(drifted) == 0 {
		return applyStepResult{Name: name, Status: stepSkipped, Message: "already current"}, nil
	}
	if dryRun {
		return applyStepResult{
			Name:    name,
			Status:  stepDryRun,
			Message: "would configure " + strings.Join(drifted, ", "),
		}, nil
	}

	if err := agent.Install(home, skills); err != nil {
		return applyStepResult{Name: name, Status: stepFailed, Message: err.Error()}, err
	}
	return applyStepResult{
		Name:    name,
		Status:  stepOK,
		Message: "configured " + strings.Join(drifted, ", "),
	}, nil
}

// printApplyStep prints one step line in human mode.
func printApplyStep(printer *output.Printer, step applyStepResult) {
	printer.Print("  %s  %s", stepIcon(step.Status), step.Name)
	if step.Message != "" {
		printer.Print("  %s", step.Message)
	}
	printer.Println()
}

// stepIcon returns the icon for a step status.
func stepIcon(status string) string {
	switch status {
	case stepOK:
		return "ok"
	case stepSkipped:
		return "--"
	case stepFailed:
		return "XX"
	case stepDryRun:
		return "~~"
	default:
		return "??"
	}
}

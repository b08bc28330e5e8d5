package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// Apply step statuses, shared vocabulary with the CLI's step reporting.
const (
	stepOK      = "ok"
	stepSkipped = "skipped"
	stepDryRun  = "dry_run"
)

// ApplyInput is the input for the apply tool.
type ApplyInput struct {
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"preview actions without changing anything"`
	Only   string `json:"only,omitempty"    jsonschema:"restrict to one area: packages, features, or agents"`
}

// ApplyStep is one converge step's result.
type ApplyStep struct {
	Name   string `json:"name"             jsonschema:"step name"`
	Status string `json:"status"           jsonschema:"ok, skipped, or dry_run"`
	Detail string `json:"detail,omitempty" jsonschema:"what happened"`
}

// ApplyOutput is the output for the apply tool.
type ApplyOutput struct {
	Steps   []ApplyStep `json:"steps,omitempty" jsonschema:"per-step results"`
	Changed int         `json:"changed"         jsonschema:"number of steps that changed the machine"`
}

func handleApply(deps Deps) mcp.ToolHandlerFor[ApplyInput, ApplyOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ApplyInput) (*mcp.CallToolResult, ApplyOutput, error) {
		if err := validateOnly(input.Only); err != nil {
			return nil, ApplyOutput{}, err
		}

		man, err := loadManifest(deps.ManifestPath)
		if err != nil {
			return nil, ApplyOutput{}, err
		}

		var out ApplyOutput

		if wantArea(input.Only, "packages") {
			step, err := applyPackages(ctx, deps, man, input.DryRun)
			if err != nil {
				return nil, ApplyOutput{}, err
			}
			if step != nil {
				out.Steps = append(out.Steps, *step)
			}
		}

		if wantArea(input.Only, "features") {
			steps, err := applyFeatures(deps, man, input.DryRun)
			if err != nil {
				return nil, ApplyOutput{}, err
			}
			out.Steps = append(out.Steps, steps...)
		}

		if wantArea(input.Only, "agents") {
			steps, err := applyAgents(deps, man, input.DryRun)
			if err != nil {
				return nil, ApplyOutput{}, err
			}
			out.Steps = append(out.Steps, steps...)
		}

		for _, step := range out.Steps {
			if step.Status == stepOK {
				out.Changed++
			}
		}
		return nil, out, nil
	}
}

// validateOnly rejects area filters apply does not know.
func validateOnly(only string) error {
	switch only {
	case "", "packages", "features", "agents":
		return nil
	}
	return output.NewUserError(fmt.Sprintf("unknown area %q: use packages, features, or agents", only))
}

// wantArea reports whether the area filter selects the given area.
func wantArea(only, area string) bool {
	return only == "" || only == area
}

// applyPackages installs the manifest's package set for this family.
// Returns nil when the manifest selects no packages for it.
func applyPackages(ctx context.Context, deps Deps, man *manifest.Manifest, dryRun bool) (*ApplyStep, error) {
	pkgs := man.PackagesFor(deps.Sys.Family)
	if len(pkgs) == 0 {
		return nil, nil
	}

	mgr, err := pkgmgr.Detect(deps.Sys.Family, deps.Run)
	if err != nil {
		return nil, err
	}
	step := &ApplyStep{Name: "packages (" + mgr.Name() + ")"}

	if dryRun {
		res := pkgmgr.Plan(ctx, mgr, pkgs)
		if len(res.Missing) == 0 {
			step.Status = stepSkipped
			step.Detail = fmt.Sprintf("%d packages current", len(res.Current))
		} else {
			step.Status = stepDryRun
			step.Detail = "would install " + strings.Join(res.Missing, ", ")
		}
		return step, nil
	}

	res, err := pkgmgr.Sync(ctx, mgr, io.Discard, pkgs)
	if err != nil {
		return nil, err
	}
	if len(res.Missing) == 0 {
		step.Status = stepSkipped
		step.Detail = fmt.Sprintf("%d packages current", len(res.Current))
	} else {
		step.Status = stepOK
		step.Detail = "installed " + strings.Join(res.Missing, ", ")
	}
	return step, nil
}

// applyFeatures converges each selected shell feature block.
func applyFeatures(deps Deps, man *manifest.Manifest, dryRun bool) ([]ApplyStep, error) {
	var steps []ApplyStep
	for _, name := range man.Features {
		feat, ok := shellrc.Lookup(name)
		if !ok {
			continue
		}
		state, err := feat.Check(deps.Home)
		if err != nil {
			return nil, err
		}

		step := ApplyStep{Name: "feature " + name}
		switch {
		case state == shellrc.StateInstalled:
			step.Status = stepSkipped
			step.Detail = feat.TargetRel
		case dryRun:
			step.Status = stepDryRun
			step.Detail = state + " in " + feat.TargetRel
		default:
			if err := feat.Install(deps.Home); err != nil {
				return nil, err
			}
			step.Status = stepOK
			step.Detail = "wrote " + feat.TargetRel
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// applyAgents converges each selected agent's surfaces, skills included.
func applyAgents(deps Deps, man *manifest.Manifest, dryRun bool) ([]ApplyStep, error) {
	skills := man.SelectedSkills(agents.SkillNames())
	var steps []ApplyStep
	for _, name := range man.Agents {
		agent, ok := agents.Get(name)
		if !ok {
			continue
		}
		surfaces, err := agent.Check(deps.Home, skills)
		if err != nil {
			return nil, err
		}
		drifted := driftedSurfaces(surfaces)

		step := ApplyStep{Name: "agent " + name}
		switch {
		case len(drifted) == 0:
			step.Status = stepSkipped
			step.Detail = fmt.Sprintf("%d surfaces current", len(surfaces))
		case dryRun:
			step.Status = stepDryRun
			step.Detail = "would configure " + strings.Join(drifted, ", ")
		default:
			if err := agent.Install(deps.Home, skills); err != nil {
				return nil, err
			}
			step.Status = stepOK
			step.Detail = "configured " + strings.Join(drifted, ", ")
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// driftedSurfaces lists surfaces that are not in the installed state.
func driftedSurfaces(surfaces []agents.SurfaceCheck) []string {
	var drifted []string
	for _, sc := range surfaces {
		if sc.State != agents.StateInstalled {
			drifted = append(drifted, sc.Surface)
		}
	}
	return drifted
}

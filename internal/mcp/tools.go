package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/markblock"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// --- Shared helpers ---

// catalog lists everything rigup can manage, for manifest validation.
func catalog() manifest.Catalog {
	return manifest.Catalog{
		Features: shellrc.Names(),
		Agents:   agents.Names(),
		Skills:   agents.SkillNames(),
	}
}

// loadManifest reads and validates the manifest at path.
func loadManifest(path string) (*manifest.Manifest, error) {
	man, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := man.Validate(catalog()); err != nil {
		return nil, err
	}
	return man, nil
}

// joinLines renders block lines as newline-terminated text, empty for none.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// --- machine_status tool ---

// StatusInput is the input for the machine_status tool (no parameters needed).
type StatusInput struct{}

// FeatureState is one shell feature's drift state.
type FeatureState struct {
	Name  string `json:"name"  jsonschema:"feature name"`
	State string `json:"state" jsonschema:"installed, outdated, or missing"`
}

// AgentState is one agent's detection and per-surface drift state.
type AgentState struct {
	Name     string                `json:"name"     jsonschema:"agent name"`
	Detected bool                  `json:"detected" jsonschema:"whether the agent CLI is on PATH"`
	Surfaces []agents.SurfaceCheck `json:"surfaces" jsonschema:"per-surface state"`
}

// StatusOutput is the output for the machine_status tool.
type StatusOutput struct {
	Distro         string         `json:"distro"                    jsonschema:"distro ID from os-release"`
	Family         string         `json:"family"                    jsonschema:"distro family: debian, arch, or unknown"`
	WSL            bool           `json:"wsl"                       jsonschema:"whether this machine runs under WSL"`
	PackageManager string         `json:"package_manager,omitempty" jsonschema:"detected package manager"`
	Manifest       string         `json:"manifest"                  jsonschema:"manifest path"`
	Packages       []string       `json:"packages,omitempty"        jsonschema:"packages selected for this machine's family"`
	Features       []FeatureState `json:"features,omitempty"        jsonschema:"selected shell features and their states"`
	Agents         []AgentState   `json:"agents,omitempty"          jsonschema:"selected agents and their surface states"`
}

func handleStatus(deps Deps) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		man, err := loadManifest(deps.ManifestPath)
		if err != nil {
			return nil, StatusOutput{}, err
		}

		out := StatusOutput{
			Distro:   deps.Sys.Distro,
			Family:   string(deps.Sys.Family),
			WSL:      deps.Sys.WSL,
			Manifest: deps.ManifestPath,
			Packages: man.PackagesFor(deps.Sys.Family),
		}

		// Manager detection probes the PATH; skip it when the manifest
		// selects no packages for this family.
		if len(out.Packages) > 0 {
			if mgr, err := pkgmgr.Detect(deps.Sys.Family, deps.Run); err == nil {
				out.PackageManager = mgr.Name()
			}
		}

		for _, name := range man.Features {
			feat, ok := shellrc.Lookup(name)
			if !ok {
				continue
			}
			state, err := feat.Check(deps.Home)
			if err != nil {
				return nil, StatusOutput{}, err
			}
			out.Features = append(out.Features, FeatureState{Name: name, State: state})
		}

		skills := man.SelectedSkills(agents.SkillNames())
		for _, name := range man.Agents {
			agent, ok := agents.Get(name)
			if !ok {
				continue
			}
			surfaces, err := agent.Check(deps.Home, skills)
			if err != nil {
				return nil, StatusOutput{}, err
			}
			out.Agents = append(out.Agents, AgentState{
				Name:     name,
				Detected: agent.Detect(),
				Surfaces: surfaces,
			})
		}

		return nil, out, nil
	}
}

// --- plan tool ---

// PlanInput is the input for the plan tool (no parameters needed).
type PlanInput struct{}

// PlanAction is one change apply would make.
type PlanAction struct {
	Kind   string `json:"kind"           jsonschema:"package, feature, or agent"`
	Name   string `json:"name"           jsonschema:"what would change"`
	Reason string `json:"reason"         jsonschema:"why it would change"`
	Diff   string `json:"diff,omitempty" jsonschema:"line diff of the managed block, when applicable"`
}

// PlanOutput is the output for the plan tool.
type PlanOutput struct {
	Manager  string       `json:"manager,omitempty" jsonschema:"package manager the install batch would use"`
	Actions  []PlanAction `json:"actions,omitempty" jsonschema:"changes apply would make"`
	UpToDate bool         `json:"up_to_date"        jsonschema:"true when nothing would change"`
}

func handlePlan(deps Deps) mcp.ToolHandlerFor[PlanInput, PlanOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ PlanInput) (*mcp.CallToolResult, PlanOutput, error) {
		man, err := loadManifest(deps.ManifestPath)
		if err != nil {
			return nil, PlanOutput{}, err
		}

		var out PlanOutput

		if pkgs := man.PackagesFor(deps.Sys.Family); len(pkgs) > 0 {
			mgr, err := pkgmgr.Detect(deps.Sys.Family, deps.Run)
			if err != nil {
				return nil, PlanOutput{}, err
			}
			out.Manager = mgr.Name()
			res := pkgmgr.Plan(ctx, mgr, pkgs)
			for _, pkg := range res.Missing {
				out.Actions = append(out.Actions, PlanAction{
					Kind:   "package",
					Name:   pkg,
					Reason: "not installed or update available",
				})
			}
		}

		featActions, err := planFeatures(man.Features, deps.Home)
		if err != nil {
			return nil, PlanOutput{}, err
		}
		out.Actions = append(out.Actions, featActions...)

		agentActions, err := planAgents(man, deps.Home)
		if err != nil {
			return nil, PlanOutput{}, err
		}
		out.Actions = append(out.Actions, agentActions...)

		out.UpToDate = len(out.Actions) == 0
		return nil, out, nil
	}
}

// planFeatures reports drifted shell features with a line diff of the
// managed block.
func planFeatures(selected []string, home string) ([]PlanAction, error) {
	var actions []PlanAction
	for _, name := range selected {
		feat, ok := shellrc.Lookup(name)
		if !ok {
			continue
		}
		state, err := feat.Check(home)
		if err != nil {
			return nil, err
		}
		if state == shellrc.StateInstalled {
			continue
		}

		start, end := shellrc.Markers(feat.Name)
		current, _, err := markblock.ExtractFile(feat.Target(home), start, end)
		if err != nil {
			return nil, err
		}
		diff := output.DiffLines(joinLines(current), joinLines(feat.Block))
		actions = append(actions, PlanAction{
			Kind:   "feature",
			Name:   name,
			Reason: state,
			Diff:   output.FormatDiff(diff),
		})
	}
	return actions, nil
}

// planAgents reports drifted agent surfaces.
func planAgents(man *manifest.Manifest, home string) ([]PlanAction, error) {
	skills := man.SelectedSkills(agents.SkillNames())
	var actions []PlanAction
	for _, name := range man.Agents {
		agent, ok := agents.Get(name)
		if !ok {
			continue
		}
		surfaces, err := agent.Check(home, skills)
		if err != nil {
			return nil, err
		}
		for _, sc := range surfaces {
			if sc.State == agents.StateInstalled {
				continue
			}
			actions = append(actions, PlanAction{
				Kind:   "agent",
				Name:   name + "/" + sc.Surface,
				Reason: sc.State,
			})
		}
	}
	return actions, nil
}

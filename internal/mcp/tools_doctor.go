package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// Doctor check statuses.
const (
	checkPass = "pass"
	checkWarn = "warn"
	checkFail = "fail"
)

// DoctorInput is the input for the doctor tool (no parameters needed).
type DoctorInput struct{}

// DoctorCheck is one health check result.
type DoctorCheck struct {
	Name    string `json:"name"           jsonschema:"check name"`
	Status  string `json:"status"         jsonschema:"pass, warn, or fail"`
	Message string `json:"message"        jsonschema:"what the check found"`
	Hint    string `json:"hint,omitempty" jsonschema:"how to fix a failing check"`
}

// DoctorOutput is the output for the doctor tool.
type DoctorOutput struct {
	Checks  []DoctorCheck `json:"checks"  jsonschema:"all check results"`
	Healthy bool          `json:"healthy" jsonschema:"true when no check failed"`
}

func handleDoctor(deps Deps) mcp.ToolHandlerFor[DoctorInput, DoctorOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ DoctorInput) (*mcp.CallToolResult, DoctorOutput, error) {
		var out DoctorOutput

		// A broken manifest is itself a finding; the remaining checks
		// then run over the full catalog instead of the selection.
		man, err := loadManifest(deps.ManifestPath)
		if err != nil {
			out.Checks = append(out.Checks, DoctorCheck{
				Name:    "manifest",
				Status:  checkFail,
				Message: err.Error(),
			})
		} else {
			out.Checks = append(out.Checks, DoctorCheck{
				Name:    "manifest",
				Status:  checkPass,
				Message: deps.ManifestPath,
			})
		}

		out.Checks = append(out.Checks, distroCheck(deps.Sys))

		if man != nil {
			if pkgs := man.PackagesFor(deps.Sys.Family); len(pkgs) > 0 {
				out.Checks = append(out.Checks, managerCheck(deps))
			}
		}

		features := shellrc.Features()
		if man != nil {
			features = selectedFeatures(man.Features)
		}
		out.Checks = append(out.Checks, blockChecks(features, deps.Home)...)

		agentList := agents.All()
		skills := agents.SkillNames()
		if man != nil {
			agentList = selectedAgents(man.Agents)
			skills = man.SelectedSkills(agents.SkillNames())
		}
		out.Checks = append(out.Checks, agentChecks(agentList, deps.Home, skills)...)

		out.Healthy = true
		for _, c := range out.Checks {
			if c.Status == checkFail {
				out.Healthy = false
				break
			}
		}
		return nil, out, nil
	}
}

// distroCheck reports whether package sync is possible on this machine.
func distroCheck(sys sysinfo.Info) DoctorCheck {
	if sys.Family == sysinfo.FamilyUnknown {
		msg := "unrecognized distro"
		if sys.Distro != "" {
			msg = "unrecognized distro " + sys.Distro
		}
		return DoctorCheck{
			Name:    "distro",
			Status:  checkWarn,
			Message: msg,
			Hint:    "package sync needs a Debian- or Arch-family system; features and agents still work",
		}
	}

	msg := string(sys.Family) + " family"
	if sys.Distro != "" {
		msg = sys.Distro + " (" + msg + ")"
	}
	if sys.WSL {
		msg += ", WSL"
	}
	return DoctorCheck{Name: "distro", Status: checkPass, Message: msg}
}

// managerCheck verifies a package manager binary is on the PATH.
func managerCheck(deps Deps) DoctorCheck {
	mgr, err := pkgmgr.Detect(deps.Sys.Family, deps.Run)
	if err != nil {
		return DoctorCheck{
			Name:    "package manager",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "install a supported package manager or drop the packages section from the manifest",
		}
	}
	return DoctorCheck{Name: "package manager", Status: checkPass, Message: mgr.Name()}
}

// blockChecks scans each feature's rc file for broken or duplicated
// marker blocks.
func blockChecks(features []shellrc.Feature, home string) []DoctorCheck {
	var checks []DoctorCheck
	for _, feat := range features {
		if _, err := feat.Check(home); err != nil {
			checks = append(checks, DoctorCheck{
				Name:    "shell block " + feat.Name,
				Status:  checkFail,
				Message: err.Error(),
				Hint:    "repair the managed markers in " + feat.Target(home) + " by hand, then rerun apply",
			})
		}
	}
	if len(checks) == 0 {
		checks = append(checks, DoctorCheck{
			Name:    "shell blocks",
			Status:  checkPass,
			Message: "no marker conflicts",
		})
	}
	return checks
}

// agentChecks verifies each agent's surfaces are readable.
func agentChecks(list []agents.Agent, home string, skills []string) []DoctorCheck {
	var checks []DoctorCheck
	for _, agent := range list {
		if _, err := agent.Check(home, skills); err != nil {
			checks = append(checks, DoctorCheck{
				Name:    "agent " + agent.Name(),
				Status:  checkFail,
				Message: err.Error(),
				Hint:    "repair the named file by hand, then rerun apply",
			})
		}
	}
	if len(checks) == 0 {
		checks = append(checks, DoctorCheck{
			Name:    "agent configs",
			Status:  checkPass,
			Message: "all surfaces readable",
		})
	}
	return checks
}

// selectedFeatures resolves manifest feature names to catalog entries.
func selectedFeatures(names []string) []shellrc.Feature {
	var feats []shellrc.Feature
	for _, name := range names {
		if feat, ok := shellrc.Lookup(name); ok {
			feats = append(feats, feat)
		}
	}
	return feats
}

// selectedAgents resolves manifest agent names to registry entries.
func selectedAgents(names []string) []agents.Agent {
	var list []agents.Agent
	for _, name := range names {
		if agent, ok := agents.Get(name); ok {
			list = append(list, agent)
		}
	}
	return list
}

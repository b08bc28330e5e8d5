// Package main provides the entry point for the rigup CLI.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/config"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
	"github.com/rigup-dev/rigup/internal/shellrc"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// runSystemChecks performs machine-level checks.
func runSystemChecks(env cmdEnv) []checkResult {
	checks := make([]checkResult, 0, 2)
	checks = append(checks, checkDistro(env.sys))
	checks = append(checks, checkConfigDir())
	return checks
}

// checkDistro checks whether the probed distro maps to a known family.
func checkDistro(sys sysinfo.Info) checkResult {
	if sys.Family == sysinfo.FamilyUnknown {
		msg := "unrecognized distro \"" + sys.Distro + "\""
		if sys.Distro == "" {
			msg = "could not read /etc/os-release"
		}
		return checkResult{
			Name:    "Distro",
			Status:  checkWarn,
			Message: msg,
			Hint:    "Package sync needs a Debian- or Arch-family system; features and agents still work",
		}
	}

	msg := sys.Distro + " (" + string(sys.Family) + " family)"
	if sys.WSL {
		msg += ", WSL"
	}
	return checkResult{Name: "Distro", Status: checkPass, Message: msg}
}

// checkConfigDir checks if the rigup config directory exists.
func checkConfigDir() checkResult {
	dir := config.Dir()
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return checkResult{Name: "Config Directory", Status: checkPass, Message: dir}
	}
	return checkResult{
		Name:    "Config Directory",
		Status:  checkWarn,
		Message: dir + " not created yet",
		Hint:    "Run 'rigup init' to create it",
	}
}

// runManifestChecks validates the manifest and, when it selects
// packages for this family, the package manager behind them. The
// loaded manifest is returned for the integration checks.
func runManifestChecks(env cmdEnv) (*manifest.Manifest, []checkResult) {
	man, err := loadManifest(env.manifestPath)
	if err != nil {
		return nil, []checkResult{{
			Name:    "Manifest",
			Status:  checkFail,
			Message: err.Error(),
		}}
	}

	checks := make([]checkResult, 0, 3)
	checks = append(checks, checkResult{
		Name:    "Manifest",
		Status:  checkPass,
		Message: "valid at " + env.manifestPath,
	})

	pkgs := man.PackagesFor(env.sys.Family)
	checks = append(checks, checkResult{
		Name:   "Selection",
		Status: checkPass,
		Message: strconv.Itoa(len(pkgs)) + " package(s), " +
			strconv.Itoa(len(man.Features)) + " feature(s), " +
			strconv.Itoa(len(man.Agents)) + " agent(s)",
	})

	if len(pkgs) > 0 {
		checks = append(checks, checkManager(env))
	}

	return man, checks
}

// checkManager checks that a package manager serves this family.
func checkManager(env cmdEnv) checkResult {
	mgr, err := pkgmgr.Detect(env.sys.Family, env.run)
	if err != nil {
		return checkResult{
			Name:    "Package Manager",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Install the family's package manager or drop packages from the manifest",
		}
	}
	return checkResult{Name: "Package Manager", Status: checkPass, Message: mgr.Name()}
}

// runIntegrationChecks inspects every managed block and agent surface.
// Without a loadable manifest the full catalog is checked instead.
func runIntegrationChecks(env cmdEnv, man *manifest.Manifest, flags *doctorFlags) []checkResult {
	feats := shellrc.Features()
	sel := agents.All()
	skills := agents.SkillNames()
	if man != nil {
		feats = selectedFeatures(man)
		sel = selectedAgents(man)
		skills = man.SelectedSkills(agents.SkillNames())
	}

	checks := make([]checkResult, 0, len(feats)+2*len(sel))
	for _, feat := range feats {
		checks = append(checks, checkFeatureBlock(env, feat, flags.fix))
	}
	for _, agent := range sel {
		checks = append(checks, checkAgentConfig(env, agent, skills, flags.fix))
		checks = append(checks, checkAgentCLI(agent))
	}
	return checks
}

// checkFeatureBlock checks one managed shell block. Drift is repaired
// under --fix; marker conflicts never are.
func checkFeatureBlock(env cmdEnv, feat shellrc.Feature, fix bool) checkResult {
	name := "Shell Block " + feat.Name

	state, err := feat.Check(env.home)
	if err != nil {
		return checkResult{
			Name:    name,
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Repair the managed markers in " + feat.TargetRel + " by hand, then rerun apply",
		}
	}
	if state == shellrc.StateInstalled {
		return checkResult{Name: name, Status: checkPass, Message: "managed block current"}
	}

	if fix {
		if err := feat.Install(env.home); err == nil {
			return checkResult{Name: name, Status: checkPass, Message: "managed block rewritten (auto-fixed)"}
		}
	}

	return checkResult{
		Name:    name,
		Status:  checkWarn,
		Message: "managed block " + state,
		Hint:    "Run 'rigup apply' or 'rigup doctor --fix'",
	}
}

// checkAgentConfig checks one agent's surfaces, repairing drift under
// --fix.
func checkAgentConfig(env cmdEnv, agent agents.Agent, skills []string, fix bool) checkResult {
	name := "Agent " + agent.Name()

	surfaces, err := agent.Check(env.home, skills)
	if err != nil {
		return checkResult{
			Name:    name,
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Repair the managed instruction markers by hand, then rerun apply",
		}
	}
	drifted := driftedSurfaces(surfaces)
	if len(drifted) == 0 {
		return checkResult{Name: name, Status: checkPass, Message: "all surfaces current"}
	}

	if fix {
		if err := agent.Install(env.home, skills); err == nil {
			return checkResult{Name: name, Status: checkPass, Message: "surfaces rewritten (auto-fixed)"}
		}
	}

	return checkResult{
		Name:    name,
		Status:  checkWarn,
		Message: strings.Join(drifted, ", ") + " drifted",
		Hint:    "Run 'rigup apply' or 'rigup doctor --fix'",
	}
}

// checkAgentCLI checks whether the agent's own CLI is installed.
func checkAgentCLI(agent agents.Agent) checkResult {
	name := agent.DisplayName() + " CLI"
	if agent.Detect() {
		return checkResult{Name: name, Status: checkPass, Message: "on PATH"}
	}
	return checkResult{
		Name:    name,
		Status:  checkWarn,
		Message: "not on PATH",
		Hint:    "Config still applies; install the CLI to use it",
	}
}

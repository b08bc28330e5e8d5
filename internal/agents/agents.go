// Package agents manages AI assistant configuration surfaces.
//
// Each agent owns a set of surfaces: a settings file (JSON or TOML), an
// instruction document carrying the shared rigup block, and for agents
// that support them, installed skills. Install converges every surface,
// Check reports per-surface drift, Remove deletes managed blocks and
// managed skills and nothing else.
package agents

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rigup-dev/rigup/internal/markblock"
	"github.com/rigup-dev/rigup/internal/output"
)

// Surface states reported by Check.
const (
	StateInstalled = "installed"
	StateOutdated  = "outdated"
	StateMissing   = "missing"
)

// Instruction block markers. HTML comments render invisibly in the
// markdown documents agents read.
const (
	InstructionStart = "<!-- rigup:instructions:start -->"
	InstructionEnd   = "<!-- rigup:instructions:end -->"
)

// SharedInstructions is the working-agreement text installed into every
// agent's instruction document. It is a pure constant: renderers receive
// it explicitly and nothing mutates it at runtime.
const SharedInstructions = `## Working agreements

- Prefer small, reviewable changes; one concern per commit.
- Run the project's linters and tests before declaring work done.
- Never commit secrets, tokens, or machine-specific paths.
- Shell rc files are edited only inside managed marker blocks.
- Ask before destructive operations such as force pushes or history rewrites.`

// Agent is one AI assistant whose configuration rigup manages.
type Agent interface {
	// Name is the short identifier used in CLI commands and manifests.
	Name() string

	// DisplayName is the human-readable name.
	DisplayName() string

	// Detect reports whether the agent's own CLI is on PATH. Config
	// installs proceed either way; the config is what makes a later
	// CLI install pick everything up.
	Detect() bool

	// Install converges every surface under the given home directory.
	// skillNames selects skills for agents that support them.
	Install(home string, skillNames []string) error

	// Remove deletes managed instruction blocks and managed skills.
	// Settings files keep their non-block content.
	Remove(home string) error

	// Check reports per-surface drift without writing anything.
	// skillNames scopes the skill surfaces for agents that install them.
	Check(home string, skillNames []string) ([]SurfaceCheck, error)
}

// SkillHost is implemented by agents that keep a per-skill directory
// on disk. Agents without one carry no skill surfaces.
type SkillHost interface {
	SkillsDir(home string) string
}

// SurfaceCheck is one surface's drift report.
type SurfaceCheck struct {
	Surface string `json:"surface"`
	Path    string `json:"path"`
	State   string `json:"state"`
	Detail  string `json:"detail,omitempty"`
}

// registry holds all known agents, keyed by name.
var registry = map[string]Agent{}

// Register adds an agent implementation. Called from init in each
// agent file.
func Register(a Agent) {
	registry[a.Name()] = a
}

// Get returns a registered agent by name.
func Get(name string) (Agent, bool) {
	a, ok := registry[name]
	return a, ok
}

// All returns the registered agents in a stable display order.
func All() []Agent {
	order := []string{"claude", "codex", "opencode"}
	var result []Agent
	for _, name := range order {
		if a, ok := registry[name]; ok {
			result = append(result, a)
		}
	}
	for name, a := range registry {
		if !slices.Contains(order, name) {
			result = append(result, a)
		}
	}
	return result
}

// Names returns the registered agent names in display order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.Name()
	}
	return names
}

// InstructionLines renders the shared instruction text as block lines.
func InstructionLines() []string {
	return strings.Split(SharedInstructions, "\n")
}

// installInstructions writes the shared instruction block into the
// document at path, creating parent directories as needed.
func installInstructions(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return output.NewSystemErrorWithCause("cannot create "+filepath.Dir(path), err)
	}
	return markblock.Install(path, InstructionStart, InstructionEnd, InstructionLines())
}

// removeInstructions deletes the shared instruction block from path.
func removeInstructions(path string) (bool, error) {
	return markblock.Remove(path, InstructionStart, InstructionEnd)
}

// checkInstructions reports drift of the instruction block at path.
func checkInstructions(surface, path string) (SurfaceCheck, error) {
	body, ok, err := markblock.ExtractFile(path, InstructionStart, InstructionEnd)
	if err != nil {
		return SurfaceCheck{}, err
	}
	check := SurfaceCheck{Surface: surface, Path: path}
	switch {
	case !ok:
		check.State = StateMissing
	case !slices.Equal(body, InstructionLines()):
		check.State = StateOutdated
	default:
		check.State = StateInstalled
	}
	return check, nil
}

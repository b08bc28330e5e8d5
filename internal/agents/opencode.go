package agents

import (
	"path/filepath"

	"github.com/rigup-dev/rigup/internal/execx"
)

// Opencode manages the opencode configuration surfaces: opencode.json and
// the AGENTS.md instruction document.
type Opencode struct{}

func init() {
	Register(&Opencode{})
}

func (o *Opencode) Name() string        { return "opencode" }
func (o *Opencode) DisplayName() string { return "opencode" }

func (o *Opencode) Detect() bool {
	return execx.Available("opencode")
}

func (o *Opencode) configPath(home string) string {
	return filepath.Join(home, ".config", "opencode", "opencode.json")
}

func (o *Opencode) instructionsPath(home string) string {
	return filepath.Join(home, ".config", "opencode", "AGENTS.md")
}

// opencodeConfig is the managed slice of opencode.json. The instructions
// list points opencode at the managed AGENTS.md next to it.
func opencodeConfig() map[string]any {
	return map[string]any{
		"$schema":    "https://opencode.ai/config.json",
		"autoupdate": false,
		"instructions": []any{
			"AGENTS.md",
		},
	}
}

// Install converges opencode.json and the instruction block.
func (o *Opencode) Install(home string, _ []string) error {
	if _, err := mergeJSONFile(o.configPath(home), opencodeConfig()); err != nil {
		return err
	}
	return installInstructions(o.instructionsPath(home))
}

// Remove deletes the instruction block. opencode.json keeps its content,
// matching the settings policy of the other agents.
func (o *Opencode) Remove(home string) error {
	_, err := removeInstructions(o.instructionsPath(home))
	return err
}

// Check reports drift per surface.
func (o *Opencode) Check(home string, _ []string) ([]SurfaceCheck, error) {
	configState, err := jsonFileSatisfies(o.configPath(home), opencodeConfig())
	if err != nil {
		return nil, err
	}
	checks := []SurfaceCheck{{
		Surface: "config",
		Path:    o.configPath(home),
		State:   configState,
	}}

	instr, err := checkInstructions("instructions", o.instructionsPath(home))
	if err != nil {
		return nil, err
	}
	return append(checks, instr), nil
}

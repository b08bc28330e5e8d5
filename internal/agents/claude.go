package agents

import (
	"path/filepath"

	"github.com/rigup-dev/rigup/internal/execx"
)

// Claude manages the Claude Code configuration surfaces: settings.json,
// the CLAUDE.md instruction document, and installed skills.
type Claude struct{}

func init() {
	Register(&Claude{})
}

func (c *Claude) Name() string        { return "claude" }
func (c *Claude) DisplayName() string { return "Claude Code" }

func (c *Claude) Detect() bool {
	return execx.Available("claude")
}

func (c *Claude) settingsPath(home string) string {
	return filepath.Join(home, ".claude", "settings.json")
}

func (c *Claude) instructionsPath(home string) string {
	return filepath.Join(home, ".claude", "CLAUDE.md")
}

func (c *Claude) SkillsDir(home string) string {
	return filepath.Join(home, ".claude", "skills")
}

// claudeSettings is the managed slice of settings.json. User keys outside
// it are preserved by the merge; the permissions allow-list unions with
// the user's own entries.
func claudeSettings() map[string]any {
	return map[string]any{
		"includeCoAuthoredBy": false,
		"permissions": map[string]any{
			"allow": []any{
				"Bash(git status)",
				"Bash(git diff:*)",
				"Bash(git log:*)",
			},
		},
		"env": map[string]any{
			"DISABLE_TELEMETRY": "1",
		},
	}
}

// Install converges settings, instructions, and the selected skills.
func (c *Claude) Install(home string, skillNames []string) error {
	if _, err := mergeJSONFile(c.settingsPath(home), claudeSettings()); err != nil {
		return err
	}
	if err := installInstructions(c.instructionsPath(home)); err != nil {
		return err
	}
	return InstallSkills(c.SkillsDir(home), skillNames)
}

// Remove deletes the instruction block and every managed skill. The
// settings file is left alone: unmerging user-edited JSON is riskier
// than a few stale defaults.
func (c *Claude) Remove(home string) error {
	if _, err := removeInstructions(c.instructionsPath(home)); err != nil {
		return err
	}
	_, err := RemoveSkills(c.SkillsDir(home), SkillNames())
	return err
}

// Check reports drift per surface.
func (c *Claude) Check(home string, skillNames []string) ([]SurfaceCheck, error) {
	settingsState, err := jsonFileSatisfies(c.settingsPath(home), claudeSettings())
	if err != nil {
		return nil, err
	}
	checks := []SurfaceCheck{{
		Surface: "settings",
		Path:    c.settingsPath(home),
		State:   settingsState,
	}}

	instr, err := checkInstructions("instructions", c.instructionsPath(home))
	if err != nil {
		return nil, err
	}
	checks = append(checks, instr)

	for _, name := range skillNames {
		state, err := SkillState(c.SkillsDir(home), name)
		if err != nil {
			return nil, err
		}
		checks = append(checks, SurfaceCheck{
			Surface: "skill:" + name,
			Path:    filepath.Join(c.SkillsDir(home), name, SkillFileName),
			State:   state,
		})
	}
	return checks, nil
}

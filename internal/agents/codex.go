package agents

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/rigup-dev/rigup/internal/execx"
	"github.com/rigup-dev/rigup/internal/output"
)

// Codex manages the Codex CLI configuration surfaces: config.toml and the
// AGENTS.md instruction document.
type Codex struct{}

func init() {
	Register(&Codex{})
}

func (c *Codex) Name() string        { return "codex" }
func (c *Codex) DisplayName() string { return "Codex CLI" }

func (c *Codex) Detect() bool {
	return execx.Available("codex")
}

func (c *Codex) configPath(home string) string {
	return filepath.Join(home, ".codex", "config.toml")
}

func (c *Codex) instructionsPath(home string) string {
	return filepath.Join(home, ".codex", "AGENTS.md")
}

// codexConfig is the managed slice of config.toml: approval defaults plus
// the [rigup] marker table. Unmanaged keys survive the merge.
func codexConfig() map[string]any {
	return map[string]any{
		"approval_policy": "on-request",
		"sandbox_mode":    "workspace-write",
		"rigup": map[string]any{
			"managed": true,
		},
	}
}

// Install converges config.toml and the instruction block.
func (c *Codex) Install(home string, _ []string) error {
	if _, err := mergeTOMLFile(c.configPath(home), codexConfig()); err != nil {
		return err
	}
	return installInstructions(c.instructionsPath(home))
}

// Remove deletes the instruction block and the [rigup] marker table.
// Approval keys stay: the user may have come to rely on them.
func (c *Codex) Remove(home string) error {
	if _, err := removeInstructions(c.instructionsPath(home)); err != nil {
		return err
	}
	return removeTOMLKey(c.configPath(home), "rigup")
}

// Check reports drift per surface.
func (c *Codex) Check(home string, _ []string) ([]SurfaceCheck, error) {
	configState, err := tomlFileSatisfies(c.configPath(home), codexConfig())
	if err != nil {
		return nil, err
	}
	checks := []SurfaceCheck{{
		Surface: "config",
		Path:    c.configPath(home),
		State:   configState,
	}}

	instr, err := checkInstructions("instructions", c.instructionsPath(home))
	if err != nil {
		return nil, err
	}
	return append(checks, instr), nil
}

// mergeTOMLFile deep-merges desired into the TOML document at path, the
// same contract as mergeJSONFile.
func mergeTOMLFile(path string, desired map[string]any) (bool, error) {
	current := map[string]any{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, &current); err != nil {
			return false, &output.ExitError{
				Code:    output.ExitUserError,
				Message: path + " is not valid TOML: " + err.Error(),
				Cause:   err,
			}
		}
	case os.IsNotExist(err):
		raw = nil
	default:
		return false, output.NewSystemErrorWithCause("cannot read "+path, err)
	}

	merged := deepMerge(current, desired)

	out, err := toml.Marshal(merged)
	if err != nil {
		return false, output.NewSystemErrorWithCause("cannot encode "+path, err)
	}

	if bytes.Equal(raw, out) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, output.NewSystemErrorWithCause("cannot create "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, output.NewSystemErrorWithCause("cannot write "+path, err)
	}
	return true, nil
}

// tomlFileSatisfies mirrors jsonFileSatisfies for TOML documents.
func tomlFileSatisfies(path string, desired map[string]any) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateMissing, nil
		}
		return "", output.NewSystemErrorWithCause("cannot read "+path, err)
	}
	current := map[string]any{}
	if err := toml.Unmarshal(raw, &current); err != nil {
		return StateOutdated, nil
	}
	if covers(current, desired) {
		return StateInstalled, nil
	}
	return StateOutdated, nil
}

// removeTOMLKey deletes a top-level key from the TOML document at path.
// Missing file or key is a no-op.
func removeTOMLKey(path, key string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return output.NewSystemErrorWithCause("cannot read "+path, err)
	}
	current := map[string]any{}
	if err := toml.Unmarshal(raw, &current); err != nil {
		return &output.ExitError{
			Code:    output.ExitUserError,
			Message: path + " is not valid TOML: " + err.Error(),
			Cause:   err,
		}
	}
	if _, exists := current[key]; !exists {
		return nil
	}
	delete(current, key)

	out, err := toml.Marshal(current)
	if err != nil {
		return output.NewSystemErrorWithCause("cannot encode "+path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return output.NewSystemErrorWithCause("cannot write "+path, err)
	}
	return nil
}

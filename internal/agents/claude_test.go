package agents

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClaudeInstall(t *testing.T) {
	home := t.TempDir()
	c := &Claude{}

	if err := c.Install(home, SkillNames()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	// Settings carry the managed keys.
	raw, err := os.ReadFile(filepath.Join(home, ".claude", "settings.json"))
	if err != nil {
		t.Fatalf("reading settings: %v", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}
	if settings["includeCoAuthoredBy"] != false {
		t.Errorf("includeCoAuthoredBy = %v, want false", settings["includeCoAuthoredBy"])
	}

	// Instructions block present.
	md, err := os.ReadFile(filepath.Join(home, ".claude", "CLAUDE.md"))
	if err != nil {
		t.Fatalf("reading CLAUDE.md: %v", err)
	}
	if !strings.Contains(string(md), "## Working agreements") {
		t.Errorf("CLAUDE.md missing instruction text:\n%s", md)
	}

	// Skills installed.
	if _, err := os.Stat(filepath.Join(home, ".claude", "skills", "gh-address-comments", SkillFileName)); err != nil {
		t.Errorf("skill not installed: %v", err)
	}
}

func TestClaudeCheckStates(t *testing.T) {
	home := t.TempDir()
	c := &Claude{}
	skills := SkillNames()

	// Fresh home: everything missing.
	checks, err := c.Check(home, skills)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(checks) != 2+len(skills) {
		t.Fatalf("got %d checks, want %d", len(checks), 2+len(skills))
	}
	for _, check := range checks {
		if check.State != StateMissing {
			t.Errorf("surface %q state = %q on fresh home", check.Surface, check.State)
		}
	}

	if err := c.Install(home, skills); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	checks, err = c.Check(home, skills)
	if err != nil {
		t.Fatalf("Check() after install error = %v", err)
	}
	for _, check := range checks {
		if check.State != StateInstalled {
			t.Errorf("surface %q state = %q after install", check.Surface, check.State)
		}
	}
}

func TestClaudeInstallPreservesUserSettings(t *testing.T) {
	home := t.TempDir()
	c := &Claude{}

	settingsDir := filepath.Join(home, ".claude")
	if err := os.MkdirAll(settingsDir, 0o755); err != nil {
		t.Fatalf("creating .claude: %v", err)
	}
	user := `{"model": "opus", "permissions": {"deny": ["WebFetch"]}}`
	if err := os.WriteFile(filepath.Join(settingsDir, "settings.json"), []byte(user), 0o644); err != nil {
		t.Fatalf("writing user settings: %v", err)
	}

	if err := c.Install(home, nil); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	raw, _ := os.ReadFile(filepath.Join(settingsDir, "settings.json"))
	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}
	if settings["model"] != "opus" {
		t.Errorf("user key model lost: %v", settings["model"])
	}
	perms := settings["permissions"].(map[string]any)
	if _, ok := perms["deny"]; !ok {
		t.Error("user permissions.deny lost")
	}
	if _, ok := perms["allow"]; !ok {
		t.Error("managed permissions.allow not merged")
	}
}

func TestClaudeRemove(t *testing.T) {
	home := t.TempDir()
	c := &Claude{}

	if err := c.Install(home, SkillNames()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if err := c.Remove(home); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// Instruction block gone.
	md, err := os.ReadFile(filepath.Join(home, ".claude", "CLAUDE.md"))
	if err != nil {
		t.Fatalf("reading CLAUDE.md: %v", err)
	}
	if strings.Contains(string(md), InstructionStart) {
		t.Errorf("instruction block survived removal:\n%s", md)
	}

	// Skills gone.
	if _, err := os.Stat(filepath.Join(home, ".claude", "skills", "commit-hygiene")); !os.IsNotExist(err) {
		t.Error("managed skill survived removal")
	}

	// Settings stay: removal never unmerges user-visible JSON.
	if _, err := os.Stat(filepath.Join(home, ".claude", "settings.json")); err != nil {
		t.Error("settings.json should survive removal")
	}
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// findCheck locates a named check in a decoded JSON check list.
func findCheck(t *testing.T, checks []any, name string) map[string]any {
	t.Helper()
	for _, raw := range checks {
		check := raw.(map[string]any)
		if check["name"] == name {
			return check
		}
	}
	t.Fatalf("check %q not found in %v", name, checks)
	return nil
}

func TestDoctor_HealthyConvergedHome(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	if _, err := runCommand(t, "apply"); err != nil {
		t.Fatalf("apply error = %v", err)
	}

	out, err := runCommand(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	result := decodeJSON(t, out)
	summary := result["summary"].(map[string]any)
	if summary["failed"].(float64) != 0 {
		t.Errorf("failed = %v, want 0 on a converged home\nOutput: %s", summary["failed"], out)
	}

	manifestChecks, _ := result["manifest"].([]any)
	if check := findCheck(t, manifestChecks, "Manifest"); check["status"] != "pass" {
		t.Errorf("Manifest check = %v, want pass", check)
	}
	if check := findCheck(t, manifestChecks, "Selection"); !strings.Contains(check["message"].(string), "1 feature(s)") {
		t.Errorf("Selection message = %v", check["message"])
	}

	integration, _ := result["integration"].([]any)
	if check := findCheck(t, integration, "Shell Block aliases"); check["status"] != "pass" {
		t.Errorf("Shell Block aliases = %v, want pass", check)
	}
	if check := findCheck(t, integration, "Agent claude"); check["message"] != "all surfaces current" {
		t.Errorf("Agent claude = %v, want all surfaces current", check)
	}
}

func TestDoctor_MissingManifest(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor should report findings, not fail: %v", err)
	}

	result := decodeJSON(t, out)
	manifestChecks, _ := result["manifest"].([]any)
	if check := findCheck(t, manifestChecks, "Manifest"); check["status"] != "fail" {
		t.Errorf("Manifest check = %v, want fail", check)
	}

	// Without a manifest the integration checks cover the full catalog.
	integration, _ := result["integration"].([]any)
	findCheck(t, integration, "Shell Block aliases")
	findCheck(t, integration, "Shell Block k9s")
	findCheck(t, integration, "Agent opencode")

	summary := result["summary"].(map[string]any)
	if summary["failed"].(float64) < 1 {
		t.Errorf("failed = %v, want at least the manifest failure", summary["failed"])
	}
}

func TestDoctor_MarkerConflict(t *testing.T) {
	home := setupTestHome(t)
	writeTestManifest(t, testManifest)

	if _, err := runCommand(t, "apply"); err != nil {
		t.Fatalf("apply error = %v", err)
	}

	rc := filepath.Join(home, ".bashrc")
	dup := "\n# >>> rigup:aliases >>>\nalias dup='true'\n# <<< rigup:aliases <<<\n"
	f, err := os.OpenFile(rc, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.WriteString(dup); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	f.Close()

	out, err := runCommand(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	result := decodeJSON(t, out)
	integration, _ := result["integration"].([]any)
	check := findCheck(t, integration, "Shell Block aliases")
	if check["status"] != "fail" {
		t.Errorf("conflicted block = %v, want fail", check)
	}
	if !strings.Contains(check["message"].(string), "duplicate") {
		t.Errorf("message = %v, want duplicate marker report", check["message"])
	}
}

func TestDoctor_FixRepairsDrift(t *testing.T) {
	home := setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "doctor", "--fix", "--json")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	result := decodeJSON(t, out)
	integration, _ := result["integration"].([]any)
	check := findCheck(t, integration, "Shell Block aliases")
	if check["status"] != "pass" || !strings.Contains(check["message"].(string), "auto-fixed") {
		t.Errorf("fixed block = %v, want pass with auto-fixed message", check)
	}

	content, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	if err != nil {
		t.Fatalf(".bashrc should be written by --fix: %v", err)
	}
	if !strings.Contains(string(content), "# >>> rigup:aliases >>>") {
		t.Errorf(".bashrc should carry the repaired block, got:\n%s", content)
	}

	agentCheck := findCheck(t, integration, "Agent claude")
	if agentCheck["status"] != "pass" {
		t.Errorf("fixed agent = %v, want pass", agentCheck)
	}
	if _, err := os.Stat(filepath.Join(home, ".claude", "CLAUDE.md")); err != nil {
		t.Errorf("CLAUDE.md should be written by --fix: %v", err)
	}
}

func TestDoctor_FixNeverTouchesConflicts(t *testing.T) {
	home := setupTestHome(t)
	writeTestManifest(t, testManifest)

	rc := filepath.Join(home, ".bashrc")
	conflicted := "# >>> rigup:aliases >>>\nalias one='true'\n# <<< rigup:aliases <<<\n" +
		"# >>> rigup:aliases >>>\nalias two='true'\n# <<< rigup:aliases <<<\n"
	if err := os.WriteFile(rc, []byte(conflicted), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := runCommand(t, "doctor", "--fix", "--json")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	result := decodeJSON(t, out)
	integration, _ := result["integration"].([]any)
	if check := findCheck(t, integration, "Shell Block aliases"); check["status"] != "fail" {
		t.Errorf("conflicted block under --fix = %v, want fail", check)
	}

	content, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != conflicted {
		t.Errorf("conflicted file should be left untouched, got:\n%s", content)
	}
}

func TestDoctor_QuietHidesPasses(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	if _, err := runCommand(t, "apply"); err != nil {
		t.Fatalf("apply error = %v", err)
	}

	out, err := runCommand(t, "doctor", "--quiet")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	if strings.Contains(out, "managed block current") {
		t.Errorf("quiet mode should hide passing checks, got:\n%s", out)
	}
	if strings.Contains(out, "all surfaces current") {
		t.Errorf("quiet mode should hide passing checks, got:\n%s", out)
	}
	if !strings.Contains(out, "passed") {
		t.Errorf("summary line should still print, got:\n%s", out)
	}
}

func TestDoctor_HumanOutput(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "doctor")
	if err != nil {
		t.Fatalf("doctor error = %v", err)
	}

	for _, want := range []string{
		"rigup doctor v",
		"SYSTEM",
		"MANIFEST",
		"INTEGRATION",
		"passed",
		"warnings",
		"failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

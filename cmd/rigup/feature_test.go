package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rigup-dev/rigup/internal/output"
)

func TestFeatureList_JSON(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "feature", "list", "--json")
	if err != nil {
		t.Fatalf("feature list error = %v", err)
	}

	result := decodeJSON(t, out)
	features, ok := result["features"].([]any)
	if !ok || len(features) != 5 {
		t.Fatalf("features = %v, want the five catalog entries", result["features"])
	}

	byName := map[string]map[string]any{}
	for _, raw := range features {
		item := raw.(map[string]any)
		byName[item["name"].(string)] = item
	}
	if byName["aliases"]["selected"] != true {
		t.Error("aliases should be marked selected")
	}
	if byName["k9s"]["selected"] != false {
		t.Error("k9s should not be marked selected")
	}
	if byName["aliases"]["target"] != ".bashrc" {
		t.Errorf("aliases target = %v, want .bashrc", byName["aliases"]["target"])
	}
}

func TestFeatureList_WithoutManifest(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "feature", "list")
	if err != nil {
		t.Fatalf("feature list error = %v", err)
	}
	for _, want := range []string{"aliases", "local-bin", "azure-env", "lazygit", "k9s"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog should list %q, got:\n%s", want, out)
		}
	}
}

func TestFeatureInstallRemove_Roundtrip(t *testing.T) {
	home := setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "feature", "install", "aliases")
	if err != nil {
		t.Fatalf("feature install error = %v", err)
	}
	if !strings.Contains(out, "Wrote aliases block") {
		t.Errorf("install output = %q", out)
	}

	rc := filepath.Join(home, ".bashrc")
	content, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{
		"# >>> rigup:aliases >>>",
		"alias ll='ls -alF'",
		"# <<< rigup:aliases <<<",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf(".bashrc should contain %q, got:\n%s", want, content)
		}
	}

	out, err = runCommand(t, "feature", "remove", "aliases")
	if err != nil {
		t.Fatalf("feature remove error = %v", err)
	}
	if !strings.Contains(out, "Removed aliases block") {
		t.Errorf("remove output = %q", out)
	}

	content, err = os.ReadFile(rc)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(content), "rigup:aliases") {
		t.Errorf("markers should be gone after remove, got:\n%s", content)
	}

	out, err = runCommand(t, "feature", "remove", "aliases")
	if err != nil {
		t.Fatalf("second remove error = %v", err)
	}
	if !strings.Contains(out, "nothing to remove") {
		t.Errorf("second remove output = %q", out)
	}
}

func TestFeatureInstall_PreservesUnmanagedContent(t *testing.T) {
	home := setupTestHome(t)
	writeTestManifest(t, testManifest)

	rc := filepath.Join(home, ".bashrc")
	if err := os.WriteFile(rc, []byte("# my own setup\nexport EDITOR=vim\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := runCommand(t, "feature", "install", "lazygit"); err != nil {
		t.Fatalf("feature install error = %v", err)
	}

	content, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "export EDITOR=vim") {
		t.Errorf("unmanaged lines should survive, got:\n%s", text)
	}
	if !strings.HasPrefix(text, "# my own setup\n") {
		t.Errorf("unmanaged content should stay at the top, got:\n%s", text)
	}
	if !strings.Contains(text, "# >>> rigup:lazygit >>>") {
		t.Errorf("block should be appended, got:\n%s", text)
	}
}

func TestFeatureCheck_States(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "feature", "check", "aliases", "--json")
	if err != nil {
		t.Fatalf("feature check error = %v", err)
	}
	result := decodeJSON(t, out)
	features, _ := result["features"].([]any)
	if len(features) != 1 {
		t.Fatalf("features = %v, want one entry", result["features"])
	}
	if state := features[0].(map[string]any)["state"]; state != "missing" {
		t.Errorf("state = %v, want missing", state)
	}

	if _, err := runCommand(t, "feature", "install", "aliases"); err != nil {
		t.Fatalf("feature install error = %v", err)
	}

	out, err = runCommand(t, "feature", "check", "aliases", "--json")
	if err != nil {
		t.Fatalf("feature check error = %v", err)
	}
	result = decodeJSON(t, out)
	features, _ = result["features"].([]any)
	if state := features[0].(map[string]any)["state"]; state != "installed" {
		t.Errorf("state = %v, want installed", state)
	}
}

func TestFeatureCheck_ManifestSelection(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "feature", "check", "--json")
	if err != nil {
		t.Fatalf("feature check error = %v", err)
	}
	result := decodeJSON(t, out)
	features, _ := result["features"].([]any)
	if len(features) != 1 {
		t.Fatalf("check without a name should cover the manifest selection, got %v", result["features"])
	}
	if name := features[0].(map[string]any)["name"]; name != "aliases" {
		t.Errorf("name = %v, want aliases", name)
	}
}

func TestFeature_UnknownName(t *testing.T) {
	setupTestHome(t)

	_, err := runCommand(t, "feature", "install", "bogus")
	if err == nil {
		t.Fatal("unknown feature should fail")
	}
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", code, output.ExitUserError)
	}
	if !strings.Contains(err.Error(), "unknown feature") || !strings.Contains(err.Error(), "aliases") {
		t.Errorf("error should name the catalog, got: %v", err)
	}
}

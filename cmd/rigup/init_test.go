package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesStarterManifest(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "init")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	path := filepath.Join(os.Getenv("RIGUP_CONFIG_HOME"), "machine.yaml")
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("manifest not written: %v", readErr)
	}
	for _, section := range []string{"packages:", "features:", "agents:"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("starter manifest missing %q section:\n%s", section, data)
		}
	}
	if !strings.Contains(out, path) {
		t.Errorf("output should name the manifest path %q: %q", path, out)
	}
}

func TestInit_ExistingManifestUntouched(t *testing.T) {
	setupTestHome(t)
	path := writeTestManifest(t, testManifest)

	out, err := runCommand(t, "init")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("ReadFile() error = %v", readErr)
	}
	if string(data) != testManifest {
		t.Errorf("init without --force should not touch an existing manifest:\n%s", data)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("output should mention the existing manifest: %q", out)
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	setupTestHome(t)
	path := writeTestManifest(t, "features: []\n")

	if _, err := runCommand(t, "init", "--force"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("ReadFile() error = %v", readErr)
	}
	if !strings.Contains(string(data), "packages:") {
		t.Errorf("--force should reset to the starter manifest:\n%s", data)
	}
}

func TestInit_JSON(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "init", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	result := decodeJSON(t, out)
	if result["status"] != "ok" {
		t.Errorf("status = %v, want ok", result["status"])
	}
	manifest, ok := result["manifest"].(string)
	if !ok || !strings.HasSuffix(manifest, "machine.yaml") {
		t.Errorf("manifest field should carry the path: %v", result["manifest"])
	}
}

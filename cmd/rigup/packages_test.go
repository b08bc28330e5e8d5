package main

import (
	"strings"
	"testing"

	"github.com/rigup-dev/rigup/internal/output"
)

func TestPackagesList_EmptySelection(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "packages", "list", "--json")
	if err != nil {
		t.Fatalf("packages list error = %v", err)
	}

	result := decodeJSON(t, out)
	if _, ok := result["family"]; !ok {
		t.Error("JSON output should have family key")
	}
	if pkgs, _ := result["packages"].([]any); len(pkgs) != 0 {
		t.Errorf("packages = %v, want none for the test manifest", result["packages"])
	}

	human, err := runCommand(t, "packages", "list")
	if err != nil {
		t.Fatalf("packages list error = %v", err)
	}
	if !strings.Contains(human, "No packages selected for the") {
		t.Errorf("output = %q, want empty-selection notice", human)
	}
}

func TestPackagesCheck_EmptySelection(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "packages", "check", "--json")
	if err != nil {
		t.Fatalf("packages check error = %v", err)
	}

	result := decodeJSON(t, out)
	if pkgs, _ := result["packages"].([]any); len(pkgs) != 0 {
		t.Errorf("packages = %v, want none", result["packages"])
	}
}

func TestPackagesSync_EmptySelection(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, testManifest)

	out, err := runCommand(t, "packages", "sync")
	if err != nil {
		t.Fatalf("packages sync error = %v", err)
	}
	if !strings.Contains(out, "No packages selected for the") {
		t.Errorf("output = %q, want empty-selection notice", out)
	}
}

func TestPackages_UnknownFamilyRejected(t *testing.T) {
	setupTestHome(t)
	writeTestManifest(t, "packages:\n  gentoo:\n    - git\n")

	_, err := runCommand(t, "packages", "list")
	if err == nil {
		t.Fatal("unknown package family should fail validation")
	}
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", code, output.ExitUserError)
	}
	if !strings.Contains(err.Error(), "unknown package family") {
		t.Errorf("error = %v, want unknown package family", err)
	}
}

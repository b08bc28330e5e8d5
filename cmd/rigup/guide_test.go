package main

import (
	"strings"
	"testing"
)

func TestGuide_PlainOutput(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "guide")
	if err != nil {
		t.Fatalf("guide error = %v", err)
	}

	// Piped output is the raw markdown source.
	for _, want := range []string{"# rigup", "## Quick start", "## Marker blocks"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestGuide_JSON(t *testing.T) {
	setupTestHome(t)

	out, err := runCommand(t, "guide", "--json")
	if err != nil {
		t.Fatalf("guide error = %v", err)
	}

	result := decodeJSON(t, out)
	guide, _ := result["guide"].(string)
	if !strings.Contains(guide, "# rigup") {
		t.Errorf("guide field should carry the document, got:\n%s", guide)
	}
}

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity capped at trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stateDir := t.TempDir()
			t.Setenv("RIGUP_STATE_HOME", stateDir)

			Setup(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Setup(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			logPath := filepath.Join(stateDir, "rigup.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("log file was not created at %s", logPath)
			}
		})
	}
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("RIGUP_STATE_HOME", "/custom/state")

	got := LogFilePath()
	want := filepath.Join("/custom/state", "rigup.log")
	if got != want {
		t.Errorf("LogFilePath() = %q, want %q", got, want)
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("pkgmgr")
	// Smoke test: the component logger must be usable without setup.
	logger.Debug().Msg("message from component logger")
}

// Package logging configures the global zerolog logger for rigup.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rigup-dev/rigup/internal/config"
)

// Setup configures the global logger with dual output: a pretty console
// writer on stderr and an append-only file under the state directory.
// Verbosity maps repeated -v flags to levels (warn, info, debug, trace).
func Setup(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}

	writers := []io.Writer{consoleWriter}

	logPath := LogFilePath()
	file, err := openLogFile(logPath)
	if err == nil {
		writers = append(writers, file)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	// The log file is best effort; report the miss with the new logger.
	if err != nil {
		log.Warn().Err(err).Str("path", logPath).Msg("log file unavailable, console only")
	}

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logPath).Msg("logger initialized")
}

// GetLogger returns a logger tagged with the given component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogFilePath returns the rigup log file location inside the state directory.
func LogFilePath() string {
	return filepath.Join(config.StateDir(), "rigup.log")
}

// openLogFile creates the state directory and opens the log in append mode.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

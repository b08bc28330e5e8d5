// Package execx runs delegated external tools for the rigup CLI.
//
// Package managers and agent CLIs are invoked through a Runner so command
// construction stays testable without spawning real processes. Failures keep
// the taxonomy: a missing binary is a system error, a non-zero exit is an
// external tool error carrying the tool's stderr verbatim.
package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/rigup-dev/rigup/internal/output"
)

// Runner executes external commands. The System implementation is used in
// production; tests substitute fakes to record argv and script results.
type Runner interface {
	// Output runs the command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Stream runs the command with stdout and stderr attached to w,
	// for long package-manager runs where the operator wants live output.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

// System is the Runner backed by os/exec.
type System struct{}

// Output executes the command, capturing stdout and stderr.
// Returns trimmed stdout on success. On failure returns an *output.ExitError:
// system error if the binary is missing, external tool error (with the
// tool's stderr) if it exited non-zero.
func (System) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", wrapRunError(name, err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Stream executes the command with its output attached to w.
func (System) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = io.MultiWriter(w, &stderr)

	if err := cmd.Run(); err != nil {
		return wrapRunError(name, err, stderr.String())
	}
	return nil
}

// wrapRunError maps an exec failure onto the error taxonomy.
func wrapRunError(name string, err error, stderr string) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return output.NewSystemError(name + " not found: ensure it is installed and in PATH")
	}

	errMsg := strings.TrimSpace(stderr)
	if errMsg == "" {
		errMsg = err.Error()
	}
	return output.NewExternalToolError(name+" failed: "+errMsg, err)
}

// Available reports whether a binary can be resolved on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

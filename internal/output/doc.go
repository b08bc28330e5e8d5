// Package output provides structured output handling for the rigup CLI.
//
// This package handles both human-readable and JSON output formats, supporting
// the agent-friendly design principle that all commands should work well for
// both human users and automated agents.
//
// # Printer
//
// The Printer is the primary interface for command output. It automatically
// handles format switching based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout()))
//
//	// For success output
//	printer.Success(map[string]any{"message": "Feature installed", "feature": name})
//
//	// For error output
//	printer.Error(err)
//
//	// For raw output
//	printer.Println("Some text")
//	printer.Print("Formatted: %s\n", value)
//
// # JSON Mode
//
// When JSON mode is enabled (via --json flag), all output is structured:
//
//	// Success: {"message": "...", "feature": "...", ...}
//	// Error: {"error": "message", "code": N}
//
// # Styling
//
// For human-readable output, the package provides lipgloss-based styling
// that automatically disables when output is piped:
//
//	printer.Styles().Error   // Red, bold
//	printer.Styles().Success // Green
//	printer.Styles().Warning // Yellow
//	printer.Styles().Bold    // Bold
//	printer.Styles().Dim     // Gray
//
// # Exit Codes
//
// The package defines standard exit codes and error types:
//
//	output.ExitSuccess      // 0: Success
//	output.ExitUserError    // 1: User error (bad args, unknown names)
//	output.ExitSystemError  // 2: System error (I/O failure)
//	output.ExitConflict     // 3: Conflict (duplicate managed block)
//	output.ExitExternalTool // 4: Delegated tool exited non-zero
//
// # Error Types
//
// Use the error constructors to create properly-coded errors:
//
//	output.NewUserError("unknown feature: zsh-theme")
//	output.NewSystemError("cannot write ~/.bashrc")
//	output.NewConflictError("duplicate managed block in ~/.bashrc")
//	output.NewExternalToolError("apt-get install failed: ...", err)
//
// These errors carry exit codes that are used for both JSON error output
// and process exit codes.
package output

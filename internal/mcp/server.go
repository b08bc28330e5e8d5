// Package mcp provides a Model Context Protocol server for rigup.
// It exposes machine state and convergence as MCP tools that any
// MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigup-dev/rigup/internal/execx"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// Deps carries what the tool handlers need: where the manifest lives,
// whose home directory to converge, what machine this is, and how to
// invoke package managers.
type Deps struct {
	ManifestPath string
	Home         string
	Sys          sysinfo.Info
	Run          execx.Runner
}

// NewServer creates an MCP server with all rigup tools registered.
func NewServer(version string, deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rigup",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for tools that modify the machine.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all rigup tools to the server.
func registerTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "machine_status",
		Description: "Show machine and configuration state: distro, package manager, manifest selections, and per-feature and per-agent drift.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan",
		Description: "Preview what apply would change: packages to install, shell feature blocks to write, and agent surfaces to converge. Includes line diffs for changed blocks.",
		Annotations: readOnlyAnnotations(),
	}, handlePlan(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "doctor",
		Description: "Run health checks: manifest validity, package manager availability, marker block conflicts, and agent config readability.",
		Annotations: readOnlyAnnotations(),
	}, handleDoctor(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply",
		Description: "Converge the machine to the manifest: install packages, write shell feature blocks, and configure agents. Supports dry_run and an area filter.",
		Annotations: writeAnnotations(),
	}, handleApply(deps))
}

package mcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/shellrc"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// --- Test helpers ---

// fakeRunner records command lines and returns canned results.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func (f *fakeRunner) Stream(_ context.Context, w io.Writer, name string, args ...string) error {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return err
	}
	if out, ok := f.outputs[key]; ok {
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

const testManifest = `features:
  - aliases
agents:
  - claude
skills:
  - commit-hygiene
`

// makeDeps writes a manifest without packages so handlers never probe
// the real PATH for a package manager.
func makeDeps(t *testing.T, manifestYAML string) Deps {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.yaml")
	if err := os.WriteFile(path, []byte(manifestYAML), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return Deps{
		ManifestPath: path,
		Home:         t.TempDir(),
		Sys:          sysinfo.Info{Distro: "arch", Family: sysinfo.FamilyArch},
		Run:          &fakeRunner{},
	}
}

// converge installs everything the test manifest selects, directly
// through the internal packages.
func converge(t *testing.T, deps Deps) {
	t.Helper()
	feat, ok := shellrc.Lookup("aliases")
	if !ok {
		t.Fatal("aliases feature not in catalog")
	}
	if err := feat.Install(deps.Home); err != nil {
		t.Fatalf("installing feature: %v", err)
	}
	agent, ok := agents.Get("claude")
	if !ok {
		t.Fatal("claude agent not registered")
	}
	if err := agent.Install(deps.Home, []string{"commit-hygiene"}); err != nil {
		t.Fatalf("installing agent: %v", err)
	}
}

// --- machine_status handler tests ---

func TestHandleStatus_FreshHome(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleStatus(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, StatusInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Family != "arch" {
		t.Errorf("Family = %q, want %q", out.Family, "arch")
	}
	if out.Manifest != deps.ManifestPath {
		t.Errorf("Manifest = %q, want %q", out.Manifest, deps.ManifestPath)
	}
	if len(out.Features) != 1 || out.Features[0].Name != "aliases" {
		t.Fatalf("Features = %+v, want exactly aliases", out.Features)
	}
	if out.Features[0].State != shellrc.StateMissing {
		t.Errorf("aliases state = %q, want missing", out.Features[0].State)
	}
	if len(out.Agents) != 1 {
		t.Fatalf("len(Agents) = %d, want 1", len(out.Agents))
	}
	// settings, instructions, and the one selected skill
	if got := len(out.Agents[0].Surfaces); got != 3 {
		t.Errorf("len(Surfaces) = %d, want 3", got)
	}
	for _, sc := range out.Agents[0].Surfaces {
		if sc.State != agents.StateMissing {
			t.Errorf("surface %s state = %q, want missing", sc.Surface, sc.State)
		}
	}
}

func TestHandleStatus_MissingManifest(t *testing.T) {
	deps := makeDeps(t, testManifest)
	deps.ManifestPath = filepath.Join(t.TempDir(), "absent.yaml")
	handler := handleStatus(deps)

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, StatusInput{})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", code, output.ExitUserError)
	}
}

// --- plan handler tests ---

func TestHandlePlan_FreshHome(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handlePlan(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, PlanInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UpToDate {
		t.Error("UpToDate = true, want false on a fresh home")
	}

	var feature *PlanAction
	agentCount := 0
	for i := range out.Actions {
		switch out.Actions[i].Kind {
		case "feature":
			feature = &out.Actions[i]
		case "agent":
			agentCount++
		}
	}
	if feature == nil {
		t.Fatal("no feature action in plan")
	}
	if feature.Name != "aliases" || feature.Reason != shellrc.StateMissing {
		t.Errorf("feature action = %+v", *feature)
	}
	if !strings.Contains(feature.Diff, "+ alias") {
		t.Errorf("feature diff should show added alias lines:\n%s", feature.Diff)
	}
	if agentCount != 3 {
		t.Errorf("agent actions = %d, want 3", agentCount)
	}
}

func TestHandlePlan_Converged(t *testing.T) {
	deps := makeDeps(t, testManifest)
	converge(t, deps)
	handler := handlePlan(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, PlanInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.UpToDate {
		t.Errorf("UpToDate = false, actions: %+v", out.Actions)
	}
	if len(out.Actions) != 0 {
		t.Errorf("len(Actions) = %d, want 0", len(out.Actions))
	}
}

// --- apply handler tests ---

func TestHandleApply(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleApply(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ApplyInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2: %+v", len(out.Steps), out.Steps)
	}
	for _, step := range out.Steps {
		if step.Status != stepOK {
			t.Errorf("step %s status = %q, want ok", step.Name, step.Status)
		}
	}
	if out.Changed != 2 {
		t.Errorf("Changed = %d, want 2", out.Changed)
	}

	// Second apply over a converged home changes nothing.
	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, ApplyInput{})
	if err != nil {
		t.Fatalf("unexpected error on second apply: %v", err)
	}
	if out.Changed != 0 {
		t.Errorf("second apply Changed = %d, want 0", out.Changed)
	}
	for _, step := range out.Steps {
		if step.Status != stepSkipped {
			t.Errorf("step %s status = %q, want skipped", step.Name, step.Status)
		}
	}
}

func TestHandleApply_DryRun(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleApply(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ApplyInput{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Changed != 0 {
		t.Errorf("Changed = %d, want 0 in dry run", out.Changed)
	}
	for _, step := range out.Steps {
		if step.Status != stepDryRun {
			t.Errorf("step %s status = %q, want dry_run", step.Name, step.Status)
		}
	}
	if _, err := os.Stat(filepath.Join(deps.Home, ".bashrc")); !os.IsNotExist(err) {
		t.Error("dry run should not write .bashrc")
	}
}

func TestHandleApply_OnlyFeatures(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleApply(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ApplyInput{Only: "features"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Steps) != 1 || out.Steps[0].Name != "feature aliases" {
		t.Fatalf("Steps = %+v, want only the aliases feature", out.Steps)
	}
	if _, err := os.Stat(filepath.Join(deps.Home, ".claude")); !os.IsNotExist(err) {
		t.Error("agents area should be untouched")
	}
}

func TestHandleApply_UnknownArea(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleApply(deps)

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ApplyInput{Only: "kernel"})
	if err == nil {
		t.Fatal("expected error for unknown area")
	}
	if code := output.GetExitCode(err); code != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", code, output.ExitUserError)
	}
}

// --- doctor handler tests ---

func TestHandleDoctor_Healthy(t *testing.T) {
	deps := makeDeps(t, testManifest)
	handler := handleDoctor(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, DoctorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Healthy {
		t.Errorf("Healthy = false, checks: %+v", out.Checks)
	}
	// manifest, distro, shell blocks, agent configs
	if len(out.Checks) != 4 {
		t.Errorf("len(Checks) = %d, want 4: %+v", len(out.Checks), out.Checks)
	}
}

func TestHandleDoctor_MarkerConflict(t *testing.T) {
	deps := makeDeps(t, testManifest)
	start, end := shellrc.Markers("aliases")
	content := start + "\nalias a='b'\n" + end + "\n" +
		start + "\nalias c='d'\n" + end + "\n"
	if err := os.WriteFile(filepath.Join(deps.Home, ".bashrc"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing rc file: %v", err)
	}
	handler := handleDoctor(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, DoctorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Healthy {
		t.Error("Healthy = true, want false with duplicated markers")
	}
	found := false
	for _, c := range out.Checks {
		if c.Name == "shell block aliases" && c.Status == checkFail {
			found = true
		}
	}
	if !found {
		t.Errorf("no failing shell block check in %+v", out.Checks)
	}
}

func TestHandleDoctor_MissingManifest(t *testing.T) {
	deps := makeDeps(t, testManifest)
	deps.ManifestPath = filepath.Join(t.TempDir(), "absent.yaml")
	handler := handleDoctor(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, DoctorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Healthy {
		t.Error("Healthy = true, want false without a manifest")
	}
	if out.Checks[0].Name != "manifest" || out.Checks[0].Status != checkFail {
		t.Errorf("first check = %+v, want failing manifest check", out.Checks[0])
	}
}

// --- Server registration test ---

func TestNewServer_RegistersTools(t *testing.T) {
	deps := makeDeps(t, testManifest)

	// Should not panic
	server := NewServer("test-version", deps)
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}

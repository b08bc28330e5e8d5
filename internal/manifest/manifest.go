// Package manifest loads and validates the machine manifest.
//
// The manifest (machine.yaml) declares what a machine should have: packages
// per manager family, shell features, agent configs, and optionally a skill
// subset. It is the single input to apply, plan, and status.
package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// StarterYAML is the commented manifest written by `rigup init`.
//
//go:embed starter.yaml
var StarterYAML string

// Manifest is the parsed machine.yaml.
type Manifest struct {
	Packages map[string][]string `yaml:"packages,omitempty" json:"packages,omitempty"`
	Features []string            `yaml:"features,omitempty" json:"features,omitempty"`
	Agents   []string            `yaml:"agents,omitempty" json:"agents,omitempty"`
	Skills   []string            `yaml:"skills,omitempty" json:"skills,omitempty"`
}

// Catalog holds the known names a manifest may reference. The callers own
// the catalogs; manifest stays independent of the feature and agent packages.
type Catalog struct {
	Features []string
	Agents   []string
	Skills   []string
}

// Load reads and parses the manifest at path. A missing file is a user
// error pointing at `rigup init`.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, output.NewUserError("manifest not found at " + path + ": run 'rigup init' to create one")
		}
		return nil, output.NewSystemErrorWithCause("cannot read manifest "+path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, &output.ExitError{
			Code:    output.ExitUserError,
			Message: "invalid manifest " + path + ": " + err.Error(),
			Cause:   err,
		}
	}
	return m, nil
}

// Parse decodes manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Default returns the starter manifest as a value. It mirrors StarterYAML;
// a test keeps the two in sync.
func Default() *Manifest {
	return &Manifest{
		Packages: map[string][]string{
			string(sysinfo.FamilyDebian): {"git", "curl", "ripgrep", "fzf", "jq", "neovim"},
			string(sysinfo.FamilyArch):   {"git", "curl", "ripgrep", "fzf", "jq", "neovim", "lazygit"},
		},
		Features: []string{"aliases", "local-bin"},
		Agents:   []string{"claude"},
	}
}

// Validate checks every referenced name against the catalog. Unknown names
// are user errors naming the valid choices.
func (m *Manifest) Validate(cat Catalog) error {
	knownFamilies := []string{string(sysinfo.FamilyDebian), string(sysinfo.FamilyArch)}
	for family := range m.Packages {
		if !slices.Contains(knownFamilies, family) {
			return unknownName("package family", family, knownFamilies)
		}
	}
	for _, name := range m.Features {
		if !slices.Contains(cat.Features, name) {
			return unknownName("feature", name, cat.Features)
		}
	}
	for _, name := range m.Agents {
		if !slices.Contains(cat.Agents, name) {
			return unknownName("agent", name, cat.Agents)
		}
	}
	for _, name := range m.Skills {
		if !slices.Contains(cat.Skills, name) {
			return unknownName("skill", name, cat.Skills)
		}
	}
	return nil
}

// PackagesFor returns the package list for the machine's manager family.
func (m *Manifest) PackagesFor(family sysinfo.Family) []string {
	return m.Packages[string(family)]
}

// SelectedSkills resolves the skill subset: an absent skills list means
// the full catalog.
func (m *Manifest) SelectedSkills(all []string) []string {
	if len(m.Skills) == 0 {
		return all
	}
	return m.Skills
}

func unknownName(kind, name string, known []string) error {
	return output.NewUserError(fmt.Sprintf("unknown %s %q in manifest (known: %s)", kind, name, strings.Join(known, ", ")))
}

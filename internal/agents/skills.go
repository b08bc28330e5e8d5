package agents

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rigup-dev/rigup/internal/output"
)

//go:embed skills
var skillsFS embed.FS

// SkillFileName is the document name inside each skill directory.
const SkillFileName = "SKILL.md"

// Skill describes one embedded skill document.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// skillMeta is the YAML frontmatter of a SKILL.md.
type skillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Skills lists the embedded skill catalog in name order.
func Skills() []Skill {
	entries, err := skillsFS.ReadDir("skills")
	if err != nil {
		return nil
	}

	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		content, err := SkillContent(entry.Name())
		if err != nil {
			continue
		}
		skills = append(skills, Skill{
			Name:        entry.Name(),
			Description: parseSkillDescription(content),
		})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills
}

// SkillNames returns the catalog names in order.
func SkillNames() []string {
	skills := Skills()
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

// SkillContent returns the embedded SKILL.md for the named skill.
func SkillContent(name string) (string, error) {
	data, err := skillsFS.ReadFile("skills/" + name + "/" + SkillFileName)
	if err != nil {
		return "", output.NewUserError("unknown skill: " + name)
	}
	return string(data), nil
}

// InstallSkills copies the named skills into dir/<name>/SKILL.md,
// overwriting drifted copies.
func InstallSkills(dir string, names []string) error {
	for _, name := range names {
		content, err := SkillContent(name)
		if err != nil {
			return err
		}
		skillDir := filepath.Join(dir, name)
		if err := os.MkdirAll(skillDir, 0o755); err != nil {
			return output.NewSystemErrorWithCause("cannot create "+skillDir, err)
		}
		path := filepath.Join(skillDir, SkillFileName)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return output.NewSystemErrorWithCause("cannot write "+path, err)
		}
	}
	return nil
}

// RemoveSkills deletes managed skill directories under dir. Only catalog
// names are ever touched. Returns the names actually removed.
func RemoveSkills(dir string, names []string) ([]string, error) {
	var removed []string
	for _, name := range names {
		if _, err := SkillContent(name); err != nil {
			return removed, err
		}
		skillDir := filepath.Join(dir, name)
		if _, err := os.Stat(skillDir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(skillDir); err != nil {
			return removed, output.NewSystemErrorWithCause("cannot remove "+skillDir, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// SkillState compares the installed copy under dir against the embedded
// content.
func SkillState(dir, name string) (string, error) {
	content, err := SkillContent(name)
	if err != nil {
		return "", err
	}
	installed, err := os.ReadFile(filepath.Join(dir, name, SkillFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return StateMissing, nil
		}
		return "", output.NewSystemErrorWithCause("cannot read installed skill "+name, err)
	}
	if !bytes.Equal(installed, []byte(content)) {
		return StateOutdated, nil
	}
	return StateInstalled, nil
}

// parseSkillDescription pulls the description field from the frontmatter.
func parseSkillDescription(content string) string {
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return ""
	}
	frontmatter, _, ok := strings.Cut(rest, "\n---")
	if !ok {
		return ""
	}
	var meta skillMeta
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return ""
	}
	return meta.Description
}

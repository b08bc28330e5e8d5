// Package shellrc manages rigup's shell feature blocks in rc files.
//
// Each feature owns one managed block in the user's rc file, bounded by
// per-feature markers. Blocks use shell-time $HOME expansion so the same
// block text works on any machine.
package shellrc

import (
	"path/filepath"
	"slices"

	"github.com/rigup-dev/rigup/internal/markblock"
)

// Feature states reported by Check.
const (
	StateInstalled = "installed"
	StateOutdated  = "outdated"
	StateMissing   = "missing"
)

// Markers returns the marker pair delimiting a feature's managed block.
func Markers(name string) (start, end string) {
	return "# >>> rigup:" + name + " >>>", "# <<< rigup:" + name + " <<<"
}

// Feature is one named block of shell configuration.
type Feature struct {
	Name        string
	Description string
	TargetRel   string // target rc file, relative to the home directory
	Block       []string
}

// Target resolves the feature's rc file under the given home directory.
func (f Feature) Target(home string) string {
	return filepath.Join(home, f.TargetRel)
}

// Install writes or refreshes the feature's managed block.
func (f Feature) Install(home string) error {
	start, end := Markers(f.Name)
	return markblock.Install(f.Target(home), start, end, f.Block)
}

// Remove deletes the feature's managed block. Reports whether the rc file
// changed.
func (f Feature) Remove(home string) (bool, error) {
	start, end := Markers(f.Name)
	return markblock.Remove(f.Target(home), start, end)
}

// Check compares the installed block body against the catalog's.
func (f Feature) Check(home string) (string, error) {
	start, end := Markers(f.Name)
	body, ok, err := markblock.ExtractFile(f.Target(home), start, end)
	if err != nil {
		return "", err
	}
	if !ok {
		return StateMissing, nil
	}
	if !slices.Equal(body, f.Block) {
		return StateOutdated, nil
	}
	return StateInstalled, nil
}

// Features returns the catalog in display order.
func Features() []Feature {
	return []Feature{
		{
			Name:        "aliases",
			Description: "everyday shell and git aliases",
			TargetRel:   ".bashrc",
			Block: []string{
				"alias ll='ls -alF'",
				"alias la='ls -A'",
				"alias ..='cd ..'",
				"alias gs='git status'",
				"alias gd='git diff'",
				"alias gl='git log --oneline -n 20'",
				"alias grep='grep --color=auto'",
			},
		},
		{
			Name:        "local-bin",
			Description: "put ~/.local/bin and ~/bin on PATH",
			TargetRel:   ".bashrc",
			Block: []string{
				`case ":$PATH:" in`,
				`  *":$HOME/.local/bin:"*) ;;`,
				`  *) export PATH="$HOME/.local/bin:$PATH" ;;`,
				`esac`,
				`case ":$PATH:" in`,
				`  *":$HOME/bin:"*) ;;`,
				`  *) export PATH="$HOME/bin:$PATH" ;;`,
				`esac`,
			},
		},
		{
			Name:        "azure-env",
			Description: "azure subscription switcher functions",
			TargetRel:   ".bashrc",
			Block: []string{
				`azsub() {`,
				`  if [ -z "$1" ]; then`,
				`    az account show --query name -o tsv`,
				`    return`,
				`  fi`,
				`  az account set --subscription "$1" && export AZURE_SUBSCRIPTION="$1"`,
				`}`,
				`azls() {`,
				`  az account list --query '[].{name:name, id:id, default:isDefault}' -o table`,
				`}`,
			},
		},
		{
			Name:        "lazygit",
			Description: "lazygit alias with pinned config location",
			TargetRel:   ".bashrc",
			Block: []string{
				`export LG_CONFIG_FILE="$HOME/.config/lazygit/config.yml"`,
				`alias lg='lazygit'`,
			},
		},
		{
			Name:        "k9s",
			Description: "k9s config location and alias",
			TargetRel:   ".bashrc",
			Block: []string{
				`export K9S_CONFIG_DIR="$HOME/.config/k9s"`,
				`alias k9='k9s'`,
			},
		},
	}
}

// Names returns the catalog's feature names in display order.
func Names() []string {
	features := Features()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a catalog feature by name.
func Lookup(name string) (Feature, bool) {
	for _, f := range Features() {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

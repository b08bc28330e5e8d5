package pkgmgr

import (
	"context"
	"io"
	"strings"

	"github.com/rigup-dev/rigup/internal/execx"
)

// Pacman manages packages on Arch-family systems.
type Pacman struct {
	run  execx.Runner
	sudo bool
}

// NewPacman returns the pacman manager. sudo controls whether installs
// are run through sudo.
func NewPacman(run execx.Runner, sudo bool) *Pacman {
	return &Pacman{run: run, sudo: sudo}
}

func (p *Pacman) Name() string { return "pacman" }

// IsInstalled asks the local database. pacman -Qi exits non-zero for
// packages that are not installed.
func (p *Pacman) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	_, err := p.run.Output(ctx, "pacman", "-Qi", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasUpdate checks for a pending upgrade. pacman -Qu exits non-zero when
// the package is already current.
func (p *Pacman) HasUpdate(ctx context.Context, pkg string) (bool, error) {
	out, err := p.run.Output(ctx, "pacman", "-Qu", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// InstallBatch installs all packages in one pacman invocation. --needed
// skips reinstalls of current packages.
func (p *Pacman) InstallBatch(ctx context.Context, w io.Writer, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	name, args := elevate(p.sudo, "pacman", append([]string{"-S", "--needed", "--noconfirm"}, pkgs...))
	return p.run.Stream(ctx, w, name, args...)
}

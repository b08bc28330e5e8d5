package pkgmgr

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rigup-dev/rigup/internal/execx"
	"github.com/rigup-dev/rigup/internal/output"
)

// Paru manages packages through the paru AUR helper, which covers both
// repo and AUR packages. paru refuses to run as root, so Detect never
// hands it to a root process; elevation is paru's own business.
type Paru struct {
	run  execx.Runner
	euid int
}

// NewParu returns the paru manager.
func NewParu(run execx.Runner) *Paru {
	return &Paru{run: run, euid: os.Geteuid()}
}

func (p *Paru) Name() string { return "paru" }

// IsInstalled asks the local database, which covers AUR installs too.
func (p *Paru) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	_, err := p.run.Output(ctx, "paru", "-Qi", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasUpdate checks repo and AUR upgrades. Non-zero exit means current.
func (p *Paru) HasUpdate(ctx context.Context, pkg string) (bool, error) {
	out, err := p.run.Output(ctx, "paru", "-Qu", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// InstallBatch installs all packages in one paru invocation.
func (p *Paru) InstallBatch(ctx context.Context, w io.Writer, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	if p.euid == 0 {
		return output.NewUserError("paru must not run as root; rerun as a regular user")
	}
	return p.run.Stream(ctx, w, "paru", append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)...)
}

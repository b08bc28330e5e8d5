package pkgmgr

import (
	"context"
	"io"
	"strings"

	"github.com/rigup-dev/rigup/internal/execx"
)

// Apt manages packages on Debian-family systems through dpkg and apt.
type Apt struct {
	run  execx.Runner
	sudo bool
}

// NewApt returns the apt manager. sudo controls whether installs are
// run through sudo.
func NewApt(run execx.Runner, sudo bool) *Apt {
	return &Apt{run: run, sudo: sudo}
}

func (a *Apt) Name() string { return "apt" }

// IsInstalled asks dpkg for the package status. dpkg-query exits non-zero
// for packages it has never heard of.
func (a *Apt) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	out, err := a.run.Output(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	return strings.Contains(out, "install ok installed"), nil
}

// HasUpdate parses `apt list --upgradable` for the package. The listing
// prints one `name/suite version` line per upgradable package.
func (a *Apt) HasUpdate(ctx context.Context, pkg string) (bool, error) {
	out, err := a.run.Output(ctx, "apt", "list", "--upgradable", pkg)
	if err != nil {
		if isToolExit(err) {
			return false, nil
		}
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, pkg+"/") {
			return true, nil
		}
	}
	return false, nil
}

// InstallBatch installs all packages in one apt-get invocation.
func (a *Apt) InstallBatch(ctx context.Context, w io.Writer, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	name, args := elevate(a.sudo, "apt-get", append([]string{"install", "-y"}, pkgs...))
	return a.run.Stream(ctx, w, name, args...)
}

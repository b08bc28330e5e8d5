// Package pkgmgr drives the host's native package manager.
//
// A Manager answers presence and update queries per package and installs
// in one batched invocation. The NeedsInstall gate deliberately fails
// toward action: when a query cannot be answered, the package is queued
// for install and the install step surfaces any real problem.
package pkgmgr

import (
	"context"
	"io"
	"os"

	"github.com/rigup-dev/rigup/internal/execx"
	"github.com/rigup-dev/rigup/internal/logging"
	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/sysinfo"
)

// Manager abstracts one package manager CLI.
type Manager interface {
	Name() string
	IsInstalled(ctx context.Context, pkg string) (bool, error)
	HasUpdate(ctx context.Context, pkg string) (bool, error)
	InstallBatch(ctx context.Context, w io.Writer, pkgs []string) error
}

// NeedsInstall reports whether pkg should be part of the install batch:
// not installed, or installed with an update available. Query failures
// count as needing install.
func NeedsInstall(ctx context.Context, m Manager, pkg string) bool {
	log := logging.GetLogger("pkgmgr")

	installed, err := m.IsInstalled(ctx, pkg)
	if err != nil {
		log.Debug().Str("pkg", pkg).Err(err).Msg("presence query failed, queueing for install")
		return true
	}
	if !installed {
		return true
	}

	update, err := m.HasUpdate(ctx, pkg)
	if err != nil {
		log.Debug().Str("pkg", pkg).Err(err).Msg("update query failed, queueing for install")
		return true
	}
	return update
}

// SyncResult partitions a package list into what the batch will install
// and what is already current.
type SyncResult struct {
	Manager string   `json:"manager"`
	Missing []string `json:"missing,omitempty"`
	Current []string `json:"current,omitempty"`
}

// Plan runs the gate over pkgs without installing anything.
func Plan(ctx context.Context, m Manager, pkgs []string) SyncResult {
	res := SyncResult{Manager: m.Name()}
	for _, pkg := range pkgs {
		if NeedsInstall(ctx, m, pkg) {
			res.Missing = append(res.Missing, pkg)
		} else {
			res.Current = append(res.Current, pkg)
		}
	}
	return res
}

// Sync converges the package set: plan, then one batched install of the
// missing packages. Manager output streams to w.
func Sync(ctx context.Context, m Manager, w io.Writer, pkgs []string) (SyncResult, error) {
	res := Plan(ctx, m, pkgs)
	if len(res.Missing) == 0 {
		return res, nil
	}
	if err := m.InstallBatch(ctx, w, res.Missing); err != nil {
		return res, err
	}
	return res, nil
}

// Detect picks the manager for this machine: by distro family first, then
// by binary presence. On Arch, paru is preferred over pacman except for
// root, which paru refuses.
func Detect(family sysinfo.Family, run execx.Runner) (Manager, error) {
	return detectWith(family, run, execx.Available, os.Geteuid())
}

func detectWith(family sysinfo.Family, run execx.Runner, available func(string) bool, euid int) (Manager, error) {
	sudo := euid != 0

	pickArch := func() (Manager, error) {
		if available("paru") && euid != 0 {
			return NewParu(run), nil
		}
		if available("pacman") {
			return NewPacman(run, sudo), nil
		}
		return nil, output.NewSystemError("no pacman or paru binary found on an Arch-family system")
	}

	switch family {
	case sysinfo.FamilyDebian:
		if available("apt-get") {
			return NewApt(run, sudo), nil
		}
		return nil, output.NewSystemError("no apt-get binary found on a Debian-family system")
	case sysinfo.FamilyArch:
		return pickArch()
	default:
		if available("apt-get") {
			return NewApt(run, sudo), nil
		}
		if available("paru") || available("pacman") {
			return pickArch()
		}
		return nil, output.NewSystemError("no supported package manager found (looked for apt-get, paru, pacman)")
	}
}

// elevate prefixes the command with sudo when the manager needs root and
// the process does not have it.
func elevate(sudo bool, name string, args []string) (string, []string) {
	if !sudo {
		return name, args
	}
	return "sudo", append([]string{name}, args...)
}

// isToolExit reports whether err is a non-zero exit from the tool itself.
// Package queries exit non-zero for unknown or up-to-date packages; that
// is an answer, not a failure. Anything else (binary missing, context
// canceled) stays an error.
func isToolExit(err error) bool {
	return output.GetExitCode(err) == output.ExitExternalTool
}

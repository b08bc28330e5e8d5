// Package main provides the entry point for the rigup CLI.
package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/output"
	"github.com/rigup-dev/rigup/internal/pkgmgr"
)

// newPackagesCmd creates the packages command group.
func newPackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Inspect and sync the manifest's package set",
		Long: `Inspect and sync the packages the manifest selects for this
machine's distro family.

The package manager is picked per machine: apt-get on Debian-family
distros, paru or pacman on Arch-family ones. A package needs an install
when it is absent or the manager reports an update; when the query
itself fails, the package is treated as needing an install so a broken
cache never hides missing software.

Examples:
  rigup packages list    # Show the selection for this machine
  rigup packages check   # Query each package's state
  rigup packages sync    # Install whatever is missing`,
	}

	cmd.AddCommand(newPackagesListCmd())
	cmd.AddCommand(newPackagesCheckCmd())
	cmd.AddCommand(newPackagesSyncCmd())

	return cmd
}

// newPackagesListCmd creates the packages list subcommand.
func newPackagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the packages selected for this machine",
		Args:  cobra.NoArgs,
		RunE:  runPackagesList,
	}
}

// newPackagesCheckCmd creates the packages check subcommand.
func newPackagesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Query the install state of each selected package",
		Args:  cobra.NoArgs,
		RunE:  runPackagesCheck,
	}
}

// newPackagesSyncCmd creates the packages sync subcommand.
func newPackagesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Install every selected package that is missing",
		Args:  cobra.NoArgs,
		RunE:  runPackagesSync,
	}
}

// runPackagesList executes the packages list subcommand.
func runPackagesList(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, man, err := loadEnvManifest()
	if err != nil {
		printer.Error(err)
		return err
	}
	pkgs := man.PackagesFor(env.sys.Family)

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"family":   string(env.sys.Family),
			"packages": pkgs,
		})
	}

	if len(pkgs) == 0 {
		printer.Print("No packages selected for the %s family.\n", env.sys.Family)
		return nil
	}

	printer.Section("Packages (" + string(env.sys.Family) + " family)")
	for _, pkg := range pkgs {
		printer.Print("  %s\n", pkg)
	}
	printer.Println()
	return nil
}

// runPackagesCheck executes the packages check subcommand.
func runPackagesCheck(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, man, err := loadEnvManifest()
	if err != nil {
		printer.Error(err)
		return err
	}
	pkgs := man.PackagesFor(env.sys.Family)
	if len(pkgs) == 0 {
		return outputNoPackages(printer, env)
	}

	mgr, err := pkgmgr.Detect(env.sys.Family, env.run)
	if err != nil {
		printer.Error(err)
		return err
	}
	res := pkgmgr.Plan(cmd.Context(), mgr, pkgs)

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"manager": res.Manager,
			"missing": res.Missing,
			"current": res.Current,
		})
	}

	printer.Section("Packages (" + res.Manager + ")")
	rows := make([][]string, 0, len(pkgs))
	for _, pkg := range res.Current {
		rows = append(rows, []string{pkg, "installed"})
	}
	for _, pkg := range res.Missing {
		rows = append(rows, []string{pkg, "needs install"})
	}
	printer.Table([]string{"PACKAGE", "STATE"}, rows)
	printer.Println()
	if len(res.Missing) == 0 {
		printer.Println("All packages current.")
	} else {
		printer.Print("%d package(s) to install. Run 'rigup packages sync'.\n", len(res.Missing))
	}
	return nil
}

// runPackagesSync executes the packages sync subcommand.
func runPackagesSync(cmd *cobra.Command, _ []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	env, man, err := loadEnvManifest()
	if err != nil {
		printer.Error(err)
		return err
	}
	pkgs := man.PackagesFor(env.sys.Family)
	if len(pkgs) == 0 {
		return outputNoPackages(printer, env)
	}

	mgr, err := pkgmgr.Detect(env.sys.Family, env.run)
	if err != nil {
		printer.Error(err)
		return err
	}

	stream := io.Discard
	if !printer.IsJSON() {
		stream = cmd.OutOrStdout()
	}
	res, err := pkgmgr.Sync(cmd.Context(), mgr, stream, pkgs)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"manager":   res.Manager,
			"installed": res.Missing,
			"current":   res.Current,
		})
	}

	printer.Println()
	if len(res.Missing) == 0 {
		printer.Println("All packages current.")
	} else {
		printer.Print("Installed %s via %s.\n", strings.Join(res.Missing, ", "), res.Manager)
	}
	return nil
}

// outputNoPackages reports an empty selection for this family.
func outputNoPackages(printer *output.Printer, env cmdEnv) error {
	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"family":   string(env.sys.Family),
			"packages": []string{},
		})
	}
	printer.Print("No packages selected for the %s family.\n", env.sys.Family)
	return nil
}

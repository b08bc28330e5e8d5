// Package sysinfo probes the host distribution and WSL state.
package sysinfo

import (
	"os"
	"strings"
)

// Family is the package-manager lineage of a distribution.
type Family string

const (
	FamilyDebian  Family = "debian"
	FamilyArch    Family = "arch"
	FamilyUnknown Family = "unknown"
)

// Info describes the host system.
type Info struct {
	Distro string `json:"distro"`
	Family Family `json:"family"`
	WSL    bool   `json:"wsl"`
}

const (
	osReleasePath     = "/etc/os-release"
	kernelReleasePath = "/proc/sys/kernel/osrelease"
)

// Probe inspects /etc/os-release and the kernel release string.
// It never fails: an unreadable or unrecognized system reports
// FamilyUnknown and lets callers fall back to binary detection.
func Probe() Info {
	return probeAt(osReleasePath, kernelReleasePath)
}

func probeAt(osRelease, kernelRelease string) Info {
	info := Info{Family: FamilyUnknown}

	if content, err := os.ReadFile(osRelease); err == nil {
		id, idLike := parseOSRelease(string(content))
		info.Distro = id
		info.Family = classify(id, idLike)
	}

	info.WSL = detectWSL(kernelRelease)
	return info
}

// parseOSRelease extracts the ID and ID_LIKE fields. Values may be quoted;
// ID_LIKE is a space-separated list.
func parseOSRelease(content string) (id string, idLike []string) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = strings.Fields(value)
		}
	}
	return id, idLike
}

// classify maps an os-release identity to a manager family. ID_LIKE lets
// derivatives (CachyOS, Pop!_OS, EndeavourOS) inherit their parent's family.
func classify(id string, idLike []string) Family {
	for _, candidate := range append([]string{id}, idLike...) {
		switch candidate {
		case "debian", "ubuntu":
			return FamilyDebian
		case "arch", "archlinux":
			return FamilyArch
		}
	}
	return FamilyUnknown
}

// detectWSL checks the WSL_DISTRO_NAME environment variable and the kernel
// release string, which carries a "microsoft" token under WSL 1 and 2.
func detectWSL(kernelRelease string) bool {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	content, err := os.ReadFile(kernelRelease)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(content)), "microsoft")
}

// Package main provides the entry point for the rigup CLI.
package main

import (
	"github.com/rigup-dev/rigup/internal/agents"
	"github.com/rigup-dev/rigup/internal/manifest"
	"github.com/rigup-dev/rigup/internal/shellrc"
)

// catalogAll returns the built-in catalog the manifest selects from.
func catalogAll() manifest.Catalog {
	return manifest.Catalog{
		Features: shellrc.Names(),
		Agents:   agents.Names(),
		Skills:   agents.SkillNames(),
	}
}

// loadManifest reads and validates the machine manifest.
func loadManifest(path string) (*manifest.Manifest, error) {
	man, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := man.Validate(catalogAll()); err != nil {
		return nil, err
	}
	return man, nil
}

// loadEnvManifest resolves the environment and loads the manifest, the
// shared preamble of every manifest-backed command.
func loadEnvManifest() (cmdEnv, *manifest.Manifest, error) {
	env, err := resolveEnv()
	if err != nil {
		return cmdEnv{}, nil, err
	}
	man, err := loadManifest(env.manifestPath)
	if err != nil {
		return cmdEnv{}, nil, err
	}
	return env, man, nil
}

// selectedFeatures resolves the manifest's feature names against the
// catalog. The manifest is validated on load, so misses cannot happen
// outside of a racing edit; those are skipped rather than re-reported.
func selectedFeatures(man *manifest.Manifest) []shellrc.Feature {
	feats := make([]shellrc.Feature, 0, len(man.Features))
	for _, name := range man.Features {
		if feat, ok := shellrc.Lookup(name); ok {
			feats = append(feats, feat)
		}
	}
	return feats
}

// selectedAgents resolves the manifest's agent names.
func selectedAgents(man *manifest.Manifest) []agents.Agent {
	sel := make([]agents.Agent, 0, len(man.Agents))
	for _, name := range man.Agents {
		if agent, ok := agents.Get(name); ok {
			sel = append(sel, agent)
		}
	}
	return sel
}

// selectionSkills resolves the skill subset for agent installs. Before
// a manifest exists the full catalog applies, so one-off installs work
// right after checkout.
func selectionSkills(manifestPath string) []string {
	if man, err := loadManifest(manifestPath); err == nil {
		return man.SelectedSkills(agents.SkillNames())
	}
	return agents.SkillNames()
}

// driftedSurfaces returns the surface names that are not installed.
func driftedSurfaces(checks []agents.SurfaceCheck) []string {
	var drifted []string
	for _, sc := range checks {
		if sc.State != agents.StateInstalled {
			drifted = append(drifted, sc.Surface)
		}
	}
	return drifted
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"texbox/internal/buildenv"
	"texbox/internal/config"
	"texbox/internal/container"
	"texbox/internal/gitver"
)

// devVersion is the image version used when the project root is not a git
// worktree.
const devVersion = "dev"

// newEngine resolves the configured container engine.
func newEngine(cfg *config.Config) (container.Engine, error) {
	engine, err := container.NewEngine(container.EngineType(cfg.Engine))
	if err != nil {
		return nil, err
	}
	slog.Debug("container engine selected", "engine", engine.Name())
	return engine, nil
}

// projectRoot is the directory texbox operates in. All configured relative
// paths are anchored here.
func projectRoot() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return root, nil
}

// resolveVersion derives the image version from the project's git state,
// falling back to a fixed development version outside a worktree.
func resolveVersion(root string) string {
	v, err := gitver.Resolve(root)
	if err != nil {
		slog.Debug("git version unavailable", "error", err)
		return devVersion
	}
	return v.String()
}

// containerSpec assembles the container description for `texbox up`: host
// paths made absolute, the running executable bind-mounted as the entry
// stage, the configured in-container layout carried along.
func containerSpec(cfg *config.Config, root string, img buildenv.Image) (buildenv.ContainerSpec, error) {
	self, err := os.Executable()
	if err != nil {
		return buildenv.ContainerSpec{}, fmt.Errorf("resolve own executable: %w", err)
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		return buildenv.ContainerSpec{}, fmt.Errorf("resolve own executable: %w", err)
	}

	spec := buildenv.ContainerSpec{
		Image:       img,
		HostSource:  filepath.Join(root, cfg.Paths.Source),
		HostOutput:  filepath.Join(root, cfg.Paths.Output),
		EntryBinary: self,
		Layout:      cfg.Container,
	}

	if _, err := os.Stat(spec.HostSource); err != nil {
		return buildenv.ContainerSpec{}, fmt.Errorf("source directory %s: %w", spec.HostSource, err)
	}
	if err := os.MkdirAll(spec.HostOutput, 0o755); err != nil {
		return buildenv.ContainerSpec{}, fmt.Errorf("prepare output directory: %w", err)
	}

	// The resources mount is optional; projects without shared assets
	// simply do not have the directory.
	resources := filepath.Join(root, cfg.Paths.Resources)
	if info, err := os.Stat(resources); err == nil && info.IsDir() {
		spec.HostResources = resources
	}

	return spec, nil
}

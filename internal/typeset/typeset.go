// SPDX-License-Identifier: MPL-2.0

// Package typeset drives document builds inside the running build container
// and manages the artifacts they produce on the host.
package typeset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"mvdan.cc/sh/v3/shell"

	"texbox/internal/config"
	"texbox/internal/container"
	"texbox/internal/entry"
	"texbox/pkg/types"
)

// Runner executes the configured build command in the build container.
type Runner struct {
	engine container.Engine
	cfg    *config.Config
	// projectRoot anchors the host-side source and output paths.
	projectRoot string
}

// NewRunner creates a Runner bound to an engine and project configuration.
func NewRunner(engine container.Engine, cfg *config.Config, projectRoot string) *Runner {
	return &Runner{engine: engine, cfg: cfg, projectRoot: projectRoot}
}

// Streams carries the output destinations of one build.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// SplitCommand splits the configured build command with shell quoting rules.
// References to the container layout variables (TEXBOX_WORKDIR and friends)
// are expanded so the configured command can name in-container paths without
// hardcoding them.
func (r *Runner) SplitCommand() ([]string, error) {
	fields, err := shell.Fields(r.cfg.Build.Command, r.layoutVar)
	if err != nil {
		return nil, fmt.Errorf("split build command: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("build command is empty")
	}
	return fields, nil
}

// layoutVar resolves the container layout variables used inside the build
// command. Unknown variables expand to nothing, matching shell behavior.
func (r *Runner) layoutVar(name string) string {
	switch name {
	case entry.EnvWorkDir:
		return r.cfg.Container.WorkDir
	case entry.EnvSourceDir:
		return r.cfg.Container.SourceDir
	case entry.EnvResourcesDir:
		return r.cfg.Container.ResourcesDir
	case entry.EnvOutputDir:
		return r.cfg.Container.OutputDir
	default:
		return ""
	}
}

// OutputDir is the host directory artifacts are written to.
func (r *Runner) OutputDir() string {
	return filepath.Join(r.projectRoot, r.cfg.Paths.Output)
}

// ArtifactPath is the host path of the primary build artifact.
func (r *Runner) ArtifactPath() string {
	return filepath.Join(r.OutputDir(), r.cfg.Build.Artifact)
}

// Build runs the configured build command in the named container, through
// the entry stage, and reports the resulting exit code. A non-zero exit code
// is not an error; infrastructure failures are.
func (r *Runner) Build(ctx context.Context, name container.ContainerName, streams Streams) (types.ExitCode, error) {
	command, err := r.SplitCommand()
	if err != nil {
		return types.ExitCodeGeneralError, err
	}

	if err := os.MkdirAll(r.OutputDir(), 0o755); err != nil {
		return types.ExitCodeGeneralError, fmt.Errorf("prepare output directory: %w", err)
	}

	slog.Debug("running build command", "container", name, "command", command)
	result, err := r.engine.Exec(ctx, name, entry.WrapCommand(command), container.ExecOptions{
		Stdout: streams.Stdout,
		Stderr: streams.Stderr,
	})
	if err != nil {
		return types.ExitCodeGeneralError, fmt.Errorf("exec build command: %w", err)
	}
	if result.Error != nil {
		return result.ExitCode, fmt.Errorf("exec build command: %w", result.Error)
	}

	if result.ExitCode.IsSuccess() {
		r.ReportArtifact()
	}
	return result.ExitCode, nil
}

// ReportArtifact logs the primary artifact and its size. A missing artifact
// after a successful build is worth a warning, not a failure; the configured
// command decides what it produces.
func (r *Runner) ReportArtifact() {
	info, err := os.Stat(r.ArtifactPath())
	if err != nil {
		slog.Warn("build succeeded but artifact is missing", "artifact", r.ArtifactPath())
		return
	}
	slog.Info("artifact written",
		"artifact", r.ArtifactPath(),
		"size", humanize.IBytes(uint64(info.Size())))
}

// Clean removes the host output directory and stray editor backup files
// (*~) from the source directory. It reports the number of filesystem
// entries removed.
func (r *Runner) Clean() (int, error) {
	removed := 0

	outputDir := r.OutputDir()
	if _, err := os.Stat(outputDir); err == nil {
		if err := os.RemoveAll(outputDir); err != nil {
			return removed, fmt.Errorf("remove output directory: %w", err)
		}
		slog.Info("output directory removed", "dir", outputDir)
		removed++
	}

	sourceDir := filepath.Join(r.projectRoot, r.cfg.Paths.Source)
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return removed, nil
		}
		return removed, fmt.Errorf("scan source directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "~") {
			continue
		}
		path := filepath.Join(sourceDir, e.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove backup file %s: %w", path, err)
		}
		slog.Debug("backup file removed", "file", path)
		removed++
	}
	return removed, nil
}

// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"texbox/internal/config"
	"texbox/internal/container"
	"texbox/internal/entry"
)

// ContainerSpec describes the build container to bootstrap for one image.
type ContainerSpec struct {
	// Image is the project image the container is created from.
	Image Image
	// HostSource is the absolute host path of the document sources.
	HostSource string
	// HostResources is the absolute host path of shared assets
	// (empty to skip the mount).
	HostResources string
	// HostOutput is the absolute host path artifacts are written to.
	HostOutput string
	// EntryBinary is the absolute host path of the texbox executable,
	// bind-mounted into the container as the entry stage.
	EntryBinary string
	// Layout is the in-container filesystem layout.
	Layout config.ContainerConfig
}

// Bootstrap recreates and starts the single named build container.
type Bootstrap struct {
	engine container.Engine
	prefix string
}

// NewBootstrap creates a Bootstrap for the given engine and project prefix.
func NewBootstrap(engine container.Engine, prefix string) *Bootstrap {
	return &Bootstrap{engine: engine, prefix: prefix}
}

// Recreate ensures exactly one build container of the fixed name exists,
// bound to the most recently built image: any existing container is
// force-removed first (a "no such container" failure is ignored), then a new
// privileged, interactive-TTY container is created and started. Nothing is
// preserved across recreation; all state lives in the bind mounts.
func (b *Bootstrap) Recreate(ctx context.Context, spec ContainerSpec) error {
	name := ContainerNameFor(b.prefix, spec.Image.Name)
	image := LatestImageTag(b.prefix, spec.Image.Name)

	exists, err := b.engine.ImageExists(ctx, image)
	if err != nil {
		return fmt.Errorf("check image %s: %w", image, err)
	}
	if !exists {
		return fmt.Errorf("image %s does not exist; run 'texbox build' first", image)
	}

	if err := b.engine.Remove(ctx, name, true); err != nil {
		if errors.Is(err, container.ErrContainerNotFound) {
			// Expected first-run path.
			slog.Debug("no previous container", "container", name)
		} else {
			slog.Warn("previous container not removed", "container", name, "error", err)
		}
	}

	opts, err := b.createOptions(spec, name)
	if err != nil {
		return err
	}

	if err := b.engine.Create(ctx, opts); err != nil {
		return fmt.Errorf("create container %s: %w", name, err)
	}
	if err := b.engine.Start(ctx, name); err != nil {
		return fmt.Errorf("start container %s: %w", name, err)
	}

	slog.Info("build container ready", "container", name, "image", opts.Image)
	return nil
}

// Start starts the existing build container for an image.
func (b *Bootstrap) Start(ctx context.Context, img Image) error {
	name := ContainerNameFor(b.prefix, img.Name)

	exists, err := b.engine.ContainerExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check container %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("container %s does not exist; run 'texbox up' first", name)
	}

	if err := b.engine.Start(ctx, name); err != nil {
		return fmt.Errorf("start container %s: %w", name, err)
	}
	return nil
}

// ContainerName returns the build container name for an image.
func (b *Bootstrap) ContainerName(img Image) container.ContainerName {
	return ContainerNameFor(b.prefix, img.Name)
}

// RunOnce runs a command through the entry stage in a one-shot privileged
// container, removed on exit. It is the fallback when no long-lived build
// container exists.
func (b *Bootstrap) RunOnce(ctx context.Context, spec ContainerSpec, command []string, stdout, stderr io.Writer) (*container.RunResult, error) {
	opts, err := b.createOptions(spec, ContainerNameFor(b.prefix, spec.Image.Name))
	if err != nil {
		return nil, err
	}

	return b.engine.Run(ctx, container.RunOptions{
		Image: opts.Image,
		// No entrypoint override in a one-shot run; the wrapped command
		// invokes the entry stage directly.
		Command:    entry.WrapCommand(command),
		Env:        opts.Env,
		Volumes:    opts.Volumes,
		Privileged: true,
		Remove:     true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
}

func (b *Bootstrap) createOptions(spec ContainerSpec, name container.ContainerName) (container.CreateOptions, error) {
	if spec.HostSource == "" || spec.HostOutput == "" || spec.EntryBinary == "" {
		return container.CreateOptions{}, fmt.Errorf("container spec for %s is missing host paths", name)
	}

	uid, gid := hostIDs()

	volumes := []container.VolumeMount{
		{
			HostPath:      container.HostFilesystemPath(spec.HostSource),
			ContainerPath: container.MountTargetPath(spec.Layout.SourceDir),
			ReadOnly:      true,
		},
		{
			HostPath:      container.HostFilesystemPath(spec.HostOutput),
			ContainerPath: container.MountTargetPath(spec.Layout.OutputDir),
		},
		{
			HostPath:      container.HostFilesystemPath(spec.EntryBinary),
			ContainerPath: container.MountTargetPath(entry.BinaryPath),
			ReadOnly:      true,
		},
	}
	if spec.HostResources != "" {
		volumes = append(volumes, container.VolumeMount{
			HostPath:      container.HostFilesystemPath(spec.HostResources),
			ContainerPath: container.MountTargetPath(spec.Layout.ResourcesDir),
			ReadOnly:      true,
		})
	}

	return container.CreateOptions{
		Image: LatestImageTag(b.prefix, spec.Image.Name),
		Name:  name,
		// Privileged mode exists solely so the entry stage may perform
		// the union mount.
		Privileged:  true,
		Interactive: true,
		TTY:         true,
		Env: map[string]string{
			entry.EnvWorkDir:      spec.Layout.WorkDir,
			entry.EnvSourceDir:    spec.Layout.SourceDir,
			entry.EnvOutputDir:    spec.Layout.OutputDir,
			entry.EnvResourcesDir: spec.Layout.ResourcesDir,
			entry.EnvHostUID:      strconv.Itoa(uid),
			entry.EnvHostGID:      strconv.Itoa(gid),
		},
		Volumes:    volumes,
		Entrypoint: entry.BinaryPath,
		// The entry stage mounts the union view, then keeps the container
		// alive for subsequent execs.
		Command: []string{"entry", "--", "sleep", "infinity"},
	}, nil
}

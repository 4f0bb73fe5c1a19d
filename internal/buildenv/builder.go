// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"texbox/internal/container"
)

const (
	// fallbackID is used for the account build arguments on platforms
	// where the invoking user has no numeric identity (matches the
	// Dockerfile ARG defaults).
	fallbackID = 1000

	// versionBuildArg carries the project version into the image.
	versionBuildArg = "TEXBOX_VERSION"
)

// Builder builds project images against a container engine.
type Builder struct {
	engine  container.Engine
	prefix  string
	version string
	// projectRoot anchors relative context directories.
	projectRoot string
}

// BuildStreams carries the output destinations and cache policy of one build.
type BuildStreams struct {
	Stdout  io.Writer
	Stderr  io.Writer
	NoCache bool
}

// NewBuilder creates a Builder for the given engine, project prefix and
// version string.
func NewBuilder(engine container.Engine, prefix, version, projectRoot string) *Builder {
	return &Builder{
		engine:      engine,
		prefix:      prefix,
		version:     version,
		projectRoot: projectRoot,
	}
}

// Tags returns the tags applied to a built image: the versioned tag first,
// then the floating latest alias.
func (b *Builder) Tags(img Image) []container.ImageTag {
	return []container.ImageTag{
		VersionedTag(b.prefix, img.Name, b.version),
		LatestImageTag(b.prefix, img.Name),
	}
}

// Build builds one project image. The host user's numeric identity is
// threaded in as build arguments so the in-container account matches the
// operator and bind-mounted files keep sane ownership.
func (b *Builder) Build(ctx context.Context, img Image, streams BuildStreams) error {
	uid, gid := hostIDs()

	buildArgs := map[string]string{
		"HOST_USER_UID": strconv.Itoa(uid),
		"HOST_USER_GID": strconv.Itoa(gid),
		versionBuildArg: b.version,
	}
	for k, v := range img.BuildArgs {
		buildArgs[k] = v
	}

	contextDir := img.ContextDir
	if !filepath.IsAbs(contextDir) {
		contextDir = filepath.Join(b.projectRoot, contextDir)
	}

	slog.Debug("building image",
		"image", FullName(b.prefix, img.Name),
		"version", b.version,
		"context", contextDir,
		"uid", uid, "gid", gid)

	err := b.engine.Build(ctx, container.BuildOptions{
		ContextDir: contextDir,
		Dockerfile: img.Dockerfile,
		Tags:       b.Tags(img),
		BuildArgs:  buildArgs,
		NoCache:    streams.NoCache,
		Stdout:     streams.Stdout,
		Stderr:     streams.Stderr,
	})
	if err != nil {
		return fmt.Errorf("build image %s: %w", FullName(b.prefix, img.Name), err)
	}
	return nil
}

// hostIDs returns the invoking user's numeric identity, falling back to the
// Dockerfile defaults where the platform reports none.
func hostIDs() (uid, gid int) {
	uid, gid = os.Getuid(), os.Getgid()
	if uid < 0 {
		uid = fallbackID
	}
	if gid < 0 {
		gid = fallbackID
	}
	return uid, gid
}

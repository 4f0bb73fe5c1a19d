// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"fmt"

	"texbox/internal/container"
)

const (
	// LatestTag is the floating alias applied alongside every version tag.
	LatestTag = "latest"

	// ToolLatexImage is the typesetting toolchain image.
	ToolLatexImage = "toollatex"
)

// Image declares one buildable project image.
type Image struct {
	// Name is the short image name, combined with the project prefix.
	Name string
	// ContextDir is the build context, relative to the project root.
	ContextDir string
	// Dockerfile is the Dockerfile path relative to ContextDir
	// (empty means the engine default).
	Dockerfile string
	// BuildArgs are image-specific build arguments, merged with the
	// host identity and version arguments at build time.
	BuildArgs map[string]string
}

// DefaultImages returns the images this project defines.
func DefaultImages() []Image {
	return []Image{
		{
			Name:       ToolLatexImage,
			ContextDir: "contrib/toollatex",
		},
	}
}

// ImageByName returns the declared image with the given short name.
func ImageByName(name string) (Image, error) {
	for _, img := range DefaultImages() {
		if img.Name == name {
			return img, nil
		}
	}
	return Image{}, fmt.Errorf("unknown image %q", name)
}

// FullName combines the project prefix and a short image name.
func FullName(prefix, name string) string {
	return fmt.Sprintf("%s-%s", prefix, name)
}

// VersionedTag returns the image tag for a specific project version.
func VersionedTag(prefix, name, version string) container.ImageTag {
	return container.ImageTag(FullName(prefix, name) + ":" + version)
}

// LatestImageTag returns the floating "latest" tag for an image.
func LatestImageTag(prefix, name string) container.ImageTag {
	return container.ImageTag(FullName(prefix, name) + ":" + LatestTag)
}

// ContainerNameFor returns the name of the build container for an image.
// Image and container share the name; at most one such container exists.
func ContainerNameFor(prefix, name string) container.ContainerName {
	return container.ContainerName(FullName(prefix, name))
}

// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"texbox/internal/container"
)

// Cleaner removes stale containers and superseded images of a project.
type Cleaner struct {
	engine container.Engine
	prefix string
}

// NewCleaner creates a Cleaner for the given engine and project prefix.
func NewCleaner(engine container.Engine, prefix string) *Cleaner {
	return &Cleaner{engine: engine, prefix: prefix}
}

// CleanResult reports what one Clean call removed.
type CleanResult struct {
	// ContainersRemoved counts removed containers.
	ContainersRemoved int
	// ImagesRemoved counts removed image versions.
	ImagesRemoved int
}

// Clean removes every container whose name matches the image's full name,
// then removes all but the most recently created version of the image.
// The newest image always survives so the next `texbox up` has something to
// bind to.
func (c *Cleaner) Clean(ctx context.Context, img Image) (CleanResult, error) {
	result := CleanResult{}
	fullName := FullName(c.prefix, img.Name)

	ids, err := c.engine.Containers(ctx, fullName)
	if err != nil {
		return result, fmt.Errorf("list containers for %s: %w", fullName, err)
	}
	for _, id := range ids {
		if err := c.engine.Remove(ctx, container.ContainerName(id), true); err != nil {
			return result, fmt.Errorf("remove container %s: %w", id, err)
		}
		slog.Info("container removed", "id", id)
		result.ContainersRemoved++
	}

	images, err := c.engine.Images(ctx, fullName)
	if err != nil {
		return result, fmt.Errorf("list images for %s: %w", fullName, err)
	}
	for _, image := range allButNewest(images) {
		if err := c.engine.RemoveImage(ctx, container.ImageTag(image.ID), true); err != nil {
			return result, fmt.Errorf("remove image %s: %w", image.ID, err)
		}
		slog.Info("image removed", "image", fullName, "id", image.ID)
		result.ImagesRemoved++
	}

	return result, nil
}

// allButNewest returns the images to discard: everything except the most
// recently created one. Duplicate IDs (the versioned tag and the latest
// alias share an ID) are collapsed first.
func allButNewest(images []container.ImageInfo) []container.ImageInfo {
	seen := make(map[string]bool, len(images))
	unique := make([]container.ImageInfo, 0, len(images))
	for _, img := range images {
		if seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		unique = append(unique, img)
	}

	if len(unique) <= 1 {
		return nil
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].CreatedAt.Before(unique[j].CreatedAt)
	})
	return unique[:len(unique)-1]
}

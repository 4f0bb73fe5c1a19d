// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"texbox/pkg/types"
)

// Engine defines the interface for container operations.
type Engine interface {
	// Name returns the engine name (docker or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile
	Build(ctx context.Context, opts BuildOptions) error
	// Create creates (but does not start) a named container
	Create(ctx context.Context, opts CreateOptions) error
	// Start starts a previously created container
	Start(ctx context.Context, name ContainerName) error
	// Run runs a command in a one-shot container
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// Exec runs a command in a running container
	Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*RunResult, error)
	// Remove removes a container
	Remove(ctx context.Context, name ContainerName, force bool) error
	// Containers lists container IDs whose names match the given filter
	Containers(ctx context.Context, nameFilter string) ([]ContainerID, error)
	// ContainerExists reports whether a container with the exact name exists
	ContainerExists(ctx context.Context, name ContainerName) (bool, error)
	// ImageExists checks if an image exists
	ImageExists(ctx context.Context, image ImageTag) (bool, error)
	// Images lists images matching a repository reference
	Images(ctx context.Context, reference string) ([]ImageInfo, error)
	// RemoveImage removes an image
	RemoveImage(ctx context.Context, image ImageTag, force bool) error
}

// BuildOptions contains options for building an image.
type BuildOptions struct {
	// ContextDir is the build context directory
	ContextDir string
	// Dockerfile is the path to the Dockerfile (relative to ContextDir)
	Dockerfile string
	// Tags are the image tags to apply (at least one)
	Tags []ImageTag
	// BuildArgs are build-time variables
	BuildArgs map[string]string
	// NoCache disables the build cache
	NoCache bool
	// Stdout is where to write build output
	Stdout io.Writer
	// Stderr is where to write build errors
	Stderr io.Writer
}

// CreateOptions contains options for creating a long-lived container.
type CreateOptions struct {
	// Image is the image to create the container from
	Image ImageTag
	// Name is the container name
	Name ContainerName
	// Privileged grants expanded host permissions (required for the
	// in-container union mount)
	Privileged bool
	// Interactive keeps stdin open
	Interactive bool
	// TTY allocates a pseudo-TTY
	TTY bool
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// Volumes are the volume mounts
	Volumes []VolumeMount
	// Entrypoint overrides the image entrypoint
	Entrypoint string
	// Command is the command passed to the entrypoint
	Command []string
}

// RunOptions contains options for running a one-shot container.
type RunOptions struct {
	// Image is the image to run
	Image ImageTag
	// Command is the command to run
	Command []string
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// Volumes are the volume mounts
	Volumes []VolumeMount
	// Privileged grants expanded host permissions
	Privileged bool
	// Remove automatically removes the container after exit
	Remove bool
	// Name is the container name
	Name ContainerName
	// Interactive enables interactive mode
	Interactive bool
	// TTY allocates a pseudo-TTY
	TTY bool
	// Stdin is the standard input
	Stdin io.Reader
	// Stdout is where to write standard output
	Stdout io.Writer
	// Stderr is where to write standard error
	Stderr io.Writer
}

// ExecOptions contains options for executing a command in a running container.
type ExecOptions struct {
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// Interactive keeps stdin open
	Interactive bool
	// TTY allocates a pseudo-TTY
	TTY bool
	// Stdin is the standard input
	Stdin io.Reader
	// Stdout is where to write standard output
	Stdout io.Writer
	// Stderr is where to write standard error
	Stderr io.Writer
}

// RunResult contains the result of running a command in a container.
type RunResult struct {
	// ContainerName is the container the command ran in (if named)
	ContainerName ContainerName
	// ExitCode is the exit code
	ExitCode types.ExitCode
	// Error contains any infrastructure error (binary not found, etc.);
	// command failures are reported through ExitCode only
	Error error
}

// ImageInfo describes one locally stored image.
type ImageInfo struct {
	// ID is the image identifier
	ID string
	// CreatedAt is the image creation time
	CreatedAt time.Time
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
	// EngineTypeAuto selects whichever engine is available, Docker first.
	EngineTypeAuto EngineType = "auto"
)

// ErrContainerNotFound is wrapped by Remove when the named container does
// not exist. Callers recreating a container ignore it; any other remove
// failure points at the engine itself.
var ErrContainerNotFound = errors.New("container not found")

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Podman
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Docker
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeAuto:
		return AutoDetectEngine()

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine, Docker first.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}

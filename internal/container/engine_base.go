// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"texbox/pkg/types"
)

// imageCreatedAtLayout is the timestamp layout produced by the engine CLI's
// {{.CreatedAt}} template verb (docker and podman agree on it).
const imageCreatedAtLayout = "2006-01-02 15:04:05 -0700 MST"

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc formats a volume mount as the -v flag value.
	// Podman uses this to add SELinux labels (:z) which are required in
	// SELinux-enforcing environments — without them, container processes
	// cannot access bind-mounted host paths.
	VolumeFormatFunc func(v VolumeMount) string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides common implementation for CLI-based container
	// engines. Docker and Podman engines embed this struct; methods that are
	// identical across engines live here, engine-specific methods (Available,
	// Version) remain on the concrete types.
	BaseCLIEngine struct {
		name            string
		binaryPath      HostFilesystemPath
		execCommand     ExecCommandFunc
		volumeFormatter VolumeFormatFunc
	}
)

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithVolumeFormatter sets a custom volume formatter function.
// This is used by Podman to add SELinux labels on Linux.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.volumeFormatter = fn
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath HostFilesystemPath, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:      binaryPath,
		execCommand:     exec.CommandContext,
		volumeFormatter: func(v VolumeMount) string { return v.String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return string(e.binaryPath)
}

// --- Option Validation ---

// Validate returns an error if the BuildOptions reference no context
// directory or carry an invalid tag.
func (o BuildOptions) Validate() error {
	var errs []error
	if strings.TrimSpace(o.ContextDir) == "" {
		errs = append(errs, &InvalidHostFilesystemPathError{Value: HostFilesystemPath(o.ContextDir)})
	}
	for _, tag := range o.Tags {
		if err := tag.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate returns an error if the CreateOptions carry an invalid image,
// name, or volume mount.
func (o CreateOptions) Validate() error {
	var errs []error
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate returns an error if the RunOptions carry an invalid image or
// volume mount.
func (o RunOptions) Validate() error {
	var errs []error
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// --- Argument Builders ---

// BuildArgs constructs arguments for an image build command.
//
// Generated command: <binary> build [options] <context>
func (e *BaseCLIEngine) BuildArgs(opts BuildOptions) []string {
	args := []string{"build"}

	if opts.Dockerfile != "" {
		// Resolve Dockerfile path relative to context directory.
		// If ContextDir is empty, the Dockerfile path is used as-is.
		dockerfilePath := opts.Dockerfile
		if !filepath.IsAbs(dockerfilePath) && opts.ContextDir != "" {
			dockerfilePath = filepath.Join(opts.ContextDir, dockerfilePath)
		}
		args = append(args, "-f", dockerfilePath)
	}

	for _, tag := range opts.Tags {
		args = append(args, "-t", string(tag))
	}

	if opts.NoCache {
		args = append(args, "--no-cache")
	}

	for k, v := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, opts.ContextDir)

	return args
}

// CreateArgs constructs arguments for a container create command.
//
// Generated command: <binary> create [options] <image> [command...]
func (e *BaseCLIEngine) CreateArgs(opts CreateOptions) []string {
	args := []string{"create", "--name", string(opts.Name)}

	if opts.Privileged {
		args = append(args, "--privileged")
	}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v))
	}

	if opts.Entrypoint != "" {
		args = append(args, "--entrypoint", opts.Entrypoint)
	}

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return args
}

// RunArgs constructs arguments for a container run command.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if opts.Name != "" {
		args = append(args, "--name", string(opts.Name))
	}

	if opts.Privileged {
		args = append(args, "--privileged")
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v))
	}

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return args
}

// ExecArgs constructs arguments for a container exec command.
//
// Generated command: <binary> exec [options] <container> <command...>
func (e *BaseCLIEngine) ExecArgs(name ContainerName, command []string, opts ExecOptions) []string {
	args := []string{"exec"}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, string(name))
	args = append(args, command...)

	return args
}

// StartArgs constructs arguments for a container start command.
func (e *BaseCLIEngine) StartArgs(name ContainerName) []string {
	return []string{"start", string(name)}
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(name ContainerName, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(name))
	return args
}

// RemoveImageArgs constructs arguments for an image remove command.
func (e *BaseCLIEngine) RemoveImageArgs(image ImageTag, force bool) []string {
	args := []string{"rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(image))
	return args
}

// ContainersArgs constructs arguments for listing containers by name filter.
// Stopped containers are included; created-but-unstarted ones must be listed.
func (e *BaseCLIEngine) ContainersArgs(nameFilter string) []string {
	return []string{"ps", "-a", "--filter", "name=" + nameFilter, "--format", "{{.ID}}"}
}

// ImagesArgs constructs arguments for listing images by repository reference.
func (e *BaseCLIEngine) ImagesArgs(reference string) []string {
	return []string{"images", "--filter", "reference=" + reference, "--format", "{{.ID}}\t{{.CreatedAt}}"}
}

// --- Command Execution ---

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", string(e.binaryPath), args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", string(e.binaryPath), args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, string(e.binaryPath), args...)
}

// --- Promoted Engine Methods (shared by Docker and Podman) ---

// Build builds an image from a Dockerfile.
// It validates BuildOptions before executing to catch invalid fields early.
func (e *BaseCLIEngine) Build(ctx context.Context, opts BuildOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	args := e.BuildArgs(opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s build of %s failed: %w", e.name, opts.ContextDir, err)
	}

	return nil
}

// Create creates a named container without starting it.
func (e *BaseCLIEngine) Create(ctx context.Context, opts CreateOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.CreateArgs(opts)...)
}

// Start starts a previously created container.
func (e *BaseCLIEngine) Start(ctx context.Context, name ContainerName) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.StartArgs(name)...)
}

// Run runs a command in a one-shot container and returns the result.
// A non-zero exit code is captured in RunResult.ExitCode (not returned as
// error). Only infrastructure failures (binary not found, etc.) set
// RunResult.Error.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	args := e.RunArgs(opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	return e.resultFromRun(cmd.Run(), opts.Name), nil
}

// Exec runs a command in a running container.
func (e *BaseCLIEngine) Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*RunResult, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}

	args := e.ExecArgs(name, command, opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	return e.resultFromRun(cmd.Run(), name), nil
}

// Remove removes a container. Removing a container that does not exist
// returns an error wrapping ErrContainerNotFound, so callers can treat the
// first-run path differently from a dead engine.
func (e *BaseCLIEngine) Remove(ctx context.Context, name ContainerName, force bool) error {
	cmd := e.CreateCommand(ctx, e.RemoveArgs(name, force)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isNotFoundOutput(stderr.String()) {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return fmt.Errorf("command %s rm %s failed: %w", string(e.binaryPath), name, err)
	}
	return nil
}

// isNotFoundOutput matches the engines' "no such container" diagnostics
// (docker says "No such container", podman "no container with name").
func isNotFoundOutput(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "no such container") ||
		strings.Contains(s, "no container with name")
}

// RemoveImage removes an image.
func (e *BaseCLIEngine) RemoveImage(ctx context.Context, image ImageTag, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveImageArgs(image, force)...)
}

// ImageExists checks if an image exists locally. A non-zero inspect exit
// means the image is absent; any other failure (engine binary missing,
// daemon unreachable) is an error, not a verdict.
func (e *BaseCLIEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	if err := image.Validate(); err != nil {
		return false, err
	}

	cmd := e.CreateCommand(ctx, "image", "inspect", string(image))
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("command %s image inspect %s failed: %w", string(e.binaryPath), image, err)
}

// Containers lists container IDs whose names match the given filter.
func (e *BaseCLIEngine) Containers(ctx context.Context, nameFilter string) ([]ContainerID, error) {
	out, err := e.RunCommandWithOutput(ctx, e.ContainersArgs(nameFilter)...)
	if err != nil {
		return nil, err
	}

	var ids []ContainerID
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, ContainerID(line))
		}
	}
	return ids, nil
}

// ContainerExists reports whether a container with the exact name exists,
// running or not.
func (e *BaseCLIEngine) ContainerExists(ctx context.Context, name ContainerName) (bool, error) {
	// The name filter is a substring match; anchor it and compare names.
	out, err := e.RunCommandWithOutput(ctx,
		"ps", "-a", "--filter", "name="+string(name), "--format", "{{.Names}}")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == string(name) {
			return true, nil
		}
	}
	return false, nil
}

// Images lists images matching a repository reference, newest first order is
// NOT guaranteed by the engine; callers sort by CreatedAt as needed.
func (e *BaseCLIEngine) Images(ctx context.Context, reference string) ([]ImageInfo, error) {
	out, err := e.RunCommandWithOutput(ctx, e.ImagesArgs(reference)...)
	if err != nil {
		return nil, err
	}
	return parseImageList(out)
}

// parseImageList parses "<id>\t<created_at>" lines from the images template.
func parseImageList(out string) ([]ImageInfo, error) {
	var infos []ImageInfo
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, createdAt, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed image list line %q", line)
		}
		created, err := time.Parse(imageCreatedAtLayout, strings.TrimSpace(createdAt))
		if err != nil {
			return nil, fmt.Errorf("parse image creation time %q: %w", createdAt, err)
		}
		infos = append(infos, ImageInfo{ID: id, CreatedAt: created})
	}
	return infos, nil
}

// resultFromRun converts an exec.Cmd.Run error into a RunResult.
func (e *BaseCLIEngine) resultFromRun(err error, name ContainerName) *RunResult {
	result := &RunResult{ContainerName: name}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = types.ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}
	return result
}

// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"context"
	"fmt"

	"texbox/internal/container"
)

// fakeEngine is an in-memory container.Engine that records the operations
// performed against it.
type fakeEngine struct {
	calls []string

	buildOpts  []container.BuildOptions
	createOpts []container.CreateOptions
	runOpts    []container.RunOptions

	removeErr      error
	createErr      error
	startErr       error
	imageMissing   bool
	imageExistsErr error
	containers     []container.ContainerID
	images         []container.ImageInfo
	existing       map[container.ContainerName]bool
	removedImages  []container.ImageTag
	removedNames   []container.ContainerName
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{existing: make(map[container.ContainerName]bool)}
}

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Available() bool { return true }

func (f *fakeEngine) Version(context.Context) (string, error) { return "0.0-fake", nil }

func (f *fakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	f.calls = append(f.calls, "build")
	f.buildOpts = append(f.buildOpts, opts)
	return nil
}

func (f *fakeEngine) Create(_ context.Context, opts container.CreateOptions) error {
	f.calls = append(f.calls, "create")
	f.createOpts = append(f.createOpts, opts)
	return f.createErr
}

func (f *fakeEngine) Start(_ context.Context, name container.ContainerName) error {
	f.calls = append(f.calls, "start "+string(name))
	return f.startErr
}

func (f *fakeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	f.calls = append(f.calls, "run")
	f.runOpts = append(f.runOpts, opts)
	return &container.RunResult{}, nil
}

func (f *fakeEngine) Exec(_ context.Context, name container.ContainerName, _ []string, _ container.ExecOptions) (*container.RunResult, error) {
	f.calls = append(f.calls, "exec "+string(name))
	return &container.RunResult{ContainerName: name}, nil
}

func (f *fakeEngine) Remove(_ context.Context, name container.ContainerName, force bool) error {
	call := "rm " + string(name)
	if force {
		call = "rm -f " + string(name)
	}
	f.calls = append(f.calls, call)
	f.removedNames = append(f.removedNames, name)
	return f.removeErr
}

func (f *fakeEngine) Containers(context.Context, string) ([]container.ContainerID, error) {
	f.calls = append(f.calls, "ps")
	return f.containers, nil
}

func (f *fakeEngine) ContainerExists(_ context.Context, name container.ContainerName) (bool, error) {
	f.calls = append(f.calls, "exists "+string(name))
	return f.existing[name], nil
}

func (f *fakeEngine) ImageExists(_ context.Context, image container.ImageTag) (bool, error) {
	f.calls = append(f.calls, "img? "+string(image))
	if f.imageExistsErr != nil {
		return false, f.imageExistsErr
	}
	return !f.imageMissing, nil
}

func (f *fakeEngine) Images(context.Context, string) ([]container.ImageInfo, error) {
	f.calls = append(f.calls, "images")
	return f.images, nil
}

func (f *fakeEngine) RemoveImage(_ context.Context, image container.ImageTag, _ bool) error {
	f.calls = append(f.calls, "rmi "+string(image))
	f.removedImages = append(f.removedImages, image)
	return nil
}

var _ container.Engine = (*fakeEngine)(nil)

// errNotFound simulates the engine's "no such container" failure.
var errNotFound = fmt.Errorf("%w: texbox-toollatex", container.ErrContainerNotFound)

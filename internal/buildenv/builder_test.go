// SPDX-License-Identifier: MPL-2.0

package buildenv

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"
)

func TestBuilderTags(t *testing.T) {
	t.Parallel()

	b := NewBuilder(newFakeEngine(), "texbox", "main-2026-08-30-abc1234", "/proj")
	tags := b.Tags(Image{Name: ToolLatexImage})

	if len(tags) != 2 {
		t.Fatalf("len(Tags()) = %d, want 2", len(tags))
	}
	if string(tags[0]) != "texbox-toollatex:main-2026-08-30-abc1234" {
		t.Errorf("versioned tag = %q", tags[0])
	}
	if string(tags[1]) != "texbox-toollatex:latest" {
		t.Errorf("latest tag = %q", tags[1])
	}
}

func TestBuilderBuildOptions(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	b := NewBuilder(engine, "texbox", "v1", "/proj")
	img := Image{
		Name:       ToolLatexImage,
		ContextDir: "contrib/toollatex",
		BuildArgs:  map[string]string{"TEXLIVE_MIRROR": "https://mirror.example"},
	}

	var out bytes.Buffer
	err := b.Build(context.Background(), img, BuildStreams{Stdout: &out, Stderr: &out, NoCache: true})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(engine.buildOpts) != 1 {
		t.Fatalf("build calls = %d, want 1", len(engine.buildOpts))
	}
	opts := engine.buildOpts[0]

	if want := filepath.Join("/proj", "contrib/toollatex"); opts.ContextDir != want {
		t.Errorf("ContextDir = %q, want %q", opts.ContextDir, want)
	}
	if !opts.NoCache {
		t.Error("NoCache was not propagated")
	}

	uid, gid := hostIDs()
	if got := opts.BuildArgs["HOST_USER_UID"]; got != strconv.Itoa(uid) {
		t.Errorf("HOST_USER_UID = %q, want %q", got, strconv.Itoa(uid))
	}
	if got := opts.BuildArgs["HOST_USER_GID"]; got != strconv.Itoa(gid) {
		t.Errorf("HOST_USER_GID = %q, want %q", got, strconv.Itoa(gid))
	}
	if got := opts.BuildArgs[versionBuildArg]; got != "v1" {
		t.Errorf("%s = %q, want v1", versionBuildArg, got)
	}
	if got := opts.BuildArgs["TEXLIVE_MIRROR"]; got != "https://mirror.example" {
		t.Errorf("image build args were not merged, TEXLIVE_MIRROR = %q", got)
	}
}

func TestBuilderAbsoluteContextDirKept(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	b := NewBuilder(engine, "texbox", "v1", "/proj")

	img := Image{Name: ToolLatexImage, ContextDir: "/elsewhere/ctx"}
	if err := b.Build(context.Background(), img, BuildStreams{}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := engine.buildOpts[0].ContextDir; got != "/elsewhere/ctx" {
		t.Errorf("ContextDir = %q, want /elsewhere/ctx", got)
	}
}

func TestImageByName(t *testing.T) {
	t.Parallel()

	img, err := ImageByName(ToolLatexImage)
	if err != nil {
		t.Fatalf("ImageByName(%q) error = %v", ToolLatexImage, err)
	}
	if img.ContextDir == "" {
		t.Error("declared image has no context directory")
	}

	if _, err := ImageByName("nosuch"); err == nil {
		t.Error("ImageByName(nosuch) error = nil, want unknown image failure")
	}
}

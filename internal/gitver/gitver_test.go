// SPDX-License-Identifier: MPL-2.0

package gitver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initTestRepo creates a repository with a single commit on the default branch
// and returns its directory.
func initTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "main.tex"), []byte("\\documentclass{article}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Add("main.tex"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "tester",
			Email: "tester@example.com",
			When:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir
}

func TestResolve_VersionFormat(t *testing.T) {
	dir := initTestRepo(t)

	v, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if v.Branch != "master" {
		t.Errorf("Branch = %q, want %q", v.Branch, "master")
	}
	if len(v.ShortHash) != shortHashLen {
		t.Errorf("ShortHash = %q, want %d characters", v.ShortHash, shortHashLen)
	}
	if v.Dirty {
		t.Error("Dirty = true for a clean worktree")
	}

	want := "master-2026-08-30-" + v.ShortHash
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestResolve_BranchEnvOverride(t *testing.T) {
	dir := initTestRepo(t)
	t.Setenv(branchEnvOverride, "release/v2")

	v, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Branch != "release/v2" {
		t.Errorf("Branch = %q, want CI override %q", v.Branch, "release/v2")
	}
	if !strings.HasPrefix(v.String(), "release-v2-") {
		t.Errorf("String() = %q, want tag-safe branch prefix %q", v.String(), "release-v2-")
	}
}

func TestResolve_DetachedHead(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	v, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Branch != "detached" {
		t.Errorf("Branch = %q, want %q on a detached HEAD", v.Branch, "detached")
	}
	if strings.HasPrefix(v.String(), "HEAD-") {
		t.Errorf("String() = %q, must not start with the literal ref name", v.String())
	}
}

func TestResolve_DirtySuffix(t *testing.T) {
	dir := initTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "untracked.tex"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !v.Dirty {
		t.Error("Dirty = false with an untracked file present")
	}
	if !strings.HasSuffix(v.String(), "-dirty") {
		t.Errorf("String() = %q, want -dirty suffix", v.String())
	}
}

func TestResolve_NotARepository(t *testing.T) {
	if _, err := Resolve(t.TempDir()); err == nil {
		t.Error("Resolve on a plain directory = nil error, want error")
	}
}

func TestDirModified(t *testing.T) {
	dir := initTestRepo(t)
	if err := os.MkdirAll(filepath.Join(dir, "resume"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "resume", "body.tex"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	modified, err := DirModified(dir, "resume")
	if err != nil {
		t.Fatalf("DirModified: %v", err)
	}
	if !modified {
		t.Error("DirModified = false with an untracked file under resume/")
	}

	// A sibling directory with no changes must not be flagged.
	modified, err = DirModified(dir, "resources")
	if err != nil {
		t.Fatalf("DirModified: %v", err)
	}
	if modified {
		t.Error("DirModified = true for an untouched directory")
	}
}

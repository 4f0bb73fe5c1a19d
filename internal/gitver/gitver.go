// SPDX-License-Identifier: MPL-2.0

// Package gitver derives the project version from the state of the git
// repository that holds the document sources. The version string doubles as
// the image tag, so every toolchain image is traceable to the commit it was
// built from.
package gitver

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
)

const (
	// branchEnvOverride names the CI environment variable that takes
	// precedence over the checked-out branch (CI runners check out a
	// detached HEAD).
	branchEnvOverride = "CI_COMMIT_REF_NAME"

	shortHashLen = 7
)

// tagUnsafe matches characters that are not allowed in an image tag.
var tagUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// Version describes the repository state a build is derived from.
type Version struct {
	// Branch is the branch name (possibly overridden by CI)
	Branch string
	// CommitDate is the author date of the head commit
	CommitDate time.Time
	// ShortHash is the abbreviated head commit hash
	ShortHash string
	// Dirty reports whether the worktree has uncommitted or untracked changes
	Dirty bool
}

// String formats the version as "<branch>-<date>-<shorthash>[-dirty]",
// with the branch made safe for use in an image tag.
func (v Version) String() string {
	s := fmt.Sprintf("%s-%s-%s",
		sanitizeBranch(v.Branch),
		v.CommitDate.Format("2006-01-02"),
		v.ShortHash)
	if v.Dirty {
		s += "-dirty"
	}
	return s
}

// Resolve determines the project version from the repository containing dir.
func Resolve(dir string) (Version, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Version{}, fmt.Errorf("open git repository at %s: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Version{}, fmt.Errorf("resolve repository head: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return Version{}, fmt.Errorf("read head commit %s: %w", head.Hash(), err)
	}

	branch := os.Getenv(branchEnvOverride)
	if branch == "" {
		if head.Name().IsBranch() {
			branch = head.Name().Short()
		} else {
			// A detached HEAD outside CI has no ref name worth tagging.
			branch = "detached"
		}
	}

	dirty, err := worktreeDirty(repo)
	if err != nil {
		return Version{}, err
	}

	return Version{
		Branch:     branch,
		CommitDate: commit.Author.When,
		ShortHash:  head.Hash().String()[:shortHashLen],
		Dirty:      dirty,
	}, nil
}

// DirModified reports whether the given path (relative to the repository
// root) has modified or untracked files. Used to warn when building from
// sources that differ from the committed state.
func DirModified(dir, rel string) (bool, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return false, fmt.Errorf("open git repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("read worktree status: %w", err)
	}

	prefix := strings.TrimSuffix(rel, "/") + "/"
	for path, fileStatus := range status {
		if path != rel && !strings.HasPrefix(path, prefix) {
			continue
		}
		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

func worktreeDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("read worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

func sanitizeBranch(branch string) string {
	return tagUnsafe.ReplaceAllString(branch, "-")
}

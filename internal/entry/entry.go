// SPDX-License-Identifier: MPL-2.0

// Package entry implements the in-container entry stage: it mounts a union
// view of the document sources onto the working directory, changes into it,
// drops to the unprivileged host-matched account, and executes the requested
// command. It runs as PID 1 of the build container (keeping it alive) and as
// the wrapper of every exec into it.
package entry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/user"
	"strconv"
	"strings"
)

// fallbackAccount is the account baked into the image; it is used when the
// host group ID resolves to nothing in the container's group table.
const fallbackAccount = "texbox"

var (
	// ErrNoCommand is returned when the entry stage is invoked without a
	// command line to execute.
	ErrNoCommand = errors.New("no command to execute")
	// ErrWorkDirUnavailable is returned when the working directory cannot
	// be entered. The command is never run from the wrong location.
	ErrWorkDirUnavailable = errors.New("working directory unavailable")
)

// Options is the fully resolved entry stage configuration.
type Options struct {
	// WorkDir is the union mount point and working directory.
	WorkDir string
	// SourceDir is the read-only document source directory layered on top.
	SourceDir string
	// UID and GID are the numeric identity the command runs as.
	UID int
	GID int
	// Command is the command line to execute after the pivot.
	Command []string
}

// LookupFunc reports an environment variable's value, mirroring os.Getenv.
type LookupFunc func(key string) string

// OptionsFromEnv builds Options from the container environment and the
// command line passed after the separator.
func OptionsFromEnv(getenv LookupFunc, command []string) (Options, error) {
	opts := Options{
		WorkDir:   getenv(EnvWorkDir),
		SourceDir: getenv(EnvSourceDir),
		Command:   command,
	}
	if opts.WorkDir == "" {
		return Options{}, fmt.Errorf("%s is not set", EnvWorkDir)
	}
	if opts.SourceDir == "" {
		return Options{}, fmt.Errorf("%s is not set", EnvSourceDir)
	}
	if len(command) == 0 {
		return Options{}, ErrNoCommand
	}

	var err error
	if opts.UID, err = parseID(getenv, EnvHostUID); err != nil {
		return Options{}, err
	}
	if opts.GID, err = parseID(getenv, EnvHostGID); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func parseID(getenv LookupFunc, key string) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is not set", key)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s is not a valid id: %q", key, raw)
	}
	return id, nil
}

// overlayData renders the overlay filesystem mount data string: the source
// directory is the read-only lower layer, writes land in the scratch upper
// layer.
func overlayData(lower, upper, work string) string {
	return fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", lower, upper, work)
}

// overlayMounted reports whether an overlay filesystem is already mounted at
// target, given the contents of the kernel mount table
// (/proc/self/mounts). Restarting a container re-runs the entry stage
// against an already prepared filesystem; the mount must not be repeated.
func overlayMounted(mounts io.Reader, target string) bool {
	scanner := bufio.NewScanner(mounts)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		if fields[1] == target && fields[2] == "overlay" {
			return true
		}
	}
	return false
}

// accountName resolves the in-container account to run as: the group table
// entry matching the host group ID wins, the baked-in account is the
// fallback.
func accountName(gid int) string {
	group, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return fallbackAccount
	}
	return group.Name
}

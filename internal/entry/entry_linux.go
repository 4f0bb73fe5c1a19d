// SPDX-License-Identifier: MPL-2.0

package entry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// scratchDir holds the overlay upper and work layers. It lives outside the
// bind mounts so writes into the union view never touch the read-only
// sources.
const scratchDir = "/tmp/texbox-overlay"

const mountTable = "/proc/self/mounts"

// sysOps bundles the kernel-facing calls the entry sequence performs, so the
// sequence itself can be tested without root or a mount namespace.
type sysOps struct {
	openMounts func() (io.ReadCloser, error)
	mkdirAll   func(path string, perm os.FileMode) error
	mount      func(source, target, fstype string, flags uintptr, data string) error
	chown      func(path string, uid, gid int) error
	chdir      func(dir string) error
	setgroups  func(gids []int) error
	setgid     func(gid int) error
	setuid     func(uid int) error
	lookPath   func(file string) (string, error)
	execve     func(argv0 string, argv, envv []string) error
}

func defaultSysOps() sysOps {
	return sysOps{
		openMounts: func() (io.ReadCloser, error) { return os.Open(mountTable) },
		mkdirAll:   os.MkdirAll,
		mount:      unix.Mount,
		chown:      os.Chown,
		chdir:      os.Chdir,
		setgroups:  unix.Setgroups,
		setgid:     unix.Setgid,
		setuid:     unix.Setuid,
		lookPath:   exec.LookPath,
		execve:     unix.Exec,
	}
}

// Run performs the entry sequence: union-mount the sources onto the working
// directory, change into it, drop to the host-matched identity, and replace
// the process with the requested command. It only returns on error.
func (o Options) Run() error {
	return o.run(defaultSysOps())
}

func (o Options) run(sys sysOps) error {
	if err := o.mountUnion(sys); err != nil {
		return err
	}
	if err := sys.chdir(o.WorkDir); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkDirUnavailable, err)
	}
	if err := o.dropPrivileges(sys); err != nil {
		return err
	}
	return o.exec(sys)
}

// mountUnion layers the read-only source directory onto the working
// directory. A mount left over from a previous start of the same container
// is reused.
func (o Options) mountUnion(sys sysOps) error {
	table, err := sys.openMounts()
	if err != nil {
		return fmt.Errorf("read mount table: %w", err)
	}
	mounted := overlayMounted(table, o.WorkDir)
	table.Close()
	if mounted {
		slog.Debug("union mount already present", "target", o.WorkDir)
		return nil
	}

	upper := filepath.Join(scratchDir, "upper")
	work := filepath.Join(scratchDir, "work")
	for _, dir := range []string{o.WorkDir, upper, work} {
		if err := sys.mkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare %s: %w", dir, err)
		}
	}

	data := overlayData(o.SourceDir, upper, work)
	if err := sys.mount("overlay", o.WorkDir, "overlay", 0, data); err != nil {
		return fmt.Errorf("mount overlay on %s: %w", o.WorkDir, err)
	}
	if err := sys.chown(o.WorkDir, o.UID, o.GID); err != nil {
		return fmt.Errorf("chown %s: %w", o.WorkDir, err)
	}
	slog.Debug("union mount ready", "source", o.SourceDir, "target", o.WorkDir)
	return nil
}

// dropPrivileges switches to the host-matched identity. Order matters:
// supplementary groups and the group ID must be set while still root.
func (o Options) dropPrivileges(sys sysOps) error {
	if err := sys.setgroups([]int{o.GID}); err != nil {
		return fmt.Errorf("setgroups %d: %w", o.GID, err)
	}
	if err := sys.setgid(o.GID); err != nil {
		return fmt.Errorf("setgid %d: %w", o.GID, err)
	}
	if err := sys.setuid(o.UID); err != nil {
		return fmt.Errorf("setuid %d: %w", o.UID, err)
	}
	return nil
}

// exec replaces the entry process with the requested command.
func (o Options) exec(sys sysOps) error {
	path, err := sys.lookPath(o.Command[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", o.Command[0], err)
	}

	account := accountName(o.GID)
	env := append(os.Environ(),
		"USER="+account,
		"LOGNAME="+account,
		"HOME="+filepath.Join("/home", account),
	)

	if err := sys.execve(path, o.Command, env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package container

import "os"

// selinuxEnabled reports whether SELinux is present on this host.
// Presence of the selinuxfs mount point is the same signal podman itself uses.
func selinuxEnabled() bool {
	fi, err := os.Stat("/sys/fs/selinux")
	return err == nil && fi.IsDir()
}

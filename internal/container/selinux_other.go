// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package container

// selinuxEnabled always reports false on non-Linux hosts.
func selinuxEnabled() bool { return false }

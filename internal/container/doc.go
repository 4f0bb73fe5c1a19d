// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container runtimes
// (Docker/Podman). texbox drives the engine CLI binaries directly; every
// operation is a single blocking external-process invocation whose exit
// status is surfaced to the caller unchanged.
package container

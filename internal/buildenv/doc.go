// SPDX-License-Identifier: MPL-2.0

// Package buildenv manages the project's toolchain images and the single
// named build container created from them. Image names follow the
// "<prefix>-<name>" convention and are tagged with the git-derived project
// version plus a "latest" alias; the container carries the same name as its
// image and is recreated wholesale whenever the image changes.
package buildenv

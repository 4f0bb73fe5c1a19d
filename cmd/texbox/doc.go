// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for texbox.
//
// This package implements the Cobra command hierarchy: image building,
// container lifecycle, document builds, cleanup, and the hidden in-container
// entry stage.
package cmd

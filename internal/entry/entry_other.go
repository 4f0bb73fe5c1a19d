// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package entry

import "errors"

// ErrUnsupportedPlatform is returned when the entry stage runs outside a
// Linux container.
var ErrUnsupportedPlatform = errors.New("the entry stage only runs inside a Linux container")

// Run is unavailable off Linux; the union mount and identity switch are
// Linux kernel operations.
func (o Options) Run() error {
	return ErrUnsupportedPlatform
}

// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SELinuxLabelNone means no SELinux label is applied to volume mounts.
	SELinuxLabelNone SELinuxLabel = ""
	// SELinuxLabelShared allows sharing the volume between containers.
	SELinuxLabelShared SELinuxLabel = "z"
	// SELinuxLabelPrivate restricts the volume to a single container.
	SELinuxLabelPrivate SELinuxLabel = "Z"
)

var (
	// ErrInvalidImageTag is the sentinel error wrapped by InvalidImageTagError.
	ErrInvalidImageTag = errors.New("invalid image tag")

	// ErrInvalidContainerName is the sentinel error wrapped by InvalidContainerNameError.
	ErrInvalidContainerName = errors.New("invalid container name")

	// ErrInvalidSELinuxLabel is the sentinel error wrapped by InvalidSELinuxLabelError.
	ErrInvalidSELinuxLabel = errors.New("invalid SELinux label")

	// ErrInvalidHostFilesystemPath is the sentinel error wrapped by InvalidHostFilesystemPathError.
	ErrInvalidHostFilesystemPath = errors.New("invalid host filesystem path")

	// ErrInvalidMountTargetPath is the sentinel error wrapped by InvalidMountTargetPathError.
	ErrInvalidMountTargetPath = errors.New("invalid container filesystem path")

	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")
)

type (
	// ImageTag identifies a container image ("name[:tag]").
	// A valid tag must be non-empty and not whitespace-only.
	ImageTag string

	// InvalidImageTagError is returned when an ImageTag is empty or whitespace-only.
	InvalidImageTagError struct {
		Value ImageTag
	}

	// ContainerID is an engine-assigned container identifier.
	ContainerID string

	// ContainerName is an operator-assigned container name.
	// A valid name must be non-empty and not whitespace-only.
	ContainerName string

	// InvalidContainerNameError is returned when a ContainerName is empty or whitespace-only.
	InvalidContainerNameError struct {
		Value ContainerName
	}

	// SELinuxLabel represents an SELinux volume labeling option.
	// The zero value ("") means no SELinux label is applied.
	SELinuxLabel string

	// InvalidSELinuxLabelError is returned when an SELinuxLabel is not a recognized label.
	InvalidSELinuxLabelError struct {
		Value SELinuxLabel
	}

	// HostFilesystemPath represents a filesystem path on the host for volume mounts.
	// A valid path must be non-empty and not whitespace-only.
	HostFilesystemPath string

	// InvalidHostFilesystemPathError is returned when a HostFilesystemPath is empty or whitespace-only.
	InvalidHostFilesystemPathError struct {
		Value HostFilesystemPath
	}

	// MountTargetPath represents a filesystem path inside a container for volume mounts.
	// A valid path must be non-empty and not whitespace-only.
	MountTargetPath string

	// InvalidMountTargetPathError is returned when a MountTargetPath is empty or whitespace-only.
	InvalidMountTargetPathError struct {
		Value MountTargetPath
	}

	// VolumeMount represents a volume mount specification.
	VolumeMount struct {
		HostPath      HostFilesystemPath
		ContainerPath MountTargetPath
		ReadOnly      bool
		SELinux       SELinuxLabel
	}

	// InvalidVolumeMountError is returned when a VolumeMount has one or more invalid fields.
	// It wraps the individual field validation errors for inspection.
	InvalidVolumeMountError struct {
		Value     VolumeMount
		FieldErrs []error
	}
)

// String returns the string representation of the ImageTag.
func (t ImageTag) String() string { return string(t) }

// Validate returns an error if the ImageTag is empty or whitespace-only.
func (t ImageTag) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidImageTagError{Value: t}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidImageTagError) Error() string {
	return fmt.Sprintf("invalid image tag %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidImageTag for errors.Is() compatibility.
func (e *InvalidImageTagError) Unwrap() error { return ErrInvalidImageTag }

// String returns the string representation of the ContainerName.
func (n ContainerName) String() string { return string(n) }

// Validate returns an error if the ContainerName is empty or whitespace-only.
func (n ContainerName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return &InvalidContainerNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidContainerNameError) Error() string {
	return fmt.Sprintf("invalid container name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidContainerName for errors.Is() compatibility.
func (e *InvalidContainerNameError) Unwrap() error { return ErrInvalidContainerName }

// String returns the string representation of the SELinuxLabel.
func (s SELinuxLabel) String() string { return string(s) }

// Validate returns an error if the SELinuxLabel is not one of the defined labels.
// The zero value ("") is valid — it means no SELinux label.
func (s SELinuxLabel) Validate() error {
	switch s {
	case SELinuxLabelNone, SELinuxLabelShared, SELinuxLabelPrivate:
		return nil
	default:
		return &InvalidSELinuxLabelError{Value: s}
	}
}

// Error implements the error interface.
func (e *InvalidSELinuxLabelError) Error() string {
	return fmt.Sprintf("invalid SELinux label %q (valid: empty, z, Z)", e.Value)
}

// Unwrap returns ErrInvalidSELinuxLabel for errors.Is() compatibility.
func (e *InvalidSELinuxLabelError) Unwrap() error { return ErrInvalidSELinuxLabel }

// String returns the string representation of the HostFilesystemPath.
func (p HostFilesystemPath) String() string { return string(p) }

// Validate returns an error if the HostFilesystemPath is empty or whitespace-only.
func (p HostFilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidHostFilesystemPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidHostFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid host filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostFilesystemPath for errors.Is() compatibility.
func (e *InvalidHostFilesystemPathError) Unwrap() error { return ErrInvalidHostFilesystemPath }

// String returns the string representation of the MountTargetPath.
func (p MountTargetPath) String() string { return string(p) }

// Validate returns an error if the MountTargetPath is empty or whitespace-only.
func (p MountTargetPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidMountTargetPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidMountTargetPathError) Error() string {
	return fmt.Sprintf("invalid container filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidMountTargetPath for errors.Is() compatibility.
func (e *InvalidMountTargetPathError) Unwrap() error { return ErrInvalidMountTargetPath }

// Validate returns an error if any typed field of the VolumeMount is invalid.
func (v VolumeMount) Validate() error {
	var errs []error
	if err := v.HostPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := v.ContainerPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := v.SELinux.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidVolumeMountError{Value: v, FieldErrs: errs}
	}
	return nil
}

// String returns the volume mount in "host:container[:opts]" format for the -v flag.
func (v VolumeMount) String() string {
	var b strings.Builder
	b.WriteString(string(v.HostPath))
	b.WriteString(":")
	b.WriteString(string(v.ContainerPath))

	var options []string
	if v.ReadOnly {
		options = append(options, "ro")
	}
	if v.SELinux != "" {
		options = append(options, string(v.SELinux))
	}
	if len(options) > 0 {
		b.WriteString(":")
		b.WriteString(strings.Join(options, ","))
	}
	return b.String()
}

// Error implements the error interface.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %s:%s: %d field error(s)",
		e.Value.HostPath, e.Value.ContainerPath, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidVolumeMount for errors.Is() compatibility.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

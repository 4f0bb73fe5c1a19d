// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// EngineDocker uses Docker as the container runtime.
	EngineDocker EngineName = "docker"
	// EnginePodman uses Podman as the container runtime.
	EnginePodman EngineName = "podman"
	// EngineAuto selects whichever engine is available.
	EngineAuto EngineName = "auto"
)

var (
	// ErrInvalidEngineName is the sentinel error wrapped by InvalidEngineNameError.
	ErrInvalidEngineName = errors.New("invalid container engine")

	// ErrInvalidImagePrefix is the sentinel error wrapped by InvalidImagePrefixError.
	ErrInvalidImagePrefix = errors.New("invalid image prefix")

	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	// imagePrefixPattern is the repository-name alphabet accepted by the engines.
	imagePrefixPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)
)

type (
	// EngineName specifies which container runtime to use.
	EngineName string

	// InvalidEngineNameError is returned when an EngineName value is not recognized.
	InvalidEngineNameError struct {
		Value EngineName
	}

	// ImagePrefix is the repository-name prefix shared by all project images
	// and containers.
	ImagePrefix string

	// InvalidImagePrefixError is returned when an ImagePrefix is empty or not
	// a valid repository-name component.
	InvalidImagePrefixError struct {
		Value ImagePrefix
	}

	// InvalidConfigError aggregates the field validation errors of a Config.
	InvalidConfigError struct {
		FieldErrs []error
	}
)

// String returns the string representation of the EngineName.
func (n EngineName) String() string { return string(n) }

// Validate returns an error if the EngineName is not one of the defined engines.
func (n EngineName) Validate() error {
	switch n {
	case EngineDocker, EnginePodman, EngineAuto:
		return nil
	default:
		return &InvalidEngineNameError{Value: n}
	}
}

// Error implements the error interface.
func (e *InvalidEngineNameError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman, auto)", e.Value)
}

// Unwrap returns ErrInvalidEngineName for errors.Is() compatibility.
func (e *InvalidEngineNameError) Unwrap() error { return ErrInvalidEngineName }

// String returns the string representation of the ImagePrefix.
func (p ImagePrefix) String() string { return string(p) }

// Validate returns an error if the ImagePrefix is not a valid repository-name
// component.
func (p ImagePrefix) Validate() error {
	if !imagePrefixPattern.MatchString(string(p)) {
		return &InvalidImagePrefixError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidImagePrefixError) Error() string {
	return fmt.Sprintf("invalid image prefix %q: must be a lowercase repository-name component", e.Value)
}

// Unwrap returns ErrInvalidImagePrefix for errors.Is() compatibility.
func (e *InvalidImagePrefixError) Unwrap() error { return ErrInvalidImagePrefix }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrs))
	for _, err := range e.FieldErrs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

package domain

import (
	"errors"
	"fmt"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

var (
	// ErrUnresolvableRoot aborts a scan that has no root documents.
	ErrUnresolvableRoot = errors.New("no root documents available")
	// ErrInvalidTransition is returned when the relocation state machine is driven out of order.
	ErrInvalidTransition = errors.New("invalid relocation state transition")
	// ErrConfirmationDeclined is returned when the caller withholds a confirmation.
	ErrConfirmationDeclined = errors.New("confirmation declined")
	// ErrInvalidMaxSize is returned for a max size outside AllowedMaxSizes.
	ErrInvalidMaxSize = errors.New("invalid max size")
)

// ShaderTargetMissingError aborts a shader fix batch before any material is touched.
type ShaderTargetMissingError struct {
	Target string
	Err    error
}

func (e *ShaderTargetMissingError) Error() string {
	return fmt.Sprintf("shader target %q cannot be resolved: %v", e.Target, e.Err)
}

func (e *ShaderTargetMissingError) Unwrap() error {
	return e.Err
}

// MissingResourceWarning marks a node, or a relocation source, without a backing file.
type MissingResourceWarning struct {
	Path m.Path
}

func (w *MissingResourceWarning) Error() string {
	return fmt.Sprintf("resource missing: %s", w.Path)
}

// RelocationItemError is a failed move of a single item.
type RelocationItemError struct {
	Path m.Path
	Err  error
}

func (e *RelocationItemError) Error() string {
	return fmt.Sprintf("relocate %s: %v", e.Path, e.Err)
}

func (e *RelocationItemError) Unwrap() error {
	return e.Err
}

package comps

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidIdentifier is returned for ids that are not namespace:path.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrRegistryFrozen is returned when registering after initialization.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrRegistryFull is returned once MaxComponents keys are registered.
	ErrRegistryFull = errors.New("component limit exceeded")

	// ErrMalformedPacket is returned when a sync packet cannot be decoded.
	ErrMalformedPacket = errors.New("malformed sync packet")

	// ErrUnknownKind is returned when a sync packet targets a kind without a blueprint.
	ErrUnknownKind = errors.New("unknown host kind")

	// ErrExecutorClosed is returned when work is submitted to a stopped executor.
	ErrExecutorClosed = errors.New("executor closed")
)

// RegistrationConflictError reports an identifier that was already registered
// with a different component type.
type RegistrationConflictError struct {
	ID       Identifier
	Existing reflect.Type
	Wanted   reflect.Type
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("component %s already registered as %v, cannot register as %v", e.ID, e.Existing, e.Wanted)
}

// MissingComponentError reports a Get for a key the container's blueprint
// does not declare. It is a programmer error: callers handling optional
// components should check IsProvidedBy first.
type MissingComponentError struct {
	Key  Identifier
	Kind Kind
}

func (e *MissingComponentError) Error() string {
	return fmt.Sprintf("component %s is not provided by %s", e.Key, e.Kind)
}

// BlueprintConstructionError reports a provider callback that failed while a
// kind's blueprint was first built.
type BlueprintConstructionError struct {
	Kind     Kind
	Provider string
	// Key is the component being added when the failure happened, if known.
	Key Identifier
	Err error
}

func (e *BlueprintConstructionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("building blueprint for %s: provider %s, component %s: %v", e.Kind, e.Provider, e.Key, e.Err)
	}
	return fmt.Sprintf("building blueprint for %s: provider %s: %v", e.Kind, e.Provider, e.Err)
}

func (e *BlueprintConstructionError) Unwrap() error {
	return e.Err
}

// DocumentError reports a component that could not be read from a document.
// The component is left at its default state.
type DocumentError struct {
	Key Identifier
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("reading component %s: %v", e.Key, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// recoverError converts a recovered panic value into an error.
func recoverError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

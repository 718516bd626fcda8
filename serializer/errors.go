package serializer

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors, matchable with errors.Is.
var (
	// ErrNoSerializer is returned when no serializer could be resolved for a
	// type through any of the custom, library-default or kind tiers.
	ErrNoSerializer = errors.New("no serializer found for type")

	// ErrUnsupportedKind is returned when a scalar type has no nullable
	// equivalent to substitute.
	ErrUnsupportedKind = errors.New("unsupported scalar to nullable conversion")
)

// NoSerializerError carries the type that failed resolution.
type NoSerializerError struct {
	Type reflect.Type
}

func (e *NoSerializerError) Error() string {
	return fmt.Sprintf("no serializer found for type %s", e.Type)
}

func (e *NoSerializerError) Is(target error) bool {
	return target == ErrNoSerializer
}

// UnsupportedKindError carries the scalar type with no nullable mapping.
type UnsupportedKindError struct {
	Type reflect.Type
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("scalar type %s has no nullable equivalent", e.Type)
}

func (e *UnsupportedKindError) Is(target error) bool {
	return target == ErrUnsupportedKind
}

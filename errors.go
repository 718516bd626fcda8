package litemap

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/chmenegatti/litemap/serializer"
)

// Sentinel errors, matchable with errors.Is.
var (
	// ErrAccess is returned when field access on a record is rejected.
	ErrAccess = errors.New("field access rejected")

	// ErrInstantiation is returned when a linked entity type cannot be
	// constructed during row scanning.
	ErrInstantiation = errors.New("cannot instantiate linked entity")

	// ErrUnsupportedStorageType is returned when a serializer reports a
	// storage type outside the SQLite set; it indicates a serializer bug.
	ErrUnsupportedStorageType = errors.New("unsupported storage type")
)

// AccessError reports a rejected field read or write on a record instance.
type AccessError struct {
	Entity string
	Field  string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("entity %q field %q: access rejected", e.Entity, e.Field)
}

func (e *AccessError) Is(target error) bool {
	return target == ErrAccess
}

// InstantiationError reports a linked entity type that could not be
// default-constructed while populating a foreign field.
type InstantiationError struct {
	Entity string
	Field  string
	Type   reflect.Type
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("entity %q field %q: cannot instantiate linked type %s", e.Entity, e.Field, e.Type)
}

func (e *InstantiationError) Is(target error) bool {
	return target == ErrInstantiation
}

// UnsupportedStorageTypeError reports a serializer declaring a storage type
// outside the fixed SQLite set.
type UnsupportedStorageTypeError struct {
	Entity      string
	Column      string
	StorageType serializer.StorageType
}

func (e *UnsupportedStorageTypeError) Error() string {
	return fmt.Sprintf("entity %q column %q: storage type %d is not a SQLite storage class", e.Entity, e.Column, int(e.StorageType))
}

func (e *UnsupportedStorageTypeError) Is(target error) bool {
	return target == ErrUnsupportedStorageType
}

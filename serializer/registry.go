package serializer

import (
	"reflect"
	"sync"
)

// Registry resolves serializers for Go types. Resolution precedence is
// custom-registered > library-default-for-exact-type > kind-derived-default.
//
// The custom table is the only mutable state; Register/Unregister take the
// write lock while lookups take the read lock, so in-flight resolutions see
// either the pre- or post-mutation table, never a partial one.
type Registry struct {
	mu     sync.RWMutex
	custom map[reflect.Type]Serializer
}

// NewRegistry returns an empty registry. Most callers use the package-level
// Default registry; isolated registries exist so tests do not leak
// registrations into each other.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[reflect.Type]Serializer)}
}

// Default is the process-wide registry consulted by the entity parser.
var Default = NewRegistry()

// Register installs a custom serializer for t, shadowing any library default
// or kind-derived serializer for that type, including built-in handling of
// types like time.Time or bool.
func (r *Registry) Register(t reflect.Type, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[normalizeType(t)] = s
}

// Unregister removes the custom serializer for t, restoring default
// resolution for subsequent lookups.
func (r *Registry) Unregister(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.custom, normalizeType(t))
}

// Lookup returns the custom or library-default serializer for t, or nil when
// only a kind-derived default could apply.
func (r *Registry) Lookup(t reflect.Type) Serializer {
	key := normalizeType(t)
	r.mu.RLock()
	s, ok := r.custom[key]
	r.mu.RUnlock()
	if ok {
		return s
	}
	return libraryDefault(t)
}

// Resolve returns the serializer for t, walking the three tiers in order.
// nullableAs is forwarded to the kind classification (see KindOf). A miss in
// all tiers fails with NoSerializerError.
func (r *Registry) Resolve(t reflect.Type, nullableAs bool) (Serializer, error) {
	if s := r.Lookup(t); s != nil {
		return s, nil
	}
	kind, err := KindOf(t, nullableAs)
	if err != nil {
		return nil, err
	}
	if kind == KindUnknown {
		return nil, &NoSerializerError{Type: t}
	}
	return ForKind(kind, t), nil
}

// ForKind returns the built-in serializer for a kind. The enum kinds need
// the concrete type so reads convert back into the declared enum; t may be
// nil for every other kind.
func ForKind(kind Kind, t reflect.Type) Serializer {
	switch kind {
	case KindLong, KindLongNullable, KindInteger, KindIntegerNullable:
		return intSerializer{}
	case KindDouble, KindDoubleNullable:
		return doubleSerializer{}
	case KindBoolean, KindBooleanNullable:
		return boolSerializer{}
	case KindString:
		return stringSerializer{}
	case KindDateAsString:
		return dateStringSerializer{}
	case KindDateAsTimestamp:
		return dateTimestampSerializer{}
	case KindEnumAsString:
		return enumStringSerializer{typ: baseType(t)}
	case KindEnumAsInteger:
		return enumIntSerializer{typ: baseType(t)}
	}
	return nil
}

// libraryDefault returns the built-in serializer registered for an exact
// type, the middle resolution tier.
func libraryDefault(t reflect.Type) Serializer {
	switch normalizeType(t) {
	case uuidType:
		return uuidSerializer{}
	case ratType.Elem():
		return ratSerializer{}
	}
	return nil
}

// normalizeType strips pointer indirection so T and *T share one
// registration.
func normalizeType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// baseType strips pointers but keeps the named type, for enum conversion.
func baseType(t reflect.Type) reflect.Type {
	return normalizeType(t)
}

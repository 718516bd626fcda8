package serializer

import (
	"reflect"
	"time"
)

var (
	stringType = reflect.TypeOf("")
	timeType   = reflect.TypeOf(time.Time{})
)

// KindOf classifies a Go type into its semantic Kind.
//
// When nullableAs is true, scalar value types are classified as their
// nullable (pointer) equivalent before lookup; a mapped field always resolves
// the nullable serializer even when the Go field itself can never hold nil.
// Asking for the nullable substitution on a scalar kind that has no nullable
// mapping fails with UnsupportedKindError.
//
// Types with no built-in mapping yield KindUnknown and no error, so callers
// can distinguish "nothing built in" from a classification failure.
func KindOf(t reflect.Type, nullableAs bool) (Kind, error) {
	if t == nil {
		return KindUnknown, nil
	}

	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	} else if nullableAs && isScalarKind(t.Kind()) {
		if !hasNullableMapping(t.Kind()) {
			return KindUnknown, &UnsupportedKindError{Type: t}
		}
		nullable = true
	}

	if t == timeType {
		// Stored as text for readability, LIKE-queries and sorting; the
		// timestamp kind exists but is opt-in.
		return KindDateAsString, nil
	}

	switch t.Kind() {
	case reflect.Int64:
		if nullable {
			return KindLongNullable, nil
		}
		return KindLong, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		if nullable {
			return KindIntegerNullable, nil
		}
		return KindInteger, nil
	case reflect.Float32, reflect.Float64:
		if nullable {
			return KindDoubleNullable, nil
		}
		return KindDouble, nil
	case reflect.Bool:
		if nullable {
			return KindBooleanNullable, nil
		}
		return KindBoolean, nil
	case reflect.String:
		if t != stringType {
			// A named string type is an enum; stored by value so renaming or
			// reordering the constants never breaks persisted rows.
			return KindEnumAsString, nil
		}
		return KindString, nil
	}
	return KindUnknown, nil
}

// isScalarKind reports whether k is a numeric or boolean kind, the Go
// equivalent of a primitive.
func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// hasNullableMapping reports whether the scalar kind has a supported
// nullable equivalent.
func hasNullableMapping(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

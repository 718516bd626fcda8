// Package serializer converts Go values to and from their SQLite column
// representation. Every mapped field resolves to exactly one Serializer,
// either a built-in one derived from the field's Kind or a custom one
// registered for the field's exact type.
package serializer

// StorageType is the SQLite storage class a serializer writes into.
type StorageType int

const (
	StorageInteger StorageType = iota
	StorageText
	StorageReal
	StorageNumeric
	StorageNone
)

// String returns the SQL keyword for the storage type, as used in column
// definitions. Invalid values return an empty string.
func (s StorageType) String() string {
	switch s {
	case StorageInteger:
		return "INTEGER"
	case StorageText:
		return "TEXT"
	case StorageReal:
		return "REAL"
	case StorageNumeric:
		return "NUMERIC"
	case StorageNone:
		return "NONE"
	}
	return ""
}

// Valid reports whether s is one of the five SQLite storage classes.
func (s StorageType) Valid() bool {
	return s >= StorageInteger && s <= StorageNone
}

// Kind classifies a Go type into one of the semantic kinds the library has a
// built-in serializer for. Nullable variants are resolved for pointer types
// (and for value types when the caller asks for the nullable substitution,
// since a value field is stored through the same serializer either way).
type Kind int

const (
	KindUnknown Kind = iota
	KindLong
	KindLongNullable
	KindInteger
	KindIntegerNullable
	KindDouble
	KindDoubleNullable
	KindBoolean
	KindBooleanNullable
	KindString
	KindDateAsString
	KindDateAsTimestamp
	KindEnumAsString
	KindEnumAsInteger
)

// StorageType returns the storage class used by the kind's default serializer.
func (k Kind) StorageType() StorageType {
	switch k {
	case KindLong, KindLongNullable, KindInteger, KindIntegerNullable,
		KindDateAsTimestamp, KindEnumAsInteger:
		return StorageInteger
	case KindDouble, KindDoubleNullable:
		return StorageReal
	case KindBoolean, KindBooleanNullable:
		return StorageNumeric
	case KindString, KindDateAsString, KindEnumAsString:
		return StorageText
	}
	return StorageNone
}

// Row is a read-only view over a single result row. Implementations wrap the
// storage engine's cursor; ColumnIndex returns -1 for columns the result set
// does not contain.
type Row interface {
	ColumnIndex(name string) int
	IsNull(i int) bool
	Int64(i int) int64
	Float64(i int) float64
	String(i int) string
}

// Serializer converts between a Go value and its column representation.
//
// SQLToGo and GoToValues must be exact inverses for every representable
// value; in particular a NULL column must read back as nil and a nil value
// must store as NULL.
type Serializer interface {
	// StorageType reports the storage class of the column this serializer
	// writes into.
	StorageType() StorageType

	// SQLToGo reads column i of row and returns the typed value, or nil for
	// a NULL column.
	SQLToGo(row Row, i int) (any, error)

	// GoToValues writes v under key into the values map, storing nil for a
	// nil (or nil-pointer) value.
	GoToValues(key string, values map[string]any, v any) error

	// LiteralToSQL converts a declared default-value literal into SQL text
	// ready to be placed after DEFAULT in a column definition.
	LiteralToSQL(literal string) (string, error)
}

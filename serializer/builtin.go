package serializer

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateStringLayout is the column format used by the date-as-string
// serializer: fixed-width UTC with nanosecond precision, so values sort
// lexicographically and stay LIKE-friendly without losing precision.
const DateStringLayout = "2006-01-02T15:04:05.000000000Z07:00"

// quoteLiteral wraps a string in single quotes, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// indirect unwraps pointers. The second return is false when v is nil or a
// nil pointer, i.e. the value represents NULL.
func indirect(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, true
}

// --- integer kinds ---

type intSerializer struct{}

func (intSerializer) StorageType() StorageType { return StorageInteger }

func (intSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return row.Int64(i), nil
}

func (intSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		values[key] = rv.Int()
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		values[key] = int64(rv.Uint())
	default:
		return fmt.Errorf("value %v (%T) is not an integer for column %q", v, v, key)
	}
	return nil
}

func (intSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
		return "", fmt.Errorf("invalid integer literal %q: %w", literal, err)
	}
	return literal, nil
}

// --- real kinds ---

type doubleSerializer struct{}

func (doubleSerializer) StorageType() StorageType { return StorageReal }

func (doubleSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return row.Float64(i), nil
}

func (doubleSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		values[key] = rv.Float()
	default:
		return fmt.Errorf("value %v (%T) is not a float for column %q", v, v, key)
	}
	return nil
}

func (doubleSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return "", fmt.Errorf("invalid float literal %q: %w", literal, err)
	}
	return literal, nil
}

// --- boolean kinds ---

type boolSerializer struct{}

func (boolSerializer) StorageType() StorageType { return StorageNumeric }

func (boolSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return row.Int64(i) != 0, nil
}

func (boolSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	if rv.Kind() != reflect.Bool {
		return fmt.Errorf("value %v (%T) is not a bool for column %q", v, v, key)
	}
	if rv.Bool() {
		values[key] = int64(1)
	} else {
		values[key] = int64(0)
	}
	return nil
}

func (boolSerializer) LiteralToSQL(literal string) (string, error) {
	b, err := strconv.ParseBool(literal)
	if err != nil {
		return "", fmt.Errorf("invalid boolean literal %q: %w", literal, err)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

// --- string kind ---

type stringSerializer struct{}

func (stringSerializer) StorageType() StorageType { return StorageText }

func (stringSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return row.String(i), nil
}

func (stringSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	if rv.Kind() != reflect.String {
		return fmt.Errorf("value %v (%T) is not a string for column %q", v, v, key)
	}
	values[key] = rv.String()
	return nil
}

func (stringSerializer) LiteralToSQL(literal string) (string, error) {
	return quoteLiteral(literal), nil
}

// --- date kinds ---

type dateStringSerializer struct{}

func (dateStringSerializer) StorageType() StorageType { return StorageText }

func (dateStringSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	t, err := time.Parse(DateStringLayout, row.String(i))
	if err != nil {
		return nil, fmt.Errorf("invalid date column value %q: %w", row.String(i), err)
	}
	return t.UTC(), nil
}

func (dateStringSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	t, ok := rv.Interface().(time.Time)
	if !ok {
		return fmt.Errorf("value %v (%T) is not a time.Time for column %q", v, v, key)
	}
	values[key] = t.UTC().Format(DateStringLayout)
	return nil
}

func (dateStringSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := time.Parse(DateStringLayout, literal); err != nil {
		return "", fmt.Errorf("invalid date literal %q: %w", literal, err)
	}
	return quoteLiteral(literal), nil
}

// dateTimestampSerializer stores times as UnixNano integers. Faster and
// smaller than text, but not LIKE-queryable; selected per field with the
// date:timestamp tag or by registering it for time.Time.
type dateTimestampSerializer struct{}

func (dateTimestampSerializer) StorageType() StorageType { return StorageInteger }

func (dateTimestampSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return time.Unix(0, row.Int64(i)).UTC(), nil
}

func (dateTimestampSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	t, ok := rv.Interface().(time.Time)
	if !ok {
		return fmt.Errorf("value %v (%T) is not a time.Time for column %q", v, v, key)
	}
	values[key] = t.UnixNano()
	return nil
}

func (dateTimestampSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
		return "", fmt.Errorf("invalid timestamp literal %q: %w", literal, err)
	}
	return literal, nil
}

// --- enum kinds ---

// enumStringSerializer stores a named string type by its string value. It is
// built per enum type so reads can convert back to the declared type.
type enumStringSerializer struct {
	typ reflect.Type
}

func (s enumStringSerializer) StorageType() StorageType { return StorageText }

func (s enumStringSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return reflect.ValueOf(row.String(i)).Convert(s.typ).Interface(), nil
}

func (s enumStringSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	if rv.Kind() != reflect.String {
		return fmt.Errorf("value %v (%T) is not a %s for column %q", v, v, s.typ, key)
	}
	values[key] = rv.String()
	return nil
}

func (s enumStringSerializer) LiteralToSQL(literal string) (string, error) {
	return quoteLiteral(literal), nil
}

// enumIntSerializer stores a named integer type by its numeric value.
// Careful: reordering the constants changes what persisted rows mean.
type enumIntSerializer struct {
	typ reflect.Type
}

func (s enumIntSerializer) StorageType() StorageType { return StorageInteger }

func (s enumIntSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return reflect.ValueOf(row.Int64(i)).Convert(s.typ).Interface(), nil
}

func (s enumIntSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		values[key] = rv.Int()
	default:
		return fmt.Errorf("value %v (%T) is not a %s for column %q", v, v, s.typ, key)
	}
	return nil
}

func (s enumIntSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
		return "", fmt.Errorf("invalid enum literal %q: %w", literal, err)
	}
	return literal, nil
}

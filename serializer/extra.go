package serializer

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/google/uuid"
)

// Library-default serializers for exact types that have no Kind of their
// own. They sit between custom registrations and the kind-derived defaults
// in resolution order, and can be shadowed by Register.

// uuidSerializer stores a uuid.UUID as its canonical text form.
type uuidSerializer struct{}

func (uuidSerializer) StorageType() StorageType { return StorageText }

func (uuidSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	id, err := uuid.Parse(row.String(i))
	if err != nil {
		return nil, fmt.Errorf("invalid uuid column value %q: %w", row.String(i), err)
	}
	return id, nil
}

func (uuidSerializer) GoToValues(key string, values map[string]any, v any) error {
	rv, ok := indirect(v)
	if !ok {
		values[key] = nil
		return nil
	}
	id, ok := rv.Interface().(uuid.UUID)
	if !ok {
		return fmt.Errorf("value %v (%T) is not a uuid.UUID for column %q", v, v, key)
	}
	values[key] = id.String()
	return nil
}

func (uuidSerializer) LiteralToSQL(literal string) (string, error) {
	if _, err := uuid.Parse(literal); err != nil {
		return "", fmt.Errorf("invalid uuid literal %q: %w", literal, err)
	}
	return quoteLiteral(literal), nil
}

// ratSerializer stores a *big.Rat as its exact fraction text (RatString), so
// arbitrary-precision values round-trip without loss.
type ratSerializer struct{}

func (ratSerializer) StorageType() StorageType { return StorageText }

func (ratSerializer) SQLToGo(row Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	r, ok := new(big.Rat).SetString(row.String(i))
	if !ok {
		return nil, fmt.Errorf("invalid rational column value %q", row.String(i))
	}
	return r, nil
}

func (ratSerializer) GoToValues(key string, values map[string]any, v any) error {
	if v == nil {
		values[key] = nil
		return nil
	}
	r, ok := v.(*big.Rat)
	if !ok {
		return fmt.Errorf("value %v (%T) is not a *big.Rat for column %q", v, v, key)
	}
	if r == nil {
		values[key] = nil
		return nil
	}
	values[key] = r.RatString()
	return nil
}

func (ratSerializer) LiteralToSQL(literal string) (string, error) {
	if _, ok := new(big.Rat).SetString(literal); !ok {
		return "", fmt.Errorf("invalid rational literal %q", literal)
	}
	return quoteLiteral(literal), nil
}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	ratType  = reflect.TypeOf((*big.Rat)(nil))
)

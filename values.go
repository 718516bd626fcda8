package litemap

import (
	"fmt"
	"reflect"

	"github.com/chmenegatti/litemap/metadata"
)

// ColumnSet is a set of column names selecting which fields a conversion
// touches.
type ColumnSet map[string]struct{}

// Contains reports membership.
func (s ColumnSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Columns builds the default column set for the model's entity.
//
// includeID=false excludes the primary key column; a generated primary key
// is additionally excluded because the storage engine assigns it. When
// includeForeign is false, foreign key columns are left out, useful for back
// references.
func Columns(model any, includeID, includeForeign bool) (ColumnSet, error) {
	cfg, err := metadata.Parse(model)
	if err != nil {
		return nil, err
	}
	set := make(ColumnSet, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if !includeID && (f.IsID || f.IsGeneratedID) {
			continue
		}
		if !includeForeign && f.IsForeign {
			continue
		}
		set[f.ColumnName] = struct{}{}
	}
	return set, nil
}

// ToValues converts an entity into a column→value map ready for an insert or
// update, using the default column set for the given toggles.
func ToValues(entity any, includeID, includeForeign bool) (map[string]any, error) {
	columns, err := Columns(entity, includeID, includeForeign)
	if err != nil {
		return nil, err
	}
	return ToValuesColumns(nil, entity, columns)
}

// ToValuesColumns converts an entity into a column→value map, writing only
// the columns in the given set. values is recycled when non-nil and is not
// cleared first; clearing is the caller's job.
//
// For a foreign field the linked entity's primary key value is stored; a nil
// linked entity stores NULL for that column.
func ToValuesColumns(values map[string]any, entity any, columns ColumnSet) (map[string]any, error) {
	cfg, err := metadata.Parse(entity)
	if err != nil {
		return nil, err
	}
	rv := reflect.Indirect(reflect.ValueOf(entity))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("litemap: entity must be a struct or non-nil pointer to struct, got %T", entity)
	}
	if values == nil {
		values = make(map[string]any, len(columns))
	}

	for _, f := range cfg.Fields {
		if !columns.Contains(f.ColumnName) {
			continue
		}
		fv := rv.Field(f.FieldIndex)
		if !fv.CanInterface() {
			return nil, &AccessError{Entity: cfg.Name, Field: f.FieldName}
		}

		var raw any
		if f.IsForeign {
			linked := fv
			for linked.Kind() == reflect.Pointer {
				if linked.IsNil() {
					linked = reflect.Value{}
					break
				}
				linked = linked.Elem()
			}
			if linked.IsValid() {
				pkv := linked.Field(f.Foreign.FieldIndex)
				if !pkv.CanInterface() {
					return nil, &AccessError{Entity: cfg.Name, Field: f.FieldName}
				}
				raw = pkv.Interface()
			}
		} else {
			raw = fv.Interface()
		}

		if err := f.Serializer.GoToValues(f.ColumnName, values, raw); err != nil {
			return nil, fmt.Errorf("entity %q field %q: %w", cfg.Name, f.FieldName, err)
		}
	}
	return values, nil
}

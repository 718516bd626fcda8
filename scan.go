package litemap

import (
	"fmt"
	"reflect"

	"github.com/chmenegatti/litemap/metadata"
	"github.com/chmenegatti/litemap/serializer"
)

// ScanRow populates an entity from the current row, reading every mapped
// column. entity must be a non-nil pointer to a struct.
func ScanRow(row serializer.Row, entity any) error {
	columns, err := Columns(entity, true, true)
	if err != nil {
		return err
	}
	return ScanRowColumns(row, entity, columns)
}

// ScanRowColumns populates an entity from the current row, touching only
// the columns in the given set. Columns the row does not contain are
// silently skipped, a deliberate accommodation for rows read from older or
// newer schemas.
//
// For a foreign field the stored value is the target's primary key; when the
// linked entity is absent on the record, a fresh instance is constructed and
// attached first, so one shallow row yields a linked object graph one hop
// deep.
func ScanRowColumns(row serializer.Row, entity any, columns ColumnSet) error {
	pv := reflect.ValueOf(entity)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return fmt.Errorf("litemap: entity must be a non-nil pointer to a struct, got %T", entity)
	}
	rv := pv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("litemap: entity must point to a struct, got %s", rv.Kind())
	}
	cfg, err := metadata.Parse(entity)
	if err != nil {
		return err
	}

	for _, f := range cfg.Fields {
		if !columns.Contains(f.ColumnName) {
			continue
		}
		idx := row.ColumnIndex(f.ColumnName)
		if idx < 0 {
			continue
		}
		raw, err := f.Serializer.SQLToGo(row, idx)
		if err != nil {
			return fmt.Errorf("entity %q field %q: %w", cfg.Name, f.FieldName, err)
		}

		target := rv.Field(f.FieldIndex)
		if f.IsForeign {
			if raw == nil {
				// A NULL key means no link.
				if !target.CanSet() {
					return &AccessError{Entity: cfg.Name, Field: f.FieldName}
				}
				target.Set(reflect.Zero(target.Type()))
				continue
			}
			target, err = linkedPrimaryKey(cfg, f, target)
			if err != nil {
				return err
			}
		}
		if !target.CanSet() {
			return &AccessError{Entity: cfg.Name, Field: f.FieldName}
		}
		if err := assign(target, raw); err != nil {
			return fmt.Errorf("entity %q field %q: %w", cfg.Name, f.FieldName, err)
		}
	}
	return nil
}

// linkedPrimaryKey dereferences a foreign field down to the linked entity's
// primary key field, constructing and attaching the linked instance when the
// field is nil.
func linkedPrimaryKey(cfg *metadata.EntityConfig, f *metadata.FieldConfig, owner reflect.Value) (reflect.Value, error) {
	for owner.Kind() == reflect.Pointer {
		elem := owner.Type().Elem()
		if owner.IsNil() {
			if elem.Kind() != reflect.Struct && elem.Kind() != reflect.Pointer {
				return reflect.Value{}, &InstantiationError{Entity: cfg.Name, Field: f.FieldName, Type: elem}
			}
			if !owner.CanSet() {
				return reflect.Value{}, &AccessError{Entity: cfg.Name, Field: f.FieldName}
			}
			owner.Set(reflect.New(elem))
		}
		owner = owner.Elem()
	}
	if owner.Kind() != reflect.Struct {
		return reflect.Value{}, &InstantiationError{Entity: cfg.Name, Field: f.FieldName, Type: owner.Type()}
	}
	return owner.Field(f.Foreign.FieldIndex), nil
}

// assign writes a serializer-produced value into a struct field, allocating
// pointers and converting between compatible representations. A nil raw
// resets the field: nil for pointers, the zero value otherwise.
func assign(target reflect.Value, raw any) error {
	if raw == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	rv := reflect.ValueOf(raw)
	t := target.Type()

	if rv.Type().AssignableTo(t) {
		target.Set(rv)
		return nil
	}
	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		if !rv.Type().ConvertibleTo(elem) {
			return fmt.Errorf("cannot store %s into %s", rv.Type(), t)
		}
		p := reflect.New(elem)
		p.Elem().Set(rv.Convert(elem))
		target.Set(p)
		return nil
	}
	if !rv.Type().ConvertibleTo(t) {
		return fmt.Errorf("cannot store %s into %s", rv.Type(), t)
	}
	target.Set(rv.Convert(t))
	return nil
}

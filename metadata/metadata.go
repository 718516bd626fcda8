// Package metadata resolves and caches the mapping configuration of entity
// structs: fields, column names, serializers, primary and foreign keys, and
// index constraints. Configurations are built once per struct type from its
// litemap tags and shared for the process lifetime; they are never mutated
// after construction, so completed entries are safe for concurrent reads.
package metadata

import (
	"reflect"

	"github.com/chmenegatti/litemap/serializer"
)

// OnAction is the referential action attached to a foreign key clause.
type OnAction int

const (
	NoAction OnAction = iota
	Restrict
	SetNull
	SetDefault
	Cascade
)

// SQL returns the action keyword as it appears in a FOREIGN KEY clause.
func (a OnAction) SQL() string {
	switch a {
	case Restrict:
		return "RESTRICT"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	case Cascade:
		return "CASCADE"
	}
	return "NO ACTION"
}

// EntityConfig is the immutable mapping configuration of one entity struct.
// Fields keeps struct declaration order, which is also the column order of
// generated statements.
type EntityConfig struct {
	Name           string
	Type           reflect.Type
	Fields         []*FieldConfig
	FieldsByColumn map[string]*FieldConfig
	Constraints    []*IndexConstraintConfig

	pk *FieldConfig
}

// PrimaryKey returns the entity's primary key field, or nil when the entity
// declares none.
func (c *EntityConfig) PrimaryKey() *FieldConfig {
	return c.pk
}

// FieldConfig describes one mapped struct field.
type FieldConfig struct {
	Entity *EntityConfig

	FieldName  string
	FieldIndex int
	FieldType  reflect.Type

	ColumnName string
	Kind       serializer.Kind
	Serializer serializer.Serializer

	IsID          bool
	IsGeneratedID bool
	Nullable      bool
	DefaultValue  *string

	// Foreign link: the field holds another entity and is stored as that
	// entity's primary key value. Foreign points at the target entity's
	// primary key field; the storage type is inherited from it.
	IsForeign bool
	Foreign   *FieldConfig
	OnDelete  OnAction
	OnUpdate  OnAction

	// IndexConstraint is set when the field participates in a single-field
	// constraint; used for the inline UNIQUE column token.
	IndexConstraint *IndexConstraintConfig
}

// IndexConstraintConfig describes an index or unique constraint. Fields is
// ordered; for composite indexes the order is part of the definition.
type IndexConstraintConfig struct {
	Entity *EntityConfig
	Name   string
	Fields []*FieldConfig
	Unique bool
}

// SingleField reports whether the constraint covers exactly one column. A
// single-field unique constraint is expressed inline on the column
// definition; a multi-field one becomes a table-level UNIQUE clause. The two
// paths are mutually exclusive.
func (c *IndexConstraintConfig) SingleField() bool {
	return len(c.Fields) == 1
}

// TableNamer overrides the table name derived from the struct name.
type TableNamer interface {
	TableName() string
}

// UniqueSpec declares a named multi-field unique constraint by column name.
type UniqueSpec struct {
	Name    string
	Columns []string
}

// ConstraintsProvider lets a model declare composite unique constraints that
// field tags cannot express (cross-field column order).
type ConstraintsProvider interface {
	UniqueConstraints() []UniqueSpec
}

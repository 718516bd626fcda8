package litemap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chmenegatti/litemap/metadata"
)

// EscapeIdent quotes an identifier for inclusion in a SQLite statement.
// Every identifier emitted by this package goes through here.
func EscapeIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func escapeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = EscapeIdent(n)
	}
	return out
}

// CreateTableStatements renders the CREATE TABLE statement for an entity
// followed by one CREATE INDEX statement per declared constraint. Column
// definitions follow struct declaration order.
func CreateTableStatements(cfg *metadata.EntityConfig) ([]string, error) {
	defs := make([]string, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		def, err := columnDef(cfg, f)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	for _, c := range cfg.Constraints {
		if c.Unique && !c.SingleField() {
			defs = append(defs, fmt.Sprintf("UNIQUE(%s)", strings.Join(escapeAll(constraintColumns(c)), ", ")))
		}
	}
	for _, f := range cfg.Fields {
		if !f.IsForeign {
			continue
		}
		clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s",
			EscapeIdent(f.ColumnName), EscapeIdent(f.Foreign.Entity.Name))
		if f.OnDelete != metadata.NoAction {
			clause += " ON DELETE " + f.OnDelete.SQL()
		}
		if f.OnUpdate != metadata.NoAction {
			clause += " ON UPDATE " + f.OnUpdate.SQL()
		}
		defs = append(defs, clause)
	}

	statements := []string{
		fmt.Sprintf("CREATE TABLE %s (%s)", EscapeIdent(cfg.Name), strings.Join(defs, ", ")),
	}
	for _, c := range cfg.Constraints {
		unique := ""
		if c.Unique {
			unique = "UNIQUE "
		}
		statements = append(statements, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
			unique, EscapeIdent(c.Name), EscapeIdent(cfg.Name),
			strings.Join(escapeAll(constraintColumns(c)), ", ")))
	}
	return statements, nil
}

func constraintColumns(c *metadata.IndexConstraintConfig) []string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.ColumnName
	}
	return cols
}

func columnDef(cfg *metadata.EntityConfig, f *metadata.FieldConfig) (string, error) {
	storage := f.Serializer.StorageType()
	if !storage.Valid() {
		return "", &UnsupportedStorageTypeError{Entity: cfg.Name, Column: f.ColumnName, StorageType: storage}
	}

	var b strings.Builder
	b.WriteString(EscapeIdent(f.ColumnName))
	b.WriteByte(' ')
	b.WriteString(storage.String())

	if f.IsID {
		b.WriteString(" PRIMARY KEY")
		if f.IsGeneratedID {
			b.WriteString(" AUTOINCREMENT")
		}
		return b.String(), nil
	}

	if f.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c := f.IndexConstraint; c != nil && c.Unique && c.SingleField() {
		b.WriteString(" UNIQUE")
	}
	if f.DefaultValue != nil {
		lit, err := f.Serializer.LiteralToSQL(*f.DefaultValue)
		if err != nil {
			return "", fmt.Errorf("entity %q column %q: default value: %w", cfg.Name, f.ColumnName, err)
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(lit)
	}
	return b.String(), nil
}

// DropTableStatements renders the statements that remove a table and its
// indexes. Indexes are dropped first, in sorted name order, so the sequence
// is deterministic regardless of how the names were discovered.
func DropTableStatements(table string, indexNames []string) []string {
	names := make([]string, len(indexNames))
	copy(names, indexNames)
	sort.Strings(names)

	statements := make([]string, 0, len(names)+1)
	for _, n := range names {
		statements = append(statements, fmt.Sprintf("DROP INDEX IF EXISTS %s", EscapeIdent(n)))
	}
	return append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s", EscapeIdent(table)))
}

package litemap_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmenegatti/litemap"
	"github.com/chmenegatti/litemap/metadata"
	"github.com/chmenegatti/litemap/serializer"
)

type article struct {
	ID        int64  `litemap:"pk;autoIncrement"`
	Title     string `litemap:"unique"`
	Views     int64
	Rating    *float64
	Published bool `litemap:"default:true"`
}

type writer struct {
	ID   int64 `litemap:"pk;autoIncrement"`
	Name string
}

type column struct {
	ID     int64   `litemap:"pk;autoIncrement"`
	Writer *writer `litemap:"foreign;onDelete:cascade;onUpdate:restrict"`
	Slug   string  `litemap:"index:idx_column_slug"`
}

func statementsFor(t *testing.T, model any) []string {
	t.Helper()
	cfg, err := metadata.Parse(model)
	require.NoError(t, err)
	statements, err := litemap.CreateTableStatements(cfg)
	require.NoError(t, err)
	return statements
}

func TestEscapeIdent(t *testing.T) {
	assert.Equal(t, "`users`", litemap.EscapeIdent("users"))
	assert.Equal(t, "`we``ird`", litemap.EscapeIdent("we`ird"))
}

func TestCreateTableStatements(t *testing.T) {
	statements := statementsFor(t, &article{})
	require.Len(t, statements, 2)
	assert.Equal(t,
		"CREATE TABLE `articles` ("+
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, "+
			"`title` TEXT NOT NULL UNIQUE, "+
			"`views` INTEGER NOT NULL, "+
			"`rating` REAL NULL, "+
			"`published` NUMERIC NOT NULL DEFAULT 1)",
		statements[0])
	assert.Equal(t,
		"CREATE UNIQUE INDEX `idx_articles_title` ON `articles` (`title`)",
		statements[1])
}

func TestCreateTableStatementsDeterministic(t *testing.T) {
	first := statementsFor(t, &article{})
	second := statementsFor(t, &article{})
	assert.Equal(t, first, second)
}

func TestCreateTableGeneratedKeyClause(t *testing.T) {
	statements := statementsFor(t, &writer{})
	require.Len(t, statements, 1)

	// The generated key column carries only PRIMARY KEY AUTOINCREMENT; no
	// null, unique or default clauses apply to it.
	assert.Contains(t, statements[0], "`id` INTEGER PRIMARY KEY AUTOINCREMENT,")
	assert.NotContains(t, statements[0], "PRIMARY KEY AUTOINCREMENT NOT NULL")
}

func TestCreateTableForeignKeyClause(t *testing.T) {
	statements := statementsFor(t, &column{})
	require.Len(t, statements, 2)
	assert.Equal(t,
		"CREATE TABLE `columns` ("+
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, "+
			"`writer_id` INTEGER NULL, "+
			"`slug` TEXT NOT NULL, "+
			"FOREIGN KEY (`writer_id`) REFERENCES `writers` ON DELETE CASCADE ON UPDATE RESTRICT)",
		statements[0])
	assert.Equal(t,
		"CREATE INDEX `idx_column_slug` ON `columns` (`slug`)",
		statements[1])
}

func TestCreateTableForeignKeyNoActionOmitted(t *testing.T) {
	type tag struct {
		ID      int64   `litemap:"pk;autoIncrement"`
		Article *article `litemap:"foreign"`
	}
	statements := statementsFor(t, &tag{})
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "FOREIGN KEY (`article_id`) REFERENCES `articles`)")
	assert.NotContains(t, statements[0], "ON DELETE")
	assert.NotContains(t, statements[0], "ON UPDATE")
}

func TestCreateTableCompositeUnique(t *testing.T) {
	statements := statementsFor(t, &enrollment{})
	require.Len(t, statements, 2)

	// Multi-field unique constraints appear as a table-level clause plus an
	// index; the member columns get no inline UNIQUE token.
	assert.Equal(t,
		"CREATE TABLE `enrollments` ("+
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, "+
			"`student` TEXT NOT NULL, "+
			"`course` TEXT NOT NULL, "+
			"UNIQUE(`student`, `course`))",
		statements[0])
	assert.Equal(t,
		"CREATE UNIQUE INDEX `uq_enrollment` ON `enrollments` (`student`, `course`)",
		statements[1])
	assert.NotContains(t, statements[0], "`student` TEXT NOT NULL UNIQUE")
}

type enrollment struct {
	ID      int64 `litemap:"pk;autoIncrement"`
	Student string
	Course  string
}

func (enrollment) UniqueConstraints() []metadata.UniqueSpec {
	return []metadata.UniqueSpec{{Name: "uq_enrollment", Columns: []string{"student", "course"}}}
}

func TestCreateTableUniqueSurvivesExtraIndex(t *testing.T) {
	type page struct {
		ID   int64  `litemap:"pk;autoIncrement"`
		Slug string `litemap:"index:idx_page_slug_lookup;unique"`
	}
	statements := statementsFor(t, &page{})
	require.Len(t, statements, 3)
	assert.Contains(t, statements[0], "`slug` TEXT NOT NULL UNIQUE")
}

func TestCreateTableSingleFieldUniqueStaysInline(t *testing.T) {
	statements := statementsFor(t, &article{})
	// Single-field unique constraints never duplicate into a table-level
	// UNIQUE clause.
	assert.NotContains(t, statements[0], "UNIQUE(")
}

func TestCreateTableEscapesIdentifiers(t *testing.T) {
	statements := statementsFor(t, &oddTable{})
	assert.Contains(t, statements[0], "CREATE TABLE `odd``name` (")
}

type oddTable struct {
	ID int64 `litemap:"pk"`
}

func (oddTable) TableName() string { return "odd`name" }

func TestCreateTableUnsupportedStorageType(t *testing.T) {
	t.Cleanup(func() {
		serializer.Default.Unregister(reflect.TypeOf(time.Time{}))
		metadata.ClearCache()
	})

	type reading struct {
		ID int64     `litemap:"pk;autoIncrement"`
		At time.Time
	}
	serializer.Default.Register(reflect.TypeOf(time.Time{}), badStorageStub{})
	metadata.ClearCache()

	cfg, err := metadata.Parse(&reading{})
	require.NoError(t, err)
	_, err = litemap.CreateTableStatements(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, litemap.ErrUnsupportedStorageType)

	var stErr *litemap.UnsupportedStorageTypeError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "at", stErr.Column)
}

type badStorageStub struct{}

func (badStorageStub) StorageType() serializer.StorageType { return serializer.StorageType(99) }

func (badStorageStub) SQLToGo(row serializer.Row, i int) (any, error) { return nil, nil }

func (badStorageStub) GoToValues(key string, values map[string]any, v any) error {
	values[key] = v
	return nil
}

func (badStorageStub) LiteralToSQL(literal string) (string, error) { return literal, nil }

func TestDropTableStatements(t *testing.T) {
	statements := litemap.DropTableStatements("articles", []string{"idx_b", "idx_a"})
	assert.Equal(t, []string{
		"DROP INDEX IF EXISTS `idx_a`",
		"DROP INDEX IF EXISTS `idx_b`",
		"DROP TABLE IF EXISTS `articles`",
	}, statements)
}

func TestDropTableStatementsNoIndexes(t *testing.T) {
	statements := litemap.DropTableStatements("articles", nil)
	assert.Equal(t, []string{"DROP TABLE IF EXISTS `articles`"}, statements)
}

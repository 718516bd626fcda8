// Package litemap maps annotated Go structs onto SQLite tables: it derives
// column layouts from struct tags, converts entities to and from rows through
// pluggable serializers, and generates the DDL that keeps both sides in
// agreement.
package litemap

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/chmenegatti/litemap/metadata"
	"github.com/chmenegatti/litemap/serializer"
)

var logger = zap.NewNop()

// SetLogger installs a logger for statement-level debug output. The default
// discards everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	metadata.SetLogger(l)
}

// RegisterSerializer installs a custom serializer for the type of prototype,
// taking precedence over built-in handling. Cached entity configurations are
// discarded so already-mapped structs pick up the new serializer.
func RegisterSerializer(prototype any, s serializer.Serializer) {
	serializer.Default.Register(reflect.TypeOf(prototype), s)
	metadata.ClearCache()
}

// UnregisterSerializer removes a custom serializer registered for the type
// of prototype and discards cached entity configurations.
func UnregisterSerializer(prototype any) {
	serializer.Default.Unregister(reflect.TypeOf(prototype))
	metadata.ClearCache()
}

// CreateTable creates the table for a model plus the indexes its constraints
// declare.
func CreateTable(ctx context.Context, ds DataSource, model any) error {
	cfg, err := metadata.Parse(model)
	if err != nil {
		return err
	}
	statements, err := CreateTableStatements(cfg)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		logger.Debug("executing ddl", zap.String("statement", stmt))
		if _, err := ds.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropTable removes a table and every index attached to it. The live schema
// is consulted for index names, so indexes created outside this package are
// dropped too.
func DropTable(ctx context.Context, ds DataSource, table string) error {
	indexes, err := TableIndexNames(ctx, ds, table)
	if err != nil {
		return err
	}
	for _, stmt := range DropTableStatements(table, indexes) {
		logger.Debug("executing ddl", zap.String("statement", stmt))
		if _, err := ds.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

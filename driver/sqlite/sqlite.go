// Package sqlite opens SQLite data sources for litemap over the mattn
// go-sqlite3 driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chmenegatti/litemap"
)

// DataSource is a litemap.DataSource over a SQLite database file.
type DataSource struct {
	ds litemap.DataSource
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

var _ litemap.DataSource = (*DataSource)(nil)

// Open opens the database described by cfg. The file is created when it does
// not exist; use Path ":memory:" for an in-memory database.
func Open(cfg Config) (*DataSource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: config has no path")
	}
	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	return &DataSource{ds: litemap.WrapDB(db), db: db}, nil
}

// DB exposes the underlying handle for work outside the litemap surface.
func (d *DataSource) DB() *sql.DB {
	return d.db
}

func (d *DataSource) Exec(ctx context.Context, query string, args ...any) (litemap.Result, error) {
	return d.ds.Exec(ctx, query, args...)
}

func (d *DataSource) Query(ctx context.Context, query string, args ...any) (litemap.Rows, error) {
	return d.ds.Query(ctx, query, args...)
}

func (d *DataSource) Ping(ctx context.Context) error {
	return d.ds.Ping(ctx)
}

// Close releases the underlying handle. Safe to call more than once.
func (d *DataSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.ds.Close()
}

// DSN renders the connection string for the configuration. Options are
// appended in sorted key order so the rendering is stable.
func (c Config) DSN() string {
	if len(c.Options) == 0 {
		return c.Path
	}
	keys := make([]string, 0, len(c.Options))
	for k := range c.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.Path)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(c.Options[k]))
	}
	return b.String()
}

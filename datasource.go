package litemap

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/chmenegatti/litemap/serializer"
)

// Result reports the outcome of a statement execution. *sql.Result values
// satisfy it directly.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Rows iterates a query result. After Next reports true, the serializer.Row
// view reads the current row.
type Rows interface {
	serializer.Row

	Next() bool
	Err() error
	Close() error
	Columns() ([]string, error)
}

// DataSource is the storage capability this library consumes: execute a
// statement, run a query, nothing more. Statement execution and
// introspection queries are the only blocking points in the library; errors
// from the data source propagate unchanged.
type DataSource interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// WrapDB adapts a database/sql handle into a DataSource. Drivers build on
// this; tests use it with sqlmock.
func WrapDB(db *sql.DB) DataSource {
	return &sqlDataSource{db: db}
}

type sqlDataSource struct {
	db *sql.DB
}

var _ DataSource = (*sqlDataSource)(nil)

func (s *sqlDataSource) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *sqlDataSource) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &sqlRows{rows: rows, cols: cols, index: index}, nil
}

func (s *sqlDataSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlDataSource) Close() error {
	return s.db.Close()
}

// sqlRows adapts *sql.Rows to the Rows contract. Each Next scans the whole
// row into driver values; the typed getters then coerce on demand. A value
// that cannot be coerced reads as the zero value, but the failure is
// recorded and surfaces through Err so corruption is not mistaken for a
// legitimate zero.
type sqlRows struct {
	rows    *sql.Rows
	cols    []string
	index   map[string]int
	current []any
	scanErr error
}

var _ Rows = (*sqlRows)(nil)

func (r *sqlRows) Next() bool {
	if !r.rows.Next() {
		return false
	}
	r.current = make([]any, len(r.cols))
	dest := make([]any, len(r.cols))
	for i := range r.current {
		dest[i] = &r.current[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.scanErr = err
		return false
	}
	return true
}

func (r *sqlRows) Err() error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return r.rows.Err()
}

// fail records the first coercion failure; later reads keep returning zero
// values but Err reports the original problem.
func (r *sqlRows) fail(i int, err error) {
	if r.scanErr == nil {
		r.scanErr = fmt.Errorf("column %q: %w", r.cols[i], err)
	}
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}

func (r *sqlRows) Columns() ([]string, error) {
	return r.cols, nil
}

func (r *sqlRows) ColumnIndex(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

func (r *sqlRows) IsNull(i int) bool {
	return i < 0 || i >= len(r.current) || r.current[i] == nil
}

func (r *sqlRows) Int64(i int) int64 {
	if r.IsNull(i) {
		return 0
	}
	switch v := r.current[i].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			r.fail(i, err)
		}
		return n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(i, err)
		}
		return n
	}
	return 0
}

func (r *sqlRows) Float64(i int) float64 {
	if r.IsNull(i) {
		return 0
	}
	switch v := r.current[i].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			r.fail(i, err)
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(i, err)
		}
		return f
	}
	return 0
}

func (r *sqlRows) String(i int) string {
	if r.IsNull(i) {
		return ""
	}
	switch v := r.current[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.UTC().Format(serializer.DateStringLayout)
	}
	return ""
}

package litemap

import (
	"context"
	"sort"
	"strings"
)

// autoIndexPrefix marks indexes SQLite creates on its own for PRIMARY KEY
// and UNIQUE column constraints. They cannot be dropped explicitly.
const autoIndexPrefix = "sqlite_autoindex_"

const indexNamesQuery = "SELECT name FROM sqlite_master WHERE type = ? AND tbl_name = ?"

// TableIndexNames lists the droppable indexes currently attached to a table,
// sorted by name. Automatic indexes are filtered out.
func TableIndexNames(ctx context.Context, ds DataSource, table string) ([]string, error) {
	rows, err := ds.Query(ctx, indexNamesQuery, "index", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		name := rows.String(0)
		if strings.HasPrefix(name, autoIndexPrefix) {
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

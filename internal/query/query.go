// Package query runs SQL against the cached Parquet tables through
// embedded DuckDB. Table names in the user's SQL are rewritten into
// read_parquet() calls; everything else is DuckDB's business.
package query

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2" // registers the duckdb driver

	"github.com/everstacklabs/modelfuse/internal/cache"
	"github.com/everstacklabs/modelfuse/internal/schema"
)

// Result holds the rendered rows of a query.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the query returned no rows.
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// Executor rewrites table names and forwards SQL to DuckDB.
type Executor struct {
	cache *cache.FileCache
}

// New creates an Executor over the cache directory.
func New(fc *cache.FileCache) *Executor {
	return &Executor{cache: fc}
}

// tablePattern matches any known table name on word boundaries, so
// identifiers merely containing a table name are left alone.
var tablePattern = func() *regexp.Regexp {
	names := make([]string, len(schema.All))
	for i, t := range schema.All {
		names[i] = regexp.QuoteMeta(t.Name)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}()

// Rewrite replaces known table names with read_parquet() calls in a single
// pass, so an inserted file path is never itself rescanned for table names.
// Matching is case-insensitive on word boundaries. Returns an error naming
// the refresh command when a referenced table has no backing file yet.
func (e *Executor) Rewrite(sqlText string) (string, error) {
	var missing error
	out := tablePattern.ReplaceAllStringFunc(sqlText, func(name string) string {
		t, ok := schema.Lookup(name)
		if !ok {
			return name
		}
		if !e.cache.HasParquet(t.Name) {
			if missing == nil {
				missing = fmt.Errorf("table %q not found: run '%s' first to fetch and cache the data", t.Name, t.RefreshHint)
			}
			return name
		}
		path := strings.ReplaceAll(e.cache.ParquetPath(t.Name), `\`, "/")
		path = strings.ReplaceAll(path, "'", "''")
		return fmt.Sprintf("read_parquet('%s')", path)
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// Run rewrites and executes a query against an in-memory DuckDB instance.
func (e *Executor) Run(sqlText string) (*Result, error) {
	rewritten, err := e.Rewrite(sqlText)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(rewritten)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &Result{Columns: cols}
	values := make([]any, len(cols))
	scanners := make([]any, len(cols))
	for i := range values {
		scanners[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanners...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = render(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// formatFloat trims trailing zeros so scores print as 61.5, not 61.500000.
func formatFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

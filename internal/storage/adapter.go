package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Result is the affected-row metadata of a write.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Handle is the persistence contract consumed by repositories. Both *Store
// and the *Tx passed to WithTx implement it.
type Handle interface {
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) (*sql.Row, error)
}

// Fields maps column names to values for Insert and Update.
type Fields map[string]interface{}

// columns returns the field names in sorted order so generated SQL is stable.
func (f Fields) columns() []string {
	cols := make([]string, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !identifierPattern.MatchString(n) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, n)
		}
	}
	return nil
}

// Select runs query and maps every row with scan, preserving row order.
func Select[T any](ctx context.Context, h Handle, query string, scan func(Scanner) (T, error), args ...interface{}) ([]T, error) {
	rows, err := h.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectOne runs query and maps the first row. Returns ErrNotFound when there is none.
func SelectOne[T any](ctx context.Context, h Handle, query string, scan func(Scanner) (T, error), args ...interface{}) (T, error) {
	var zero T
	row, err := h.QueryRow(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	item, err := scan(row)
	if err != nil {
		return zero, Wrap("select", "", err)
	}
	return item, nil
}

// Insert builds and runs a parameterized INSERT from fields.
func Insert(ctx context.Context, h Handle, table string, fields Fields) (Result, error) {
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("insert into %s: no fields", table)
	}
	cols := fields.columns()
	if err := checkIdentifiers(append([]string{table}, cols...)...); err != nil {
		return Result{}, err
	}

	args := make([]interface{}, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	res, err := h.Exec(ctx, query, args...)
	return res, Wrap("insert into", table, err)
}

// Update builds and runs a parameterized UPDATE of fields for rows matching where.
// The where clause must use ? placeholders; whereArgs follow the field values.
func Update(ctx context.Context, h Handle, table string, fields Fields, where string, whereArgs ...interface{}) (Result, error) {
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("update %s: no fields", table)
	}
	if strings.TrimSpace(where) == "" {
		return Result{}, fmt.Errorf("update %s: refusing to update without a where clause", table)
	}
	cols := fields.columns()
	if err := checkIdentifiers(append([]string{table}, cols...)...); err != nil {
		return Result{}, err
	}

	sets := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+len(whereArgs))
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, fields[c])
	}
	args = append(args, whereArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)

	res, err := h.Exec(ctx, query, args...)
	return res, Wrap("update", table, err)
}

// Delete removes rows matching where. An empty where deletes every row.
func Delete(ctx context.Context, h Handle, table string, where string, whereArgs ...interface{}) (Result, error) {
	if err := checkIdentifiers(table); err != nil {
		return Result{}, err
	}
	query := "DELETE FROM " + table
	if strings.TrimSpace(where) != "" {
		query += " WHERE " + where
	}
	res, err := h.Exec(ctx, query, whereArgs...)
	return res, Wrap("delete from", table, err)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func execOn(ctx context.Context, q querier, query string, args ...interface{}) (Result, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	var out Result
	// modernc sqlite always reports both; other drivers may not.
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out, nil
}

// Tx is the Handle handed to WithTx callbacks.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return execOn(ctx, t.tx, query, args...)
}

func (t *Tx) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	return t.tx.QueryRowContext(ctx, query, args...), nil
}

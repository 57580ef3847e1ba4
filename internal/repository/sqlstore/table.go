// Package sqlstore implements the repository contracts on top of database/sql
// (sqlite3 or Postgres through pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"forumapi/internal/repository"
)

// Table is the generic CRUD core shared by every resource repository.
// Resource types embed it and add their own queries.
type Table[T any] struct {
	db       *sqlx.DB
	name     string
	columns  []string
	fillable map[string]bool
}

func newTable[T any](db *sqlx.DB, name string, columns, fillable []string) *Table[T] {
	allowed := make(map[string]bool, len(fillable))
	for _, c := range fillable {
		allowed[c] = true
	}
	return &Table[T]{db: db, name: name, columns: columns, fillable: allowed}
}

func (t *Table[T]) FetchAll(ctx context.Context) ([]T, error) {
	out := []T{}
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, strings.Join(t.columns, ", "), t.name)
	if err := t.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.name, err)
	}
	return out, nil
}

func (t *Table[T]) FetchOne(ctx context.Context, id int64) (T, error) {
	return t.fetchBy(ctx, "id", id)
}

func (t *Table[T]) fetchBy(ctx context.Context, column string, value any) (T, error) {
	var row T
	q := t.db.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, strings.Join(t.columns, ", "), t.name, column))
	if err := t.db.GetContext(ctx, &row, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, repository.ErrNotFound
		}
		return row, fmt.Errorf("fetch %s by %s: %w", t.name, column, err)
	}
	return row, nil
}

func (t *Table[T]) Create(ctx context.Context, attrs repository.Attributes) (T, error) {
	id, err := t.insert(ctx, t.filter(attrs))
	if err != nil {
		var zero T
		return zero, err
	}
	return t.FetchOne(ctx, id)
}

// insert writes values as-is; callers are responsible for filtering.
func (t *Table[T]) insert(ctx context.Context, values repository.Attributes) (int64, error) {
	now := time.Now().UTC()
	cols := sortedKeys(values)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		args = append(args, values[c])
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := t.db.Rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`, t.name, strings.Join(cols, ", "), marks))

	var id int64
	if err := t.db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, t.writeError("create", err)
	}
	return id, nil
}

func (t *Table[T]) Update(ctx context.Context, id int64, attrs repository.Attributes) (T, error) {
	if err := t.update(ctx, id, t.filter(attrs)); err != nil {
		var zero T
		return zero, err
	}
	return t.FetchOne(ctx, id)
}

func (t *Table[T]) update(ctx context.Context, id int64, values repository.Attributes) error {
	if len(values) == 0 {
		_, err := t.FetchOne(ctx, id)
		return err
	}
	cols := sortedKeys(values)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
		args = append(args, values[c])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	q := t.db.Rebind(fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.name, strings.Join(sets, ", ")))
	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return t.writeError("update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *Table[T]) Remove(ctx context.Context, id int64) error {
	q := t.db.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name))
	if _, err := t.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("remove from %s: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) ValueIsUnique(ctx context.Context, value any, column string, ignoreID int64) (bool, error) {
	if err := t.checkColumn(column); err != nil {
		return false, err
	}
	var n int
	q := t.db.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND id <> ?`, t.name, column))
	if err := t.db.GetContext(ctx, &n, q, value, ignoreID); err != nil {
		return false, fmt.Errorf("unique check %s.%s: %w", t.name, column, err)
	}
	return n == 0, nil
}

func (t *Table[T]) ValueExists(ctx context.Context, value any, column string) (bool, error) {
	if err := t.checkColumn(column); err != nil {
		return false, err
	}
	var n int
	q := t.db.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, t.name, column))
	if err := t.db.GetContext(ctx, &n, q, value); err != nil {
		return false, fmt.Errorf("exists check %s.%s: %w", t.name, column, err)
	}
	return n > 0, nil
}

// filter keeps the allow-listed keys; everything else is dropped without complaint.
func (t *Table[T]) filter(attrs repository.Attributes) repository.Attributes {
	out := make(repository.Attributes, len(attrs))
	for k, v := range attrs {
		if t.fillable[k] {
			out[k] = v
		}
	}
	return out
}

// checkColumn guards the identifiers that get interpolated into SQL.
func (t *Table[T]) checkColumn(column string) error {
	for _, c := range t.columns {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("unknown column %s.%s", t.name, column)
}

func (t *Table[T]) writeError(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%s %s: %w: %v", op, t.name, repository.ErrConstraint, err)
	}
	return fmt.Errorf("%s %s: %w", op, t.name, err)
}

func isConstraintViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

func sortedKeys(values repository.Attributes) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

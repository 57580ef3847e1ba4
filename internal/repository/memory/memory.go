// Package memory provides thread-safe in-memory repositories. They mirror the
// sqlstore behaviour (allow-lists, unique and not-null columns, the category
// removal guard) and are intended for tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

// schema describes how a table reads and writes the columns of T.
type schema[T any] struct {
	fillable []string
	required []string
	unique   []string
	get      func(row *T, column string) (any, bool)
	set      func(row *T, column string, value any) error
	stamp    func(row *T, id int64, now time.Time, created bool)
}

type table[T any] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	schema schema[T]
}

func newTable[T any](s schema[T]) *table[T] {
	return &table[T]{rows: make(map[int64]T), nextID: 1, schema: s}
}

func (t *table[T]) FetchAll(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out, nil
}

func (t *table[T]) FetchOne(_ context.Context, id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return row, repository.ErrNotFound
	}
	return row, nil
}

func (t *table[T]) Create(ctx context.Context, attrs repository.Attributes) (T, error) {
	return t.insert(ctx, t.filter(attrs))
}

func (t *table[T]) insert(_ context.Context, values repository.Attributes) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var row T
	for _, c := range t.schema.required {
		if v, ok := values[c]; !ok || v == nil {
			return row, fmt.Errorf("%w: %s is required", repository.ErrConstraint, c)
		}
	}
	for c, v := range values {
		if err := t.schema.set(&row, c, v); err != nil {
			return row, err
		}
	}
	if err := t.checkUniqueLocked(&row, 0); err != nil {
		return row, err
	}
	id := t.nextID
	t.nextID++
	t.schema.stamp(&row, id, time.Now().UTC(), true)
	t.rows[id] = row
	return row, nil
}

func (t *table[T]) Update(ctx context.Context, id int64, attrs repository.Attributes) (T, error) {
	return t.update(ctx, id, t.filter(attrs))
}

func (t *table[T]) update(_ context.Context, id int64, values repository.Attributes) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return row, repository.ErrNotFound
	}
	if len(values) == 0 {
		return row, nil
	}
	for c, v := range values {
		if err := t.schema.set(&row, c, v); err != nil {
			return t.rows[id], err
		}
	}
	if err := t.checkUniqueLocked(&row, id); err != nil {
		return t.rows[id], err
	}
	t.schema.stamp(&row, id, time.Now().UTC(), false)
	t.rows[id] = row
	return row, nil
}

func (t *table[T]) Remove(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, id)
	return nil
}

func (t *table[T]) ValueIsUnique(_ context.Context, value any, column string, ignoreID int64) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.countLocked(value, column, ignoreID)
	return n == 0, err
}

func (t *table[T]) ValueExists(_ context.Context, value any, column string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.countLocked(value, column, 0)
	return n > 0, err
}

func (t *table[T]) countLocked(value any, column string, ignoreID int64) (int, error) {
	want := key(value)
	n := 0
	for id, row := range t.rows {
		if id == ignoreID {
			continue
		}
		got, ok := t.schema.get(&row, column)
		if !ok {
			return 0, fmt.Errorf("unknown column %s", column)
		}
		if key(got) == want {
			n++
		}
	}
	return n, nil
}

func (t *table[T]) checkUniqueLocked(row *T, self int64) error {
	for _, c := range t.schema.unique {
		v, _ := t.schema.get(row, c)
		n, err := t.countLocked(v, c, self)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: duplicate %s", repository.ErrConstraint, c)
		}
	}
	return nil
}

func (t *table[T]) filter(attrs repository.Attributes) repository.Attributes {
	out := make(repository.Attributes, len(attrs))
	for _, c := range t.schema.fillable {
		if v, ok := attrs[c]; ok {
			out[c] = v
		}
	}
	return out
}

// key gives values of different Go types a common comparable form, the way a
// database compares a bound parameter against a column.
func key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func asString(column string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be text", repository.ErrConstraint, column)
	}
	return s, nil
}

func asInt(column string, v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x == float64(int64(x)) {
			return int64(x), nil
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer", repository.ErrConstraint, column)
}

// Store holds one in-memory repository per resource.
type Store struct {
	Users      *Users
	Categories *Categories
	Posts      *Posts
	Comments   *Comments
	AuditLogs  *AuditLogs
}

func New() *Store {
	s := &Store{
		Users:     NewUsers(),
		Posts:     NewPosts(),
		AuditLogs: &AuditLogs{},
	}
	s.Categories = NewCategories(s.Posts)
	s.Comments = NewComments(s.Users)
	return s
}

// Set exposes the store through the repository contracts.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Users:      s.Users,
		Categories: s.Categories,
		Posts:      s.Posts,
		Comments:   s.Comments,
		AuditLogs:  s.AuditLogs,
	}
}

// AuditLogs keeps entries in arrival order.
type AuditLogs struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (a *AuditLogs) Append(_ context.Context, entry models.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry.ID = int64(len(a.entries) + 1)
	a.entries = append(a.entries, entry)
	return nil
}

func (a *AuditLogs) FetchAll(_ context.Context) ([]models.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}

// Package repository defines the storage contracts the HTTP layer depends on.
// Implementations live in the sqlstore and memory subpackages.
package repository

import (
	"context"
	"errors"

	"forumapi/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConstraint is returned when a write violates a storage constraint
	// (unique key, not null) that validation did not catch.
	ErrConstraint = errors.New("constraint violation")
)

// Attributes is a set of column values for a create or update.
// Repositories drop every key that is not on their allow-list.
type Attributes map[string]any

// Checker answers the storage questions asked by autonomous validation rules.
type Checker interface {
	// ValueIsUnique reports whether no row other than ignoreID has column == value.
	ValueIsUnique(ctx context.Context, value any, column string, ignoreID int64) (bool, error)
	// ValueExists reports whether at least one row has column == value.
	ValueExists(ctx context.Context, value any, column string) (bool, error)
}

// Repository is the contract shared by every top-level resource.
type Repository[T any] interface {
	Checker

	FetchAll(ctx context.Context) ([]T, error)
	FetchOne(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, attrs Attributes) (T, error)
	Update(ctx context.Context, id int64, attrs Attributes) (T, error)
	// Remove deletes the row; removing a missing id is not an error.
	Remove(ctx context.Context, id int64) error
}

type Users interface {
	Repository[models.User]

	GetByAPIKey(ctx context.Context, key string) (models.User, error)
}

// Categories skips Remove silently while any post still references the category.
type Categories interface {
	Repository[models.Category]
}

type Posts interface {
	Repository[models.Post]
}

// Comments are always addressed through their parent post. Fetches load the author.
type Comments interface {
	Checker

	FetchAllForPost(ctx context.Context, postID int64) ([]models.Comment, error)
	FetchOne(ctx context.Context, id int64) (models.Comment, error)
	CreateForPost(ctx context.Context, postID, userID int64, content string) (models.Comment, error)
	Update(ctx context.Context, id int64, attrs Attributes) (models.Comment, error)
	Remove(ctx context.Context, id int64) error
}

// AuditLogs is the write-only sink for captured requests. FetchAll exists for inspection.
type AuditLogs interface {
	Append(ctx context.Context, entry models.AuditEntry) error
	FetchAll(ctx context.Context) ([]models.AuditEntry, error)
}

// Set bundles one repository per resource, built once at start-up.
type Set struct {
	Users      Users
	Categories Categories
	Posts      Posts
	Comments   Comments
	AuditLogs  AuditLogs
}

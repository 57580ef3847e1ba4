package sqlstore

import (
	"github.com/jmoiron/sqlx"

	"forumapi/internal/repository"
)

// New builds every repository over one shared connection pool.
func New(db *sqlx.DB) repository.Set {
	return repository.Set{
		Users:      NewUsers(db),
		Categories: NewCategories(db),
		Posts:      NewPosts(db),
		Comments:   NewComments(db),
		AuditLogs:  NewAuditLogs(db),
	}
}

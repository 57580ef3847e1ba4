package sqlstore

import (
	"github.com/jmoiron/sqlx"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

type Posts struct {
	*Table[models.Post]
}

var _ repository.Posts = (*Posts)(nil)

func NewPosts(db *sqlx.DB) *Posts {
	return &Posts{Table: newTable[models.Post](db, "posts",
		[]string{"id", "title", "content", "user_id", "category_id", "created_at", "updated_at"},
		[]string{"title", "content", "user_id", "category_id"},
	)}
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

const commentSelect = `SELECT c.id, c.content, c.user_id, c.post_id, c.created_at, c.updated_at,
	u.id AS author_id, u.full_name AS author_full_name, u.email AS author_email
FROM comments c
LEFT JOIN users u ON u.id = c.user_id`

type Comments struct {
	*Table[models.Comment]
}

var _ repository.Comments = (*Comments)(nil)

func NewComments(db *sqlx.DB) *Comments {
	return &Comments{Table: newTable[models.Comment](db, "comments",
		[]string{"id", "content", "user_id", "post_id", "created_at", "updated_at"},
		[]string{"content"},
	)}
}

type commentRow struct {
	models.Comment
	AuthorID       sql.NullInt64  `db:"author_id"`
	AuthorFullName sql.NullString `db:"author_full_name"`
	AuthorEmail    sql.NullString `db:"author_email"`
}

func (r commentRow) comment() models.Comment {
	c := r.Comment
	if r.AuthorID.Valid {
		c.Author = &models.Author{ID: r.AuthorID.Int64, FullName: r.AuthorFullName.String, Email: r.AuthorEmail.String}
	}
	return c
}

func (c *Comments) FetchAllForPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	var rows []commentRow
	q := c.db.Rebind(commentSelect + ` WHERE c.post_id = ? ORDER BY c.id`)
	if err := c.db.SelectContext(ctx, &rows, q, postID); err != nil {
		return nil, fmt.Errorf("fetch comments for post %d: %w", postID, err)
	}
	out := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.comment())
	}
	return out, nil
}

func (c *Comments) FetchOne(ctx context.Context, id int64) (models.Comment, error) {
	var row commentRow
	q := c.db.Rebind(commentSelect + ` WHERE c.id = ?`)
	if err := c.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Comment{}, repository.ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("fetch comment %d: %w", id, err)
	}
	return row.comment(), nil
}

func (c *Comments) CreateForPost(ctx context.Context, postID, userID int64, content string) (models.Comment, error) {
	id, err := c.insert(ctx, repository.Attributes{
		"content": content,
		"user_id": userID,
		"post_id": postID,
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c.FetchOne(ctx, id)
}

// Update only ever changes the content; the author and parent post are fixed.
func (c *Comments) Update(ctx context.Context, id int64, attrs repository.Attributes) (models.Comment, error) {
	if err := c.update(ctx, id, c.filter(attrs)); err != nil {
		return models.Comment{}, err
	}
	return c.FetchOne(ctx, id)
}

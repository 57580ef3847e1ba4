package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

type Categories struct {
	*Table[models.Category]
}

var _ repository.Categories = (*Categories)(nil)

func NewCategories(db *sqlx.DB) *Categories {
	return &Categories{Table: newTable[models.Category](db, "categories",
		[]string{"id", "label", "created_at", "updated_at"},
		[]string{"label"},
	)}
}

// Remove leaves categories that posts still use in place.
func (c *Categories) Remove(ctx context.Context, id int64) error {
	var n int
	q := c.db.Rebind(`SELECT COUNT(*) FROM posts WHERE category_id = ?`)
	if err := c.db.GetContext(ctx, &n, q, id); err != nil {
		return fmt.Errorf("count posts for category %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	return c.Table.Remove(ctx, id)
}

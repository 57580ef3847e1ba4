// Package seed fills a fresh database with sample forum content.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

// DefaultCount is the number of rows created per resource.
const DefaultCount = 5

// Result lists what Seed created.
type Result struct {
	Users      []models.User
	Categories []models.Category
	Posts      []models.Post
	Comments   []models.Comment
}

// Seed creates n users and n categories, one post per user/category pair and
// one comment per post written by the next user. Values carry a random tag so
// seeding can be repeated against the same database.
func Seed(ctx context.Context, repos repository.Set, n int) (Result, error) {
	var res Result
	if n <= 0 {
		return res, nil
	}
	tag := uuid.NewString()[:8]

	for i := 1; i <= n; i++ {
		u, err := repos.Users.Create(ctx, repository.Attributes{
			"full_name": fmt.Sprintf("Sample User %d %s", i, tag),
			"email":     fmt.Sprintf("user%d.%s@example.com", i, tag),
		})
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		res.Users = append(res.Users, u)

		c, err := repos.Categories.Create(ctx, repository.Attributes{
			"label": fmt.Sprintf("Category %d %s", i, tag),
		})
		if err != nil {
			return res, fmt.Errorf("seed category %d: %w", i, err)
		}
		res.Categories = append(res.Categories, c)
	}

	for i := 0; i < n; i++ {
		p, err := repos.Posts.Create(ctx, repository.Attributes{
			"title":       fmt.Sprintf("Sample post %d %s", i+1, tag),
			"content":     fmt.Sprintf("This is the body of sample post number %d.", i+1),
			"user_id":     res.Users[i].ID,
			"category_id": res.Categories[i].ID,
		})
		if err != nil {
			return res, fmt.Errorf("seed post %d: %w", i+1, err)
		}
		res.Posts = append(res.Posts, p)
	}

	for i, p := range res.Posts {
		author := res.Users[(i+1)%n]
		c, err := repos.Comments.CreateForPost(ctx, p.ID, author.ID, fmt.Sprintf("A sample comment on post %d.", i+1))
		if err != nil {
			return res, fmt.Errorf("seed comment %d: %w", i+1, err)
		}
		res.Comments = append(res.Comments, c)
	}
	return res, nil
}

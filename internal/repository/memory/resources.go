package memory

import (
	"context"
	"time"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

type Users struct {
	*table[models.User]
}

var _ repository.Users = (*Users)(nil)

func NewUsers() *Users {
	return &Users{table: newTable(schema[models.User]{
		fillable: []string{"full_name", "email"},
		required: []string{"full_name", "email", "api_key"},
		unique:   []string{"email", "api_key"},
		get: func(u *models.User, c string) (any, bool) {
			switch c {
			case "id":
				return u.ID, true
			case "full_name":
				return u.FullName, true
			case "email":
				return u.Email, true
			case "api_key":
				return u.APIKey, true
			}
			return nil, false
		},
		set: func(u *models.User, c string, v any) (err error) {
			switch c {
			case "full_name":
				u.FullName, err = asString(c, v)
			case "email":
				u.Email, err = asString(c, v)
			case "api_key":
				u.APIKey, err = asString(c, v)
			}
			return err
		},
		stamp: func(u *models.User, id int64, now time.Time, created bool) {
			u.ID, u.UpdatedAt = id, now
			if created {
				u.CreatedAt = now
			}
		},
	})}
}

func (u *Users) Create(ctx context.Context, attrs repository.Attributes) (models.User, error) {
	values := u.filter(attrs)
	key, err := repository.NewAPIKey(values)
	if err != nil {
		return models.User{}, err
	}
	values["api_key"] = key
	return u.insert(ctx, values)
}

func (u *Users) GetByAPIKey(_ context.Context, key string) (models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if key != "" {
		for _, row := range u.rows {
			if row.APIKey == key {
				return row, nil
			}
		}
	}
	return models.User{}, repository.ErrNotFound
}

type Categories struct {
	*table[models.Category]
	posts *Posts
}

var _ repository.Categories = (*Categories)(nil)

func NewCategories(posts *Posts) *Categories {
	return &Categories{posts: posts, table: newTable(schema[models.Category]{
		fillable: []string{"label"},
		required: []string{"label"},
		unique:   []string{"label"},
		get: func(c *models.Category, col string) (any, bool) {
			switch col {
			case "id":
				return c.ID, true
			case "label":
				return c.Label, true
			}
			return nil, false
		},
		set: func(c *models.Category, col string, v any) (err error) {
			if col == "label" {
				c.Label, err = asString(col, v)
			}
			return err
		},
		stamp: func(c *models.Category, id int64, now time.Time, created bool) {
			c.ID, c.UpdatedAt = id, now
			if created {
				c.CreatedAt = now
			}
		},
	})}
}

func (c *Categories) Remove(ctx context.Context, id int64) error {
	inUse, err := c.posts.ValueExists(ctx, id, "category_id")
	if err != nil {
		return err
	}
	if inUse {
		return nil
	}
	return c.table.Remove(ctx, id)
}

type Posts struct {
	*table[models.Post]
}

var _ repository.Posts = (*Posts)(nil)

func NewPosts() *Posts {
	return &Posts{table: newTable(schema[models.Post]{
		fillable: []string{"title", "content", "user_id", "category_id"},
		required: []string{"title", "content", "user_id", "category_id"},
		unique:   []string{"title"},
		get: func(p *models.Post, c string) (any, bool) {
			switch c {
			case "id":
				return p.ID, true
			case "title":
				return p.Title, true
			case "content":
				return p.Content, true
			case "user_id":
				return p.UserID, true
			case "category_id":
				return p.CategoryID, true
			}
			return nil, false
		},
		set: func(p *models.Post, c string, v any) (err error) {
			switch c {
			case "title":
				p.Title, err = asString(c, v)
			case "content":
				p.Content, err = asString(c, v)
			case "user_id":
				p.UserID, err = asInt(c, v)
			case "category_id":
				p.CategoryID, err = asInt(c, v)
			}
			return err
		},
		stamp: func(p *models.Post, id int64, now time.Time, created bool) {
			p.ID, p.UpdatedAt = id, now
			if created {
				p.CreatedAt = now
			}
		},
	})}
}

type Comments struct {
	*table[models.Comment]
	users *Users
}

var _ repository.Comments = (*Comments)(nil)

func NewComments(users *Users) *Comments {
	return &Comments{users: users, table: newTable(schema[models.Comment]{
		fillable: []string{"content"},
		required: []string{"content", "user_id", "post_id"},
		get: func(cm *models.Comment, c string) (any, bool) {
			switch c {
			case "id":
				return cm.ID, true
			case "content":
				return cm.Content, true
			case "user_id":
				return cm.UserID, true
			case "post_id":
				return cm.PostID, true
			}
			return nil, false
		},
		set: func(cm *models.Comment, c string, v any) (err error) {
			switch c {
			case "content":
				cm.Content, err = asString(c, v)
			case "user_id":
				cm.UserID, err = asInt(c, v)
			case "post_id":
				cm.PostID, err = asInt(c, v)
			}
			return err
		},
		stamp: func(cm *models.Comment, id int64, now time.Time, created bool) {
			cm.ID, cm.UpdatedAt = id, now
			if created {
				cm.CreatedAt = now
			}
		},
	})}
}

func (c *Comments) FetchAllForPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	all, err := c.table.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0)
	for _, cm := range all {
		if cm.PostID == postID {
			out = append(out, c.withAuthor(ctx, cm))
		}
	}
	return out, nil
}

func (c *Comments) FetchOne(ctx context.Context, id int64) (models.Comment, error) {
	cm, err := c.table.FetchOne(ctx, id)
	if err != nil {
		return cm, err
	}
	return c.withAuthor(ctx, cm), nil
}

func (c *Comments) CreateForPost(ctx context.Context, postID, userID int64, content string) (models.Comment, error) {
	cm, err := c.insert(ctx, repository.Attributes{"content": content, "user_id": userID, "post_id": postID})
	if err != nil {
		return cm, err
	}
	return c.withAuthor(ctx, cm), nil
}

func (c *Comments) Update(ctx context.Context, id int64, attrs repository.Attributes) (models.Comment, error) {
	cm, err := c.table.Update(ctx, id, attrs)
	if err != nil {
		return cm, err
	}
	return c.withAuthor(ctx, cm), nil
}

func (c *Comments) withAuthor(ctx context.Context, cm models.Comment) models.Comment {
	if u, err := c.users.FetchOne(ctx, cm.UserID); err == nil {
		cm.Author = &models.Author{ID: u.ID, FullName: u.FullName, Email: u.Email}
	}
	return cm
}

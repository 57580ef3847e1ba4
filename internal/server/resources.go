package server

import "forumapi/internal/models"

// Response shapes. Internal columns (timestamps, api keys) never leave the
// server except through sneakyUserResource.

type categoryResource struct {
	ID    int64  `json:"category_id"`
	Label string `json:"label"`
}

func newCategoryResource(c models.Category) categoryResource {
	return categoryResource{ID: c.ID, Label: c.Label}
}

type userResource struct {
	ID       int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func newUserResource(u models.User) userResource {
	return userResource{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

type sneakyUserResource struct {
	userResource
	APIKey string `json:"api_key"`
}

func newSneakyUserResource(u models.User) sneakyUserResource {
	return sneakyUserResource{userResource: newUserResource(u), APIKey: u.APIKey}
}

type postResource struct {
	ID         int64  `json:"post_id"`
	Title      string `json:"post_title"`
	Content    string `json:"post_content"`
	UserID     int64  `json:"user_id"`
	CategoryID int64  `json:"category_id"`
}

func newPostResource(p models.Post) postResource {
	return postResource{ID: p.ID, Title: p.Title, Content: p.Content, UserID: p.UserID, CategoryID: p.CategoryID}
}

type commentResource struct {
	ID      int64         `json:"comment_id"`
	Content string        `json:"content"`
	User    *userResource `json:"user,omitempty"`
}

func newCommentResource(c models.Comment) commentResource {
	out := commentResource{ID: c.ID, Content: c.Content}
	if c.Author != nil {
		out.User = &userResource{ID: c.Author.ID, FullName: c.Author.FullName, Email: c.Author.Email}
	}
	return out
}

func mapAll[T, R any](items []T, f func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

func TestTableCreateFiltersAndEnforcesUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, err := s.Categories.Create(ctx, repository.Attributes{"label": "Databases", "id": int64(50), "extra": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = s.Categories.Create(ctx, repository.Attributes{"label": "Databases"})
	assert.ErrorIs(t, err, repository.ErrConstraint)

	_, err = s.Categories.Create(ctx, repository.Attributes{})
	assert.ErrorIs(t, err, repository.ErrConstraint)
}

func TestTableUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, err := s.Posts.Create(ctx, repository.Attributes{"title": "Memory post", "content": "Kept in a map", "user_id": int64(1), "category_id": int64(2)})
	require.NoError(t, err)

	up, err := s.Posts.Update(ctx, p.ID, repository.Attributes{"category_id": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), up.CategoryID)
	assert.Equal(t, "Memory post", up.Title)

	_, err = s.Posts.Update(ctx, 99, repository.Attributes{"title": "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersAPIKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Users.Create(ctx, repository.Attributes{"full_name": "Margaret Hamilton", "email": "mh@example.com", "api_key": "mine"})
	require.NoError(t, err)
	assert.NotEqual(t, "mine", u.APIKey)

	got, err := s.Users.GetByAPIKey(ctx, u.APIKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users.GetByAPIKey(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCategoryRemoveGuard(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, err := s.Categories.Create(ctx, repository.Attributes{"label": "Guarded"})
	require.NoError(t, err)
	p, err := s.Posts.Create(ctx, repository.Attributes{"title": "Holder", "content": "Holds the category", "user_id": int64(1), "category_id": c.ID})
	require.NoError(t, err)

	require.NoError(t, s.Categories.Remove(ctx, c.ID))
	_, err = s.Categories.FetchOne(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, s.Posts.Remove(ctx, p.ID))
	require.NoError(t, s.Categories.Remove(ctx, c.ID))
	_, err = s.Categories.FetchOne(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCommentsAuthor(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Users.Create(ctx, repository.Attributes{"full_name": "Frances Allen", "email": "fa@example.com"})
	require.NoError(t, err)

	c, err := s.Comments.CreateForPost(ctx, 1, u.ID, "In memory comment")
	require.NoError(t, err)
	assert.Equal(t, &models.Author{ID: u.ID, FullName: "Frances Allen", Email: "fa@example.com"}, c.Author)

	require.NoError(t, s.Users.Remove(ctx, u.ID))
	list, err := s.Comments.FetchAllForPost(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Author)
}

func TestValueChecksCompareAcrossTypes(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, err := s.Categories.Create(ctx, repository.Attributes{"label": "Typed"})
	require.NoError(t, err)

	ok, err := s.Categories.ValueExists(ctx, float64(c.ID), "id")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Categories.ValueExists(ctx, 1, "nope")
	assert.Error(t, err)
}

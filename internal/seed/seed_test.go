package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumapi/internal/repository/memory"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	res, err := Seed(ctx, store.Set(), DefaultCount)
	require.NoError(t, err)
	assert.Len(t, res.Users, DefaultCount)
	assert.Len(t, res.Categories, DefaultCount)
	assert.Len(t, res.Posts, DefaultCount)
	assert.Len(t, res.Comments, DefaultCount)

	for i, c := range res.Comments {
		assert.Equal(t, res.Posts[i].ID, c.PostID)
		require.NotNil(t, c.Author)
		assert.NotEqual(t, res.Posts[i].UserID, c.UserID)
	}

	// a second run must not collide with the first
	_, err = Seed(ctx, store.Set(), 2)
	require.NoError(t, err)
	users, err := store.Users.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, DefaultCount+2)
}

func TestSeedNothing(t *testing.T) {
	res, err := Seed(context.Background(), memory.New().Set(), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Users)
}

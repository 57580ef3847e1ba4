//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"forumapi/internal/db"
	"forumapi/internal/repository"
	"forumapi/internal/repository/sqlstore"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("forum"),
		postgres.WithUsername("forum"),
		postgres.WithPassword("forum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pg); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	database, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err)
	defer database.Close()
	s := sqlstore.New(database)

	u, err := s.Users.Create(ctx, repository.Attributes{"full_name": "Leslie Lamport", "email": "leslie@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.APIKey)

	_, err = s.Users.Create(ctx, repository.Attributes{"full_name": "Leslie Lamport", "email": "leslie@example.com"})
	assert.ErrorIs(t, err, repository.ErrConstraint)

	c, err := s.Categories.Create(ctx, repository.Attributes{"label": "Distributed"})
	require.NoError(t, err)
	p, err := s.Posts.Create(ctx, repository.Attributes{"title": "Paxos made simple", "content": "The Paxos algorithm", "user_id": u.ID, "category_id": c.ID})
	require.NoError(t, err)

	ok, err := s.Posts.ValueIsUnique(ctx, "Paxos made simple", "title", p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	cm, err := s.Comments.CreateForPost(ctx, p.ID, u.ID, "Clocks and ordering")
	require.NoError(t, err)
	require.NotNil(t, cm.Author)

	require.NoError(t, s.Categories.Remove(ctx, c.ID))
	_, err = s.Categories.FetchOne(ctx, c.ID)
	assert.NoError(t, err)

	require.NoError(t, db.Migrate(db.DriverPostgres, dsn, false))
}

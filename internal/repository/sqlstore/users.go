package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

type Users struct {
	*Table[models.User]
}

var _ repository.Users = (*Users)(nil)

func NewUsers(db *sqlx.DB) *Users {
	return &Users{Table: newTable[models.User](db, "users",
		[]string{"id", "full_name", "email", "api_key", "created_at", "updated_at"},
		[]string{"full_name", "email"},
	)}
}

// Create stores the user together with a freshly generated api key.
func (u *Users) Create(ctx context.Context, attrs repository.Attributes) (models.User, error) {
	values := u.filter(attrs)
	key, err := repository.NewAPIKey(values)
	if err != nil {
		return models.User{}, err
	}
	values["api_key"] = key

	id, err := u.insert(ctx, values)
	if err != nil {
		return models.User{}, err
	}
	return u.FetchOne(ctx, id)
}

func (u *Users) GetByAPIKey(ctx context.Context, key string) (models.User, error) {
	if key == "" {
		return models.User{}, repository.ErrNotFound
	}
	return u.fetchBy(ctx, "api_key", key)
}

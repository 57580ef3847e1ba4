package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumapi/internal/models"
	"forumapi/internal/repository"
	"forumapi/internal/repository/memory"
)

func newGate(t *testing.T) (*Gate, models.User) {
	t.Helper()
	store := memory.New()
	u, err := store.Users.Create(context.Background(), repository.Attributes{"full_name": "Ada Lovelace", "email": "ada@example.com"})
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	return NewGate(store.Users, log), u
}

func TestRequireRejectsMissingKey(t *testing.T) {
	gate, _ := newGate(t)
	called := false
	h := gate.RequireFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/post", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorised"}`, w.Body.String())
}

func TestRequireRejectsUnknownKey(t *testing.T) {
	gate, _ := newGate(t)
	called := false
	h := gate.RequireFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/post", nil)
	req.Header.Set(Header, "not-a-key")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePassesUserID(t *testing.T) {
	gate, u := newGate(t)
	var got int64
	h := gate.RequireFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/post/1", nil)
	req.Header.Set(Header, u.APIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, u.ID, got)
}

type failingUsers struct {
	repository.Users
}

func (failingUsers) GetByAPIKey(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("database is locked")
}

func TestRequireStorageFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	gate := NewGate(failingUsers{}, log)
	h := gate.RequireFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("handler must not run") })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/post", nil)
	req.Header.Set(Header, "k")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestUserIDAbsent(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)
}

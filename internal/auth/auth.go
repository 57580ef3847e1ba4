// Package auth resolves the api key sent by clients and guards mutating routes.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"forumapi/internal/repository"
)

// Header carries the caller's api key.
const Header = "api_key"

type ctxKey struct{}

// Gate lets a request through only when its api key belongs to a stored user.
type Gate struct {
	Users repository.Users
	Log   logrus.FieldLogger
}

func NewGate(users repository.Users, log logrus.FieldLogger) *Gate {
	return &Gate{Users: users, Log: log}
}

// Require wraps next so that it only runs for authenticated requests. The
// resolved user id is available to next through UserID.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(Header)
		user, err := g.Users.GetByAPIKey(r.Context(), key)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			unauthorised(w)
			return
		case err != nil:
			g.Log.WithError(err).Error("resolve api key")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "Server error"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user.ID)))
	})
}

// RequireFunc is Require for handler functions.
func (g *Gate) RequireFunc(next http.HandlerFunc) http.Handler {
	return g.Require(next)
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the id stored by the gate.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

func unauthorised(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorised"})
}

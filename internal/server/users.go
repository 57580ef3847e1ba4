package server

import (
	"net/http"

	"forumapi/internal/repository"
	"forumapi/internal/validation"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.Repos.Users.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(us, newUserResource))
}

// sneakyUsers lists users including their api keys. Debug aid.
func (s *Server) sneakyUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.Repos.Users.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(us, newSneakyUserResource))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	rules := validation.Set{
		"full_name": {validation.Required(), validation.String(), validation.Min(10)},
		"email":     {validation.Required(), validation.Email(), validation.Unique(s.Repos.Users, "email", 0)},
	}
	if !s.validate(w, r, "user", input, rules) {
		return
	}
	u, err := s.Repos.Users.Create(r.Context(), repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "User not found", "User could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, newUserResource(u))
}

func (s *Server) showUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	u, err := s.Repos.Users.FetchOne(r.Context(), id)
	if err != nil {
		s.storeFailed(w, r, err, "User not found", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, newUserResource(u))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if _, err := s.Repos.Users.FetchOne(r.Context(), id); err != nil {
		s.storeFailed(w, r, err, "User not found", "User update failed")
		return
	}
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	rules := validation.Set{
		"full_name": {validation.String(), validation.Min(10)},
		"email":     {validation.Email(), validation.Unique(s.Repos.Users, "email", id)},
	}
	if !s.validate(w, r, "user", input, rules) {
		return
	}
	u, err := s.Repos.Users.Update(r.Context(), id, repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "User not found", "User update failed")
		return
	}
	writeJSON(w, http.StatusOK, newUserResource(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		noContent(w)
		return
	}
	if err := s.Repos.Users.Remove(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	noContent(w)
}

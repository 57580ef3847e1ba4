package server

import (
	"net/http"

	"forumapi/internal/auth"
	"forumapi/internal/repository"
	"forumapi/internal/validation"
)

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.Repos.Posts.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(ps, newPostResource))
}

// createPost publishes a post authored by the caller; a user_id in the body is ignored.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())
	input["user_id"] = userID

	rules := validation.Set{
		"title":       {validation.Required(), validation.String(), validation.Min(5), validation.Unique(s.Repos.Posts, "title", 0)},
		"content":     {validation.Required(), validation.String(), validation.Min(10)},
		"user_id":     {validation.Required(), validation.Integer(), validation.Exists(s.Repos.Users, "id")},
		"category_id": {validation.Required(), validation.Integer(), validation.Exists(s.Repos.Categories, "id")},
	}
	if !s.validate(w, r, "post", input, rules) {
		return
	}
	p, err := s.Repos.Posts.Create(r.Context(), repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "Post not found", "Post could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, newPostResource(p))
}

func (s *Server) showPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}
	p, err := s.Repos.Posts.FetchOne(r.Context(), id)
	if err != nil {
		s.storeFailed(w, r, err, "Post not found", "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, newPostResource(p))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}
	if _, err := s.Repos.Posts.FetchOne(r.Context(), id); err != nil {
		s.storeFailed(w, r, err, "Post not found", "Post update failed")
		return
	}
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	rules := validation.Set{
		"title":       {validation.String(), validation.Min(5), validation.Unique(s.Repos.Posts, "title", id)},
		"content":     {validation.String(), validation.Min(10)},
		"user_id":     {validation.Integer(), validation.Exists(s.Repos.Users, "id")},
		"category_id": {validation.Integer(), validation.Exists(s.Repos.Categories, "id")},
	}
	if !s.validate(w, r, "post", input, rules) {
		return
	}
	p, err := s.Repos.Posts.Update(r.Context(), id, repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "Post not found", "Post update failed")
		return
	}
	writeJSON(w, http.StatusOK, newPostResource(p))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		noContent(w)
		return
	}
	if err := s.Repos.Posts.Remove(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	noContent(w)
}

package server

import (
	"context"
	"errors"
	"net/http"

	"forumapi/internal/auth"
	"forumapi/internal/models"
	"forumapi/internal/repository"
	"forumapi/internal/validation"
)

type postKey struct{}

// withPost resolves the {post} route variable and rejects the request when the
// post does not exist.
func (s *Server) withPost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "post")
		if !ok {
			writeMessage(w, http.StatusNotFound, "Selected post not found")
			return
		}
		p, err := s.Repos.Posts.FetchOne(r.Context(), id)
		if err != nil {
			s.storeFailed(w, r, err, "Selected post not found", "Selected post not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), postKey{}, p)))
	})
}

func parentPost(r *http.Request) models.Post {
	p, _ := r.Context().Value(postKey{}).(models.Post)
	return p
}

// linkedComment loads the {id} comment and checks it belongs to the parent
// post. A comment under another post is reported as missing.
func (s *Server) linkedComment(r *http.Request) (models.Comment, error) {
	id, ok := pathID(r, "id")
	if !ok {
		return models.Comment{}, repository.ErrNotFound
	}
	c, err := s.Repos.Comments.FetchOne(r.Context(), id)
	if err != nil {
		return c, err
	}
	if c.PostID != parentPost(r).ID {
		return models.Comment{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	cs, err := s.Repos.Comments.FetchAllForPost(r.Context(), parentPost(r).ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(cs, newCommentResource))
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())
	input["user_id"] = userID

	rules := validation.Set{
		"content": {validation.Required(), validation.String(), validation.Min(10)},
		"user_id": {validation.Required(), validation.Integer(), validation.Exists(s.Repos.Users, "id")},
	}
	if !s.validate(w, r, "comment", input, rules) {
		return
	}
	c, err := s.Repos.Comments.CreateForPost(r.Context(), parentPost(r).ID, userID, input["content"].(string))
	if err != nil {
		s.storeFailed(w, r, err, "Comment could not be found", "Comment could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, newCommentResource(c))
}

func (s *Server) showComment(w http.ResponseWriter, r *http.Request) {
	c, err := s.linkedComment(r)
	if err != nil {
		s.storeFailed(w, r, err, "Comment could not be found", "Comment could not be found")
		return
	}
	writeJSON(w, http.StatusOK, newCommentResource(c))
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	c, err := s.linkedComment(r)
	if err != nil {
		s.storeFailed(w, r, err, "Comment could not be found", "Comment update failed")
		return
	}
	input, ok := s.decode(w, r)
	if !ok {
		return
	}
	rules := validation.Set{
		"content": {validation.Required(), validation.String(), validation.Min(10)},
	}
	if !s.validate(w, r, "comment", input, rules) {
		return
	}
	c, err = s.Repos.Comments.Update(r.Context(), c.ID, repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "Comment could not be found", "Comment update failed")
		return
	}
	writeJSON(w, http.StatusOK, newCommentResource(c))
}

// deleteComment is a no-op for unknown ids but refuses a comment that belongs
// to another post.
func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		noContent(w)
		return
	}
	c, err := s.Repos.Comments.FetchOne(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		noContent(w)
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	case c.PostID != parentPost(r).ID:
		writeMessage(w, http.StatusNotFound, "Comment could not be found")
		return
	}
	if err := s.Repos.Comments.Remove(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	noContent(w)
}

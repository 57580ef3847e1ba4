package server

import (
	"net/http"

	"forumapi/internal/repository"
	"forumapi/internal/validation"
)

func (s *Server) categoryRules(ignoreID int64) validation.Set {
	return validation.Set{
		"label": {validation.Required(), validation.String(), validation.Min(5), validation.Unique(s.Repos.Categories, "label", ignoreID)},
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.Repos.Categories.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(cs, newCategoryResource))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decode(w, r)
	if !ok || !s.validate(w, r, "category", input, s.categoryRules(0)) {
		return
	}
	c, err := s.Repos.Categories.Create(r.Context(), repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "Category not found", "Category could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResource(c))
}

func (s *Server) showCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	c, err := s.Repos.Categories.FetchOne(r.Context(), id)
	if err != nil {
		s.storeFailed(w, r, err, "Category not found", "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResource(c))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if _, err := s.Repos.Categories.FetchOne(r.Context(), id); err != nil {
		s.storeFailed(w, r, err, "Category not found", "Category update failed")
		return
	}
	input, ok := s.decode(w, r)
	if !ok || !s.validate(w, r, "category", input, s.categoryRules(id)) {
		return
	}
	c, err := s.Repos.Categories.Update(r.Context(), id, repository.Attributes(input))
	if err != nil {
		s.storeFailed(w, r, err, "Category not found", "Category update failed")
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResource(c))
}

// deleteCategory answers 204 even when the category is kept because posts
// still reference it.
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		noContent(w)
		return
	}
	if err := s.Repos.Categories.Remove(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	noContent(w)
}

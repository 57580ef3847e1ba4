package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"forumapi/internal/repository"
	"forumapi/internal/validation"
)

type messageBody struct {
	Message string `json:"message"`
}

type invalidBody struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeMessage(w, http.StatusInternalServerError, "Server error")
}

// storeFailed maps a repository error to a response.
func (s *Server) storeFailed(w http.ResponseWriter, r *http.Request, err error, missing, rejected string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, missing)
	case errors.Is(err, repository.ErrConstraint):
		s.Log.WithError(err).Debug("write rejected by storage")
		writeMessage(w, http.StatusUnprocessableEntity, rejected)
	default:
		s.serverError(w, r, err)
	}
}

// decode reads a JSON object body. An empty body is an empty object. Numbers
// come back as int64 when integral and float64 otherwise.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	input := map[string]any{}
	if r.Body == nil {
		return input, true
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Malformed JSON body")
		return nil, false
	}
	if input == nil {
		input = map[string]any{}
	}
	for k, v := range input {
		input[k] = normalize(v)
	}
	return input, true
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
	}
	return v
}

// validate writes the 422 response itself and reports whether the handler may go on.
func (s *Server) validate(w http.ResponseWriter, r *http.Request, resource string, input map[string]any, set validation.Set) bool {
	errs, err := validation.Validate(r.Context(), input, set)
	if err != nil {
		s.serverError(w, r, err)
		return false
	}
	if len(errs) > 0 {
		s.Metrics.ValidationFailed(resource)
		writeJSON(w, http.StatusUnprocessableEntity, invalidBody{Message: validation.Message, Errors: errs})
		return false
	}
	return true
}

// pathID reads a numeric route variable. The route patterns only admit digits,
// so failure means the value overflowed and nothing can match it.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

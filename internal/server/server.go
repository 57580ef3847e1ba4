// Package server exposes the forum repositories as a versioned JSON API.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"forumapi/internal/audit"
	"forumapi/internal/auth"
	"forumapi/internal/metrics"
	"forumapi/internal/repository"
)

// Prefix is the path every API route lives under.
const Prefix = "/api/v1"

type Server struct {
	Repos   repository.Set
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics

	gate    *auth.Gate
	audit   *audit.Logger
	limiter *rateLimiter
	ping    func(context.Context) error
	origins []string
	handler http.Handler
}

type Options struct {
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	// AuditSink defaults to the api_logs repository.
	AuditSink audit.Sink
	// RateLimit is requests per second per client for mutating verbs; 0 disables it.
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
	// MaxBodyBytes overrides audit.DefaultMaxBody when positive.
	MaxBodyBytes int64
	// Ping backs /healthz.
	Ping func(context.Context) error
}

func New(repos repository.Set, opts Options) *Server {
	s := &Server{
		Repos:   repos,
		Log:     opts.Log,
		Metrics: opts.Metrics,
		ping:    opts.Ping,
		origins: opts.CORSOrigins,
	}
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}
	sink := opts.AuditSink
	if sink == nil {
		sink = &audit.DatabaseSink{Logs: repos.AuditLogs}
	}
	s.gate = auth.NewGate(repos.Users, s.Log)
	s.audit = audit.New(sink, s.Log, s.Metrics.AuditFailures)
	if opts.MaxBodyBytes > 0 {
		s.audit.MaxBody = opts.MaxBodyBytes
	}
	if opts.RateLimit > 0 {
		s.limiter = newRateLimiter(opts.RateLimit, opts.RateBurst, s.Metrics.RateLimited)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(s.instrument)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(Prefix).Subrouter()
	api.Use(s.audit.Middleware)

	api.HandleFunc("/category", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/category", s.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/category/{id:[0-9]+}", s.showCategory).Methods(http.MethodGet)
	api.HandleFunc("/category/{id:[0-9]+}", s.updateCategory).Methods(http.MethodPut)
	api.HandleFunc("/category/{id:[0-9]+}", s.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/user", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/user", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/user/{id:[0-9]+}", s.showUser).Methods(http.MethodGet)
	api.HandleFunc("/user/{id:[0-9]+}", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/user/{id:[0-9]+}", s.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/sneaky", s.sneakyUsers).Methods(http.MethodGet)

	api.HandleFunc("/post", s.listPosts).Methods(http.MethodGet)
	api.Handle("/post", s.gate.RequireFunc(s.createPost)).Methods(http.MethodPost)
	api.HandleFunc("/post/{id:[0-9]+}", s.showPost).Methods(http.MethodGet)
	api.Handle("/post/{id:[0-9]+}", s.gate.RequireFunc(s.updatePost)).Methods(http.MethodPut)
	api.Handle("/post/{id:[0-9]+}", s.gate.RequireFunc(s.deletePost)).Methods(http.MethodDelete)

	// the parent post is resolved before the api key is checked
	api.Handle("/post/{post:[0-9]+}/comment", s.withPost(http.HandlerFunc(s.listComments))).Methods(http.MethodGet)
	api.Handle("/post/{post:[0-9]+}/comment", s.withPost(s.gate.RequireFunc(s.createComment))).Methods(http.MethodPost)
	api.Handle("/post/{post:[0-9]+}/comment/{id:[0-9]+}", s.withPost(http.HandlerFunc(s.showComment))).Methods(http.MethodGet)
	api.Handle("/post/{post:[0-9]+}/comment/{id:[0-9]+}", s.withPost(s.gate.RequireFunc(s.updateComment))).Methods(http.MethodPut)
	api.Handle("/post/{post:[0-9]+}/comment/{id:[0-9]+}", s.withPost(s.gate.RequireFunc(s.deleteComment))).Methods(http.MethodDelete)

	var h http.Handler = r
	if len(s.origins) > 0 {
		h = cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", auth.Header},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		})(h)
	}
	return s.recoverPanics(s.logRequests(h))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.Log.WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

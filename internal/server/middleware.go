package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.Log.WithFields(logrus.Fields{
					"panic":  v,
					"method": r.Method,
					"path":   r.URL.Path,
				}).Error("handler panicked")
				writeMessage(w, http.StatusInternalServerError, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// logRequests tags every request with an id and logs it once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.Log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

// instrument records HTTP metrics under the matched route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.Metrics.InFlight(1)
		defer s.Metrics.InFlight(-1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		s.Metrics.RecordHTTPRequest(r.Method, path, rec.status, time.Since(start))
	})
}

const (
	limiterIdle     = 10 * time.Minute
	limiterMaxCount = 10000
)

type clientLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// rateLimiter throttles mutating requests per client socket address.
// X-Forwarded-For is not consulted.
type rateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	rejected  prometheus.Counter
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(perSecond float64, burst int, rejected prometheus.Counter) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters:  make(map[string]*clientLimiter),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		rejected:  rejected,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.limiters) >= limiterMaxCount || now.Sub(rl.lastSweep) >= limiterIdle {
		rl.sweep(now)
	}
	l, ok := rl.limiters[key]
	if !ok {
		l = &clientLimiter{Limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = now
	return l.Limiter
}

// sweep drops limiters idle for longer than limiterIdle. Callers hold mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for key, l := range rl.limiters {
		if now.Sub(l.lastSeen) >= limiterIdle {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if !rl.limiter(remoteHost(r)).Allow() {
				if rl.rejected != nil {
					rl.rejected.Inc()
				}
				w.Header().Set("Retry-After", "1")
				writeMessage(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Package audit records every API request together with the response it got.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"forumapi/internal/models"
)

// DefaultMaxBody caps the request body the middleware buffers.
const DefaultMaxBody int64 = 1 << 20

// Logger captures request/response pairs and hands them to a Sink. A sink
// failure is logged and never changes the response.
type Logger struct {
	Sink     Sink
	Log      logrus.FieldLogger
	Failures prometheus.Counter
	// MaxBody is the largest request body accepted; larger ones get 413.
	MaxBody int64
}

func New(sink Sink, log logrus.FieldLogger, failures prometheus.Counter) *Logger {
	return &Logger{Sink: sink, Log: log, Failures: failures, MaxBody: DefaultMaxBody}
}

func (l *Logger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}

		input, err := l.readBody(w, r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			input = nil
			rec.Header().Set("Content-Type", "application/json")
			rec.WriteHeader(http.StatusRequestEntityTooLarge)
			json.NewEncoder(rec).Encode(map[string]string{"message": "Request body too large"})
		} else {
			next.ServeHTTP(rec, r)
		}

		entry := models.AuditEntry{
			Timestamp:      time.Now().Unix(),
			Method:         r.Method,
			Path:           strings.TrimPrefix(r.URL.Path, "/"),
			FullURL:        fullURL(r),
			ClientIP:       clientIP(r),
			Input:          serializeInput(input),
			Headers:        headers(r.Header),
			ResponseStatus: rec.status,
			ResponseBody:   rec.body.String(),
		}
		if err := l.Sink.Write(context.WithoutCancel(r.Context()), entry); err != nil {
			l.Log.WithError(err).WithField("path", r.URL.Path).Warn("audit write failed")
			if l.Failures != nil {
				l.Failures.Inc()
			}
		}
	})
}

// readBody buffers the request body and puts a replayable copy back on r.
func (l *Logger) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body := r.Body
	if l.MaxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, l.MaxBody)
	}
	input, err := io.ReadAll(body)
	body.Close()
	r.Body = io.NopCloser(bytes.NewReader(input))
	return input, err
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
// It is recorded for auditing only.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// serializeInput compacts JSON bodies and keeps anything else verbatim.
func serializeInput(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}

// headers flattens the request headers, dropping the sec-* family.
func headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		name := strings.ToLower(k)
		if strings.HasPrefix(name, "sec") {
			continue
		}
		out[name] = strings.Join(v, ", ")
	}
	return out
}

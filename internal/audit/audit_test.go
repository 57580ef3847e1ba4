package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumapi/internal/models"
	"forumapi/internal/repository/memory"
)

func echo(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(body)
}

func TestMiddlewareCapturesRequestAndResponse(t *testing.T) {
	store := memory.New()
	log, _ := test.NewNullLogger()
	l := New(&DatabaseSink{Logs: store.AuditLogs}, log, nil)

	req := httptest.NewRequest(http.MethodPost, "http://forum.test/api/v1/category?x=1", strings.NewReader(`{ "label": "General" }`))
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("SEC-CH-UA", "x")
	w := httptest.NewRecorder()
	l.Middleware(http.HandlerFunc(echo)).ServeHTTP(w, req)

	// the handler still sees the full body
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{ "label": "General" }`, w.Body.String())

	entries, err := store.AuditLogs.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, http.MethodPost, e.Method)
	assert.Equal(t, "api/v1/category", e.Path)
	assert.Equal(t, "http://forum.test/api/v1/category?x=1", e.FullURL)
	assert.Equal(t, "10.1.2.3", e.ClientIP)
	assert.Equal(t, `{"label":"General"}`, e.Input)
	assert.Equal(t, http.StatusCreated, e.ResponseStatus)
	assert.Equal(t, `{ "label": "General" }`, e.ResponseBody)
	assert.Equal(t, "application/json", e.Headers["content-type"])
	for k := range e.Headers {
		assert.False(t, strings.HasPrefix(k, "sec"), k)
	}
}

func TestMiddlewareDefaultsStatusAndEmptyInput(t *testing.T) {
	store := memory.New()
	log, _ := test.NewNullLogger()
	l := New(&DatabaseSink{Logs: store.AuditLogs}, log, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})).ServeHTTP(httptest.NewRecorder(), req)

	entries, _ := store.AuditLogs.FetchAll(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusOK, entries[0].ResponseStatus)
	assert.Equal(t, "{}", entries[0].Input)
	assert.Equal(t, "203.0.113.7", entries[0].ClientIP)
}

func TestMiddlewareRejectsOversizedBody(t *testing.T) {
	store := memory.New()
	log, _ := test.NewNullLogger()
	l := New(&DatabaseSink{Logs: store.AuditLogs}, log, nil)
	l.MaxBody = 16

	called := false
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/category", strings.NewReader(`{"label":"`+strings.Repeat("x", 64)+`"}`)))

	assert.False(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"message":"Request body too large"}`, w.Body.String())

	entries, err := store.AuditLogs.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusRequestEntityTooLarge, entries[0].ResponseStatus)
	assert.Equal(t, "{}", entries[0].Input)

	// bodies at the limit pass through
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/category", strings.NewReader(`{"label":"abcd"}`)))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingSink struct{}

func (failingSink) Write(context.Context, models.AuditEntry) error { return errors.New("disk full") }
func (failingSink) Close() error                                    { return nil }

func TestSinkFailureDoesNotAffectResponse(t *testing.T) {
	log, hook := test.NewNullLogger()
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "audit_failures_test"})
	l := New(failingSink{}, log, failures)

	w := httptest.NewRecorder()
	l.Middleware(http.HandlerFunc(echo)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/post", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(failures))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "audit write failed", hook.LastEntry().Message)
}

func TestFileSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "api.jsonl")
	sink, err := OpenSink(SinkFile, path, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, models.AuditEntry{Method: "GET", Path: "api/v1/post", ResponseStatus: 200}))
	require.NoError(t, sink.Write(ctx, models.AuditEntry{Method: "DELETE", Path: "api/v1/post/1", ResponseStatus: 204}))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []models.AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e models.AuditEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "DELETE", got[1].Method)
	assert.Equal(t, 204, got[1].ResponseStatus)
}

func TestOpenSink(t *testing.T) {
	s, err := OpenSink(SinkNone, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Discard, s)

	s, err = OpenSink(SinkDatabase, "", memory.New().AuditLogs)
	require.NoError(t, err)
	assert.IsType(t, &DatabaseSink{}, s)

	_, err = OpenSink("syslog", "", nil)
	assert.Error(t, err)
}

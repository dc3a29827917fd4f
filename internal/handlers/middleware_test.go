package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sdko-org/areacheck/internal/models"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	entries chan *models.AccessLog
	err     error
}

func (s *chanSink) Create(ctx context.Context, entry *models.AccessLog) error {
	s.entries <- entry
	return s.err
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	w.Write([]byte("short and stout"))
}

func TestLoggingMiddlewareRecordsAccessLog(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	sink := &chanSink{entries: make(chan *models.AccessLog, 1)}
	h := LoggingMiddleware(logger, sink)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/calculate", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "probe/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case entry := <-sink.entries:
		assert.Equal(t, http.MethodPost, entry.Method)
		assert.Equal(t, "/calculate", entry.Path)
		assert.Equal(t, http.StatusTeapot, entry.Status)
		assert.Equal(t, "203.0.113.9", entry.ClientIP)
		assert.Equal(t, "probe/1.0", entry.UserAgent)
		assert.Equal(t, len("short and stout"), entry.BytesSent)
	case <-time.After(2 * time.Second):
		t.Fatal("access log was not stored")
	}

	require.NotEmpty(t, hook.AllEntries())
	first := hook.AllEntries()[0]
	assert.Equal(t, "Request processed", first.Message)
	assert.Equal(t, http.StatusTeapot, first.Data["status"])
}

func TestLoggingMiddlewareWithoutSink(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := LoggingMiddleware(logger, nil)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestLoggingMiddlewareSinkFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	sink := &chanSink{entries: make(chan *models.AccessLog, 1), err: errors.New("db down")}
	h := LoggingMiddleware(logger, sink)(http.HandlerFunc(okHandler))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	<-sink.entries

	assert.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "Failed to save access log" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Middleware(http.HandlerFunc(okHandler))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/calculate", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusTeapot, do("198.51.100.1"))
	assert.Equal(t, http.StatusTeapot, do("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1"))
	assert.Equal(t, http.StatusTeapot, do("198.51.100.2"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	h := rl.Middleware(http.HandlerFunc(okHandler))

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(2 * time.Minute)
	rl.allow("b")
	now = now.Add(2 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.2")
	assert.Equal(t, "192.0.2.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.3, 192.0.2.4")
	assert.Equal(t, "192.0.2.3", getClientIP(req))
}

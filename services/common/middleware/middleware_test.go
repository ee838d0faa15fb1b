package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), NoStore())
	r.GET("/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/categories")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(rate.Limit(0.001), 2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1000", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"ok":false`)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1, time.Minute)
	rl.GetLimiter("10.0.0.1")

	assert.Equal(t, 0, rl.Sweep(time.Now()))
	assert.Equal(t, 1, rl.Sweep(time.Now().Add(2*time.Minute)))
}

type recordedMetric struct {
	name string
	dims map[string]string
}

type fakeRecorder struct {
	mu   sync.Mutex
	got  []recordedMetric
	done chan struct{}
	want int
}

func (f *fakeRecorder) add(name string, dims map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, recordedMetric{name, dims})
	if len(f.got) == f.want {
		close(f.done)
	}
}

func (f *fakeRecorder) RecordCount(_ context.Context, name string, dims map[string]string) error {
	f.add(name, dims)
	return nil
}

func (f *fakeRecorder) RecordLatency(_ context.Context, name string, _ time.Duration, dims map[string]string) error {
	f.add(name, dims)
	return nil
}

func (f *fakeRecorder) IsEnabled() bool { return true }

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{done: make(chan struct{}), want: 3}
	r := gin.New()
	r.Use(MetricsMiddleware(rec))
	r.GET("/categories", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, http.MethodGet, "/categories")

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("metrics were not recorded")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	names := []string{rec.got[0].name, rec.got[1].name, rec.got[2].name}
	assert.ElementsMatch(t, []string{awspkg.MetricHTTPRequests, awspkg.MetricHTTPLatency, awspkg.MetricHTTPErrors}, names)
	assert.Equal(t, map[string]string{"Method": "GET", "Route": "/categories", "Status": "4xx"}, rec.got[0].dims)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "unknown", statusClass(0))
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/ok")
	serve(r, http.MethodGet, "/bad")
	serve(r, http.MethodGet, "/boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"vertexchat-go/internal/monitoring"
)

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(1, 2))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(monitoring.RateLimitRejections)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, before+1, testutil.ToFloat64(monitoring.RateLimitRejections))
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(0, 0))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestLimiterCacheSweepsIdleKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := newTTLLimiterCache(time.Minute)
	cache.now = func() time.Time { return now }
	mk := func() *rate.Limiter { return rate.NewLimiter(1, 1) }

	cache.get("a", mk)
	cache.get("b", mk)
	assert.Equal(t, 2, cache.len())

	now = now.Add(3 * time.Minute)
	cache.get("c", mk)
	assert.Equal(t, 1, cache.len())
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "panic_recovered")
}

func TestMetricsCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics())
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := monitoring.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "2xx")
	before := testutil.ToFloat64(counter)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "error", statusClass(0))
}

func TestSafeGoRecovers(t *testing.T) {
	done := make(chan struct{})
	SafeGo("test", func() {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sortegrande/linkauth/internal/cache"
	"github.com/sortegrande/linkauth/internal/database/testutil"
)

func rateLimitedRouter(store RateStore, max int, window time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(store, max, window))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestRateLimitMemoryStore(t *testing.T) {
	router := rateLimitedRouter(NewMemoryRateStore(), 2, time.Minute)

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Contains(t, recorder.Body.String(), "RATE_LIMITED")
}

func TestRateLimitHeaders(t *testing.T) {
	router := rateLimitedRouter(NewMemoryRateStore(), 5, time.Minute)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, "5", recorder.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "4", recorder.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, recorder.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	router := rateLimitedRouter(NewMemoryRateStore(), 0, time.Minute)

	for i := 0; i < 10; i++ {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, recorder.Code)
	}
}

func TestRateLimitDatabaseBackedStore(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewCacheRateStore(cache.NewDatabaseStore(db))

	router := rateLimitedRouter(store, 1, time.Minute)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestMemoryRateStoreWindowReset(t *testing.T) {
	store := &memoryRateStore{
		data:  make(map[string]*memoryCounter),
		tick:  time.NewTicker(time.Hour),
		clock: time.Now,
	}

	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return current }

	count, _, err := store.Increment(nil, "key", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, _, err = store.Increment(nil, "key", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	current = current.Add(2 * time.Minute)

	count, _, err = store.Increment(nil, "key", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

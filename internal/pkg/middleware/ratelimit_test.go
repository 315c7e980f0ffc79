package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shoplist/internal/pkg/cache"
	"shoplist/internal/pkg/middleware"
)

// fakeCache is an in-memory cache.Client for exercising the limiter.
type fakeCache struct {
	counts map[string]int
	down   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: map[string]int{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return "", cache.ErrCacheMiss
}

func (f *fakeCache) GetInt(ctx context.Context, key string) (int, error) {
	if f.down {
		return 0, errors.New("connection refused")
	}
	count, ok := f.counts[key]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return count, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	f.counts[key] = value.(int)
	return nil
}

func (f *fakeCache) Incr(ctx context.Context, key string) error {
	f.counts[key]++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.counts, key)
	return nil
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	client := newFakeCache()
	var served int
	limited := middleware.RateLimiter(client, 3, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
	}))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/login/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 3, served)
}

func TestRateLimiter_IsolatesClients(t *testing.T) {
	client := newFakeCache()
	limited := middleware.RateLimiter(client, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRequest(http.MethodPost, "/login/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	limited.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/login/", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, second)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_FailsOpenWhenCacheDown(t *testing.T) {
	client := newFakeCache()
	client.down = true
	var served bool
	limited := middleware.RateLimiter(client, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}))

	r := httptest.NewRequest(http.MethodPost, "/login/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, served)
}

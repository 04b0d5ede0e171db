package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/utils"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func do(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": c.Get(CtxRole)})
	}, JWTAuth("secret"))

	rec := do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", 7, "Door", 5)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/me", other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken("secret", 7, "Door", 5)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/me", tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"Door"}`, rec.Body.String())
}

func TestTokenBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            5 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, newRedis(t), logging.Discard()))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ping", "").Code)
	rec := do(e, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, logging.Discard()))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ping", "").Code)
	}
}

func TestRedisCache(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 10,
	}
	name := "Launch Night"
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cfg, newRedis(t), logging.Discard()))
	e.GET("/events/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "title": name})
	})
	e.PUT("/events/:id", func(c echo.Context) error {
		name = "Closing Night"
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/big", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, string(bytes.Repeat([]byte("x"), 2048)))
	})

	rec := do(e, http.MethodGet, "/events/1", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = do(e, http.MethodGet, "/events/1", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"1","title":"Launch Night"}`, rec.Body.String())
	assert.Equal(t, 1, calls)

	// same route pattern, different id
	rec = do(e, http.MethodGet, "/events/2", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodPut, "/events/1", "").Code)
	rec = do(e, http.MethodGet, "/events/1", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"1","title":"Closing Night"}`, rec.Body.String())

	calls = 0
	do(e, http.MethodGet, "/big", "")
	rec = do(e, http.MethodGet, "/big", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "oversized bodies are not stored")
	assert.Len(t, rec.Body.String(), 2048)
	assert.Equal(t, 2, calls)
}

func TestCacheInvalidator(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 10,
	}
	rdb := newRedis(t)
	count := 0
	e := echo.New()
	e.GET("/users", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"count": count})
	}, NewRedisCache(cfg, rdb, logging.Discard()))
	e.POST("/register", func(c echo.Context) error {
		if c.QueryParam("fail") != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nope"})
		}
		count++
		return c.NoContent(http.StatusCreated)
	}, NewCacheInvalidator(cfg, rdb, logging.Discard()))

	do(e, http.MethodGet, "/users", "")
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/users", "").Header().Get("X-Cache"))

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/register?fail=1", "").Code)
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/users", "").Header().Get("X-Cache"))

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/register", "").Code)
	rec := do(e, http.MethodGet, "/users", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(&buf, "info", "json")

	e := echo.New()
	e.Use(echomw.RequestID(), RequestLogger(log))
	e.GET("/ping", func(c echo.Context) error {
		Logger(c, nil).Info("inside")
		return c.String(http.StatusOK, "pong")
	})

	rec := do(e, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, id)

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"request_id":"`+id+`"`)))
	assert.Contains(t, out, `"uri":"/ping"`)
	assert.Contains(t, out, `"status":200`)
}

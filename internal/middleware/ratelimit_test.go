package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, 10, 5)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = "1.2.3.4:1234"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimiter_BlocksExceedingLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, 1, 2) // burst=2

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := range 3 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.RemoteAddr = "1.2.3.4:1234"
		r.ServeHTTP(w, req)

		if i < 2 && w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if i == 2 && w.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// High rate so even tiny elapsed time refills tokens
	rl := middleware.NewRateLimiter(ctx, 1000000, 2)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Exhaust burst
	for range 2 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.RemoteAddr = "5.5.5.5:1000"
		r.ServeHTTP(w, req)
	}

	// With 1M/sec rate, next request should refill immediately
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = "5.5.5.5:1000"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected tokens to refill, got %d", w.Code)
	}
}

func TestRateLimiter_ExemptRoutes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, 1, 1).Exempt("/health")

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/paths", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		req.RemoteAddr = "9.9.9.9:1000"
		r.ServeHTTP(w, req)

		return w.Code
	}

	for range 3 {
		if code := hit("/health"); code != http.StatusOK {
			t.Fatalf("exempt route limited: %d", code)
		}
	}

	if code := hit("/paths"); code != http.StatusOK {
		t.Fatalf("first limited request should pass, got %d", code)
	}

	if code := hit("/paths"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
}

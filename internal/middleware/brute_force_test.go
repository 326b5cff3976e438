package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/middleware"
)

func newTestGuard() (*middleware.BruteForceGuard, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	return middleware.NewBruteForceGuard(ctx, quietLogger()), cancel
}

func TestBruteForce_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		reset    bool
		want     bool
	}{
		{name: "below threshold", failures: 4, want: false},
		{name: "at threshold", failures: 5, want: true},
		{name: "reset after success", failures: 2, reset: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, cancel := newTestGuard()
			defer cancel()

			for range tt.failures {
				guard.RecordFailure("10.0.0.1")
			}

			if tt.reset {
				guard.Reset("10.0.0.1")
			}

			if got := guard.IsBlocked("10.0.0.1"); got != tt.want {
				t.Errorf("IsBlocked = %v, want %v", got, tt.want)
			}

			if guard.IsBlocked("10.0.0.2") {
				t.Error("unrelated client should not be blocked")
			}
		})
	}
}

func TestBruteForce_MiddlewareByClientAddress(t *testing.T) {
	guard, cancel := newTestGuard()
	defer cancel()

	for range 5 {
		guard.RecordFailure("1.2.3.4")
	}

	r := gin.New()
	r.Use(middleware.BruteForceMiddleware(guard))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		remote string
		want   int
	}{
		{"1.2.3.4:5000", http.StatusTooManyRequests},
		{"5.6.7.8:5000", http.StatusOK},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.RemoteAddr = tt.remote
		r.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.remote, w.Code, tt.want)
		}
	}
}

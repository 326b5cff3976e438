package middleware

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

func (r *failureRecord) expired(now time.Time) bool {
	if !r.lockedAt.IsZero() {
		return now.Sub(r.lockedAt) >= bruteForceLockout
	}

	return now.Sub(r.firstFail) >= bruteForceWindow
}

// BruteForceGuard tracks authentication failures per client address and
// locks out clients that exceed the threshold within the tracking window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
}

// NewBruteForceGuard creates a guard whose cleanup goroutine stops with ctx.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
	}
	go g.cleanupLoop(ctx)
	return g
}

// IsBlocked reports whether client is currently locked out.
func (g *BruteForceGuard) IsBlocked(client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && time.Since(rec.lockedAt) < bruteForceLockout
}

// RecordFailure records a failed authentication attempt by client.
func (g *BruteForceGuard) RecordFailure(client string) {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		g.records[client] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("client_ip", client).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears failure tracking for client after a successful authentication.
func (g *BruteForceGuard) Reset(client string) {
	g.mu.Lock()
	delete(g.records, client)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.sweep(now)
		}
	}
}

// sweep drops expired records and trims the table to bruteForceMaxRecords,
// oldest first.
func (g *BruteForceGuard) sweep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		if rec.expired(now) {
			delete(g.records, k)
		}
	}

	excess := len(g.records) - bruteForceMaxRecords
	if excess <= 0 {
		return
	}

	clients := make([]string, 0, len(g.records))
	for k := range g.records {
		clients = append(clients, k)
	}

	slices.SortFunc(clients, func(a, b string) int {
		return g.records[a].firstFail.Compare(g.records[b].firstFail)
	})

	for _, k := range clients[:excess] {
		delete(g.records, k)
	}
}

// BruteForceMiddleware rejects requests from locked-out clients.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.IsBlocked(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}

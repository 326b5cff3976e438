package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	gql "github.com/persistorai/pathfinder/internal/graphql"
	"github.com/persistorai/pathfinder/internal/middleware"
	"github.com/persistorai/pathfinder/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Store       Pinger
	Hub         *ws.Hub
	Paths       domain.PathService
	Lookup      domain.LookupService
	Documents   domain.DocumentService
	ReadyChecks []ReadinessCheck
	CORSOrigins []string
	Timeout     time.Duration
	APIKey      string
	Backend     string
	Version     string
	HSTS        bool

	EnablePlayground bool
}

// Router-level limits.
const (
	maxBodySize = 32 << 20 // bulk loads carry up to MaxBulkDocuments records
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders(deps.HSTS))
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).
		Exempt("/api/v1/health", "/api/v1/ready", "/metrics").Handler())
	r.Use(middleware.HTTPMetrics("/metrics"))

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Store, deps.Hub, log, deps.Version, deps.Backend, deps.ReadyChecks...)
	paths := NewPathHandler(deps.Paths, log)
	lookup := NewLookupHandler(deps.Lookup, log)
	docs := NewDocumentHandler(deps.Documents, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	guard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(guard))
	api.Use(middleware.APIKeyAuth(deps.APIKey, log, guard))

	bounded := api.Group("", middleware.QueryTimeout(deps.Timeout))

	// Searches.
	bounded.POST("/paths", paths.Find)
	bounded.GET("/paths/:collection/:from/:to", paths.Get)
	bounded.POST("/lookup", lookup.Run)

	// Documents.
	bounded.POST("/collections/:collection/documents", docs.Upsert)
	bounded.GET("/collections/:collection/documents/:id", docs.Get)

	registerGraphQL(bounded, deps)

	if deps.Hub != nil {
		api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
	}
}

// registerGraphQL sets up the GraphQL endpoint and optional playground.
func registerGraphQL(api *gin.RouterGroup, deps *RouterDeps) {
	gqlSrv := gql.NewHandler(&gql.Resolver{
		Paths:     deps.Paths,
		Lookup:    deps.Lookup,
		Documents: deps.Documents,
		Log:       deps.Log,
	})
	api.POST("/graphql", gin.WrapH(gqlSrv))
	api.GET("/graphql", gin.WrapH(gqlSrv))

	if deps.EnablePlayground {
		api.GET("/graphql/playground", gin.WrapH(gql.Playground("/api/v1/graphql")))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/middleware"
	"github.com/collegedir/collegedir/internal/models"
	"github.com/collegedir/collegedir/internal/security"
	"github.com/collegedir/collegedir/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	DB          HealthChecker
	Hub         *ws.Hub
	Colleges    CollegeService
	Ingest      IngestService
	Stats       StatsService
	AdminLookup middleware.AdminLookup
	CORSOrigins []string
	Version     string
	// SchemaVersion is the migration version readiness waits for.
	SchemaVersion  int64
	MaxUploadBytes int64
}

// Router-level limits.
const (
	maxPublicBodySize = 1 << 20 // 1 MB
	rateLimit         = 100     // requests per second per IP
	rateBurst         = 200     // token bucket burst size

	// multipartOverhead allows for form boundaries around an upload of
	// the maximum size.
	multipartOverhead = 64 << 10
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerPublicRoutes sets up the unauthenticated directory API.
func registerPublicRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	colleges := NewCollegeHandler(deps.Colleges, deps.Log)

	api.Use(middleware.MaxBodySize(maxPublicBodySize))

	api.GET("/colleges", colleges.List)
	api.GET("/colleges/:id", colleges.Get)
	api.GET("/colleges/district/:district", colleges.ByDistrict)
	api.GET("/colleges/category/:category", colleges.ByCategory)

	api.GET("/districts", colleges.Facet(models.FacetDistrict))
	api.GET("/categories", colleges.Facet(models.FacetCategory))
	api.GET("/college-types", colleges.Facet(models.FacetCollegeType))

	api.GET("/cutoffs/:college_id", colleges.Cutoffs)
	api.GET("/admission-requirements/:category", colleges.Admission)
}

// registerAdminRoutes sets up the admin API behind bearer key authentication.
func registerAdminRoutes(ctx context.Context, admin *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log
	h := NewAdminHandler(deps.Ingest, deps.Stats, log, deps.MaxUploadBytes)

	lookup := middleware.NewCachedAdminLookup(ctx, deps.AdminLookup)
	guard := security.NewBruteForceGuard(ctx, log, security.DefaultOptions())

	admin.Use(middleware.MaxBodySize(deps.MaxUploadBytes + multipartOverhead))
	admin.Use(middleware.AdminAuth(lookup, log, guard))

	admin.POST("/upload/csv", h.UploadCSV)
	admin.POST("/upload/json", h.UploadJSON)
	admin.GET("/stats", h.Stats)
	admin.GET("/template", h.Template)
	admin.GET("/runs", h.Runs)
	admin.GET("/test", h.Test)

	if deps.Hub != nil {
		admin.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, lookup))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)

	health := NewHealthHandler(deps.DB, deps.Hub, deps.Log, deps.Version, deps.SchemaVersion)
	r.GET("/health", health.Liveness)
	r.GET("/ready", health.Readiness)

	registerPublicRoutes(r.Group("/api"), deps)
	registerAdminRoutes(ctx, r.Group("/api/admin"), deps)

	return r
}

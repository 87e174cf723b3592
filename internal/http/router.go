package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lifesync-engine/internal/config"
	"lifesync-engine/internal/metrics"
	"lifesync-engine/internal/ratelimit"
	"lifesync-engine/internal/service"
)

// RouterDeps agrupa todo lo que el router necesita tener armado.
type RouterDeps struct {
	Logger      *zap.Logger
	Config      *config.Config
	Pool        *pgxpool.Pool
	Metrics     *metrics.Collector
	Limiter     ratelimit.Limiter
	JWT         *service.JWTService
	Auth        *AuthHandler
	Assessments *AssessmentHandler
	CacheStats  func() map[string]any
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(d.Logger, d.Metrics),
		gin.Recovery(),
		corsMiddleware(d.Config.AllowedOrigins()),
		jsonContentTypeMiddleware(),
		timeoutMiddleware(d.Config.RequestTimeout),
	)

	r.GET("/health", healthHandler(d.Pool))
	r.GET("/metrics", metricsHandler(d.Metrics, d.CacheStats))

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup",
		ratelimit.Middleware(d.Limiter, d.Logger, "signup", ratelimit.Window{Limit: 5, Per: time.Hour}),
		d.Auth.SignUp)
	auth.POST("/login",
		ratelimit.Middleware(d.Limiter, d.Logger, "login",
			ratelimit.Window{Limit: 3, Per: time.Minute},
			ratelimit.Window{Limit: 10, Per: time.Hour}),
		d.Auth.SignIn)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.SignOut)
	auth.POST("/reset-password",
		ratelimit.Middleware(d.Limiter, d.Logger, "reset", ratelimit.Window{Limit: 3, Per: time.Hour}),
		d.Auth.RequestReset)
	auth.POST("/update-password", d.Auth.ConfirmReset)

	v1.GET("/questions", d.Assessments.Questions)

	protected := v1.Group("/", JWTAuthMiddleware(d.JWT))
	protected.POST("/assessments", d.Assessments.Submit)
	protected.POST("/assessments/sync", d.Assessments.Sync)
	protected.GET("/assessments/:id", d.Assessments.Get)
	protected.GET("/assessments/:id/history", d.Assessments.History)
	protected.POST("/assessments/:id/generate_explanation",
		ratelimit.Middleware(d.Limiter, d.Logger, "explanation",
			ratelimit.Window{Limit: 2, Per: time.Hour},
			ratelimit.Window{Limit: 10, Per: 24 * time.Hour}),
		d.Assessments.GenerateExplanation)
	protected.GET("/assessments/:id/explanation", d.Assessments.GetExplanation)
	protected.GET("/profiles/:user_id", d.Assessments.Profile)

	return r
}

// healthHandler reporta estado del proceso y de la base.
func healthHandler(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := http.StatusOK
		if pool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				dbStatus = "unreachable"
				status = http.StatusServiceUnavailable
			}
		} else {
			dbStatus = "not configured"
		}
		c.JSON(status, gin.H{"status": "ok", "database": dbStatus})
	}
}

// metricsHandler publica los contadores del proceso y de los caches.
func metricsHandler(collector *metrics.Collector, cacheStats func() map[string]any) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"process": collector.Snapshot()}
		if cacheStats != nil {
			resp["caches"] = cacheStats()
		}
		c.JSON(http.StatusOK, resp)
	}
}

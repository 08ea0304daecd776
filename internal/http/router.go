// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/truescan/go-verify-backend/docs"
	"github.com/truescan/go-verify-backend/internal/config"
	"github.com/truescan/go-verify-backend/internal/domain"
	"github.com/truescan/go-verify-backend/internal/http/handlers"
	"github.com/truescan/go-verify-backend/internal/http/middleware"
	"github.com/truescan/go-verify-backend/internal/repo"
	"github.com/truescan/go-verify-backend/internal/services"
)

// storeShim adapts the repository free functions to the store interfaces
// expected by the services. This keeps services decoupled from the concrete
// repo package while reusing existing functions.
type storeShim struct{}

// GetCodeByValue proxies repo.GetCodeByValue.
func (storeShim) GetCodeByValue(ctx context.Context, db *gorm.DB, codeValue string) (*domain.VerificationCode, error) {
	return repo.GetCodeByValue(ctx, db, codeValue)
}

// GetCodeByID proxies repo.GetCodeByID.
func (storeShim) GetCodeByID(ctx context.Context, db *gorm.DB, id string) (*domain.VerificationCode, error) {
	return repo.GetCodeByID(ctx, db, id)
}

// MarkCodeUsed proxies repo.MarkCodeUsed.
func (storeShim) MarkCodeUsed(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	return repo.MarkCodeUsed(ctx, db, id, now)
}

// IncrementUsedCount proxies repo.IncrementUsedCount.
func (storeShim) IncrementUsedCount(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.IncrementUsedCount(ctx, db, id)
}

// CreateVerificationLog proxies repo.CreateVerificationLog.
func (storeShim) CreateVerificationLog(ctx context.Context, db *gorm.DB, entry *domain.VerificationLog) error {
	return repo.CreateVerificationLog(ctx, db, entry)
}

// CreateIncident proxies repo.CreateIncident.
func (storeShim) CreateIncident(ctx context.Context, db *gorm.DB, codeValue string, state domain.VerificationState, riskScore float64, decision domain.TrustDecision) (*domain.Incident, error) {
	return repo.CreateIncident(ctx, db, codeValue, state, riskScore, decision)
}

// CountLogs proxies repo.CountLogs (history pagination).
func (storeShim) CountLogs(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountLogs(ctx, db, userID)
}

// ListLogsPage proxies repo.ListLogsPage (history pagination).
func (storeShim) ListLogsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.VerificationLog, error) {
	return repo.ListLogsPage(ctx, db, userID, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, rate
// limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, risk services.RiskAssessor, guide services.GuideGenerator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (coordinates carry location PII)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders:     []string{"X-API-Key"},
		MaskQueryParams: []string{"lat", "lng"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB; verification payloads are tiny)
	r.Use(limitBody(64 << 10))

	// 6) Compress responses (guides and tip lists are repetitive text)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/assessors
	verifySvc := services.NewVerificationService(db, storeShim{}, risk, guide)
	verifySvc.RiskTimeout = cfg.RiskTimeout
	verifySvc.GuideTimeout = cfg.GuideTimeout
	historySvc := services.NewHistoryService(db, storeShim{})

	h := handlers.New(verifySvc, historySvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		api.POST("/verify", h.Verify)
		api.POST("/verify/qr", h.VerifyQR)
		api.GET("/verify/history", h.History)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

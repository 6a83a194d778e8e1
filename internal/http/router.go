// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/config"
	"github.com/docastore/store-backend/internal/http/handlers"
	"github.com/docastore/store-backend/internal/http/middleware"
	"github.com/docastore/store-backend/internal/notify"
	"github.com/docastore/store-backend/internal/services"
)

// PaymentGateway is the slice of the payment gateway client the API needs:
// creating PIX charges for the recharge flow and fetching authoritative
// payment details for the webhook reconciler.
type PaymentGateway interface {
	services.PaymentCreator
	services.PaymentFetcher
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the storefront API, the payment webhook, and the token-guarded admin
// surface under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs (metadata only, bodies never logged)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP; the webhook group is exempt)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gw PaymentGateway, notifier notify.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// NoStore because purchase responses carry credential bundles.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Compress JSON responses (catalog and history payloads benefit most).
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/gateway
	accounts := &services.AccountService{DB: db}
	stock := &services.StockService{DB: db}
	orders := &services.OrderService{DB: db}
	bonus := &services.BonusService{DB: db}
	recharges := &services.RechargeService{DB: db, Gateway: gw}
	reconciler := &services.ReconcileService{DB: db, Gateway: gw, Notifier: notifier}

	h := handlers.New(accounts, orders, stock, bonus, recharges, reconciler)

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Users. Lookups live under /accounts to keep /users/:id free for
		// the history routes (static and param segments cannot share a
		// position in Gin's routing tree).
		api.POST("/users", h.RegisterUser)
		api.GET("/accounts/code/:doc_code", h.GetUserByCode)
		api.GET("/accounts/external/:external_id", h.GetUserByExternal)

		// Catalog and purchases
		api.GET("/catalog", h.Catalog)
		api.POST("/orders", h.Purchase)
		api.GET("/users/:id/orders", h.ListOrders)
		api.GET("/users/:id/orders/:order_id", h.GetOrder)

		// Recharges
		api.POST("/recharges", h.CreateRecharge)
		api.POST("/recharges/:id/message", h.AttachRechargeMessage)

		// Payment webhook. Exempt from rate limiting: the gateway retries
		// on 429 and a throttled retry storm delays credits.
		webhook := api.Group("/payments", middleware.ExemptRateLimit())
		webhook.POST("/webhook", h.PaymentWebhook)

		// Admin surface behind the shared token guard.
		admin := api.Group("/admin", middleware.AdminAuth(cfg.AdminToken))
		{
			admin.POST("/stock", h.ProvisionStock)
			admin.GET("/stock", h.ListStock)
			admin.GET("/stock/summary", h.StockSummary)
			admin.DELETE("/stock/:id", h.DeleteStock)
			admin.GET("/bonus", h.GetBonus)
			admin.PUT("/bonus", h.SetBonus)
			admin.POST("/credits", h.Credit)
			admin.GET("/dashboard", h.Dashboard)
		}
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

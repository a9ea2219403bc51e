package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharath018/church-notification-backend/config"
	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"github.com/sharath018/church-notification-backend/internal/event"
	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/scheduler"
	"github.com/sharath018/church-notification-backend/internal/settings"
	"github.com/sharath018/church-notification-backend/internal/tenant"
	"github.com/sharath018/church-notification-backend/internal/trigger"
	"github.com/sharath018/church-notification-backend/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP adapters main wires up.
type Handlers struct {
	Settings     *settings.Handler
	Notification *notification.Handler
	Event        *event.Handler
	Tenant       *tenant.Handler
	Audit        *auditlog.Handler
	Jobs         *scheduler.Handler
	Changes      *trigger.WebhookHandler
}

func Setup(r *gin.Engine, cfg *config.Config, h Handlers, logger *zap.Logger) {
	r.Use(middleware.ClientIP())
	r.Use(middleware.RequestLogger(logger.Named("http")))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(int64(cfg.RateLimitPerMinute)))

	// ===========================
	// ⛪ Tenants
	tenantRoutes := api.Group("/tenants")
	{
		tenantRoutes.GET("", h.Tenant.List)
		tenantRoutes.POST("", h.Tenant.Register)

		tenantRoutes.GET("/:tenantId/settings/notifications", h.Settings.Get)
		tenantRoutes.PUT("/:tenantId/settings/notifications", h.Settings.Update)
		tenantRoutes.DELETE("/:tenantId/settings/notifications", h.Settings.Delete)

		// ===========================
		// 🔔 Notifications
		tenantRoutes.POST("/:tenantId/notifications", h.Notification.Enqueue)
		tenantRoutes.POST("/:tenantId/notifications/flush", h.Notification.Flush)
		tenantRoutes.GET("/:tenantId/notifications/history", h.Notification.ListHistory)
	}

	// ===========================
	// 📨 Content changes (webhook source)
	api.POST("/events/changes", h.Changes.Receive)

	// ===========================
	// 🛠️ Admin
	adminRoutes := api.Group("/admin")
	{
		adminRoutes.POST("/reconcile", h.Event.Reconcile)
		adminRoutes.POST("/jobs/:name/run", h.Jobs.Run)
		adminRoutes.GET("/audit-logs", h.Audit.GetAuditLogs)
	}
}

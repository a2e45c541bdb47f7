// Package api assembles the HTTP surface: routes, CORS, metrics and auth.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BowmanStephen/dadpack-backend/internal/api/handlers"
	"github.com/BowmanStephen/dadpack-backend/internal/config"
	"github.com/BowmanStephen/dadpack-backend/internal/metrics"
	"github.com/BowmanStephen/dadpack-backend/internal/middleware"
)

// Handlers bundles the constructed handler set for the router.
type Handlers struct {
	Packs      *handlers.PackHandler
	Collection *handlers.CollectionHandler
	Admin      *handlers.AdminHandler
}

// NewRouter wires middleware and routes.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/packs/open",
			middleware.RateLimit(cfg.OpenRateRPS, cfg.OpenRateBurst),
			h.Packs.OpenPacks)
		api.GET("/pity", h.Packs.GetPity)

		api.GET("/collection", h.Collection.GetCollection)
		api.GET("/collection/stats", h.Collection.GetStats)
		api.GET("/collection/export", h.Collection.Export)
		api.POST("/collection/import", h.Collection.Import)
		api.GET("/collection/archive", h.Collection.GetArchive)

		api.GET("/storage/status", h.Admin.StorageStatus)

		admin := api.Group("/admin", middleware.RequireAdminKey(cfg.AdminKey))
		{
			admin.POST("/remediate", h.Admin.Remediate)
			admin.GET("/bonuses", h.Admin.GetBonuses)
			admin.PUT("/bonuses", h.Admin.SetBonuses)
		}
	}

	return r
}

package router

import (
	"github.com/autocare/platform/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// AgentHandlers are the handlers of the in-store agent
type AgentHandlers struct {
	System   *handler.SystemHandler
	Settings *handler.SettingsHandler
	Sale     *handler.LocalSaleHandler
	Sync     *handler.LocalSyncHandler
	Cache    *handler.LocalCacheHandler
	Proxy    *handler.ProxyHandler
}

// RegisterAgentRoutes mounts the local API under /local and proxies /api/*
// to the platform. The agent listens on loopback only and has no login.
func RegisterAgentRoutes(engine *gin.Engine, h AgentHandlers) {
	local := engine.Group("/local")
	local.GET("/health", h.System.Health)
	local.GET("/info", h.System.GetSystemInfo)

	settingsRoutes := NewDomainGroup("settings", "/settings")
	settingsRoutes.GET("", h.Settings.GetAll)
	settingsRoutes.PUT("", h.Settings.UpdateAll)
	settingsRoutes.GET("/:key", h.Settings.Get)
	settingsRoutes.PUT("/:key", h.Settings.Set)
	settingsRoutes.DELETE("/:key", h.Settings.Delete)

	saleRoutes := NewDomainGroup("sales", "/sales")
	saleRoutes.GET("", h.Sale.List)
	saleRoutes.POST("", h.Sale.Create)
	saleRoutes.POST("/:id/refund", h.Sale.Refund)

	revenueRoutes := NewDomainGroup("revenue", "/revenue")
	revenueRoutes.GET("", h.Sync.GetRevenue)
	revenueRoutes.POST("/compute", h.Sync.Compute)

	syncRoutes := NewDomainGroup("sync", "/sync")
	syncRoutes.POST("", h.Sync.Sync)
	syncRoutes.GET("/status", h.Sync.Status)
	syncRoutes.POST("/retry", h.Sync.Retry)

	cacheRoutes := NewDomainGroup("cache", "/cache")
	cacheRoutes.GET("/stats", h.Cache.Stats)
	cacheRoutes.POST("/cleanup", h.Cache.Cleanup)
	cacheRoutes.DELETE("", h.Cache.Clear)
	cacheRoutes.GET("/:kind", h.Cache.Get)
	cacheRoutes.DELETE("/:kind", h.Cache.Clear)

	for _, g := range []*DomainGroup{settingsRoutes, saleRoutes, revenueRoutes, syncRoutes, cacheRoutes} {
		g.RegisterRoutes(local)
	}

	if h.Proxy != nil {
		engine.Any("/api/*path", h.Proxy.Forward)
	}
}

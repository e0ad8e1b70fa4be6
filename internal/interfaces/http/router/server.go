package router

import (
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/interfaces/http/handler"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ServerHandlers are the platform handlers mounted by RegisterServerRoutes
type ServerHandlers struct {
	System          *handler.SystemHandler
	Auth            *handler.AuthHandler
	User            *handler.UserHandler
	Partner         *handler.PartnerHandler
	Product         *handler.ProductHandler
	Category        *handler.CategoryHandler
	ServiceOffering *handler.ServiceOfferingHandler
	Customer        *handler.CustomerHandler
	Sale            *handler.SaleHandler
	PurchaseOrder   *handler.PurchaseOrderHandler
	Inventory       *handler.InventoryHandler
	Settings        *handler.SettingsHandler
	Revenue         *handler.RevenueHandler
	Broadcast       *handler.BroadcastHandler
}

// ServerAuth carries the authentication middleware of the platform API
type ServerAuth struct {
	// JWT authenticates every /api/v1 route except login and refresh, and /ws
	JWT gin.HandlerFunc
	// LoginLimit throttles login and refresh attempts (optional)
	LoginLimit gin.HandlerFunc
	// AfterAuth runs on every API route once the caller is known
	AfterAuth []gin.HandlerFunc
}

// PublicAuthPaths are the API paths reachable without a token
var PublicAuthPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/system/info",
}

// RegisterServerRoutes mounts the platform API on r and its engine
func RegisterServerRoutes(r *Router, h ServerHandlers, a ServerAuth) {
	engine := r.Engine()
	engine.GET("/health", h.System.Health)
	engine.GET("/ws", a.JWT, h.Broadcast.Connect)

	r.Use(a.JWT).Use(a.AfterAuth...)

	staff := middleware.RequireRoles(identity.RoleAdmin, identity.RoleManager)
	admin := middleware.RequireRoles(identity.RoleAdmin)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", withOptional(a.LoginLimit, h.Auth.Login)...)
	authRoutes.POST("/refresh", withOptional(a.LoginLimit, h.Auth.Refresh)...)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)

	userRoutes := NewDomainGroup("users", "/users").Use(staff)
	userRoutes.GET("", h.User.List)
	userRoutes.POST("", h.User.Create)
	userRoutes.GET("/:id", h.User.GetByID)
	userRoutes.PUT("/:id", h.User.Update)
	userRoutes.DELETE("/:id", h.User.Delete)

	partnerRoutes := NewDomainGroup("partners", "/partners").Use(admin)
	partnerRoutes.GET("", h.Partner.List)
	partnerRoutes.POST("", h.Partner.Create)
	partnerRoutes.GET("/:id", h.Partner.GetByID)
	partnerRoutes.PUT("/:id", h.Partner.Update)
	partnerRoutes.POST("/:id/suspend", h.Partner.Suspend)
	partnerRoutes.POST("/:id/activate", h.Partner.Activate)
	partnerRoutes.DELETE("/:id", h.Partner.Delete)

	serviceCenterRoutes := NewDomainGroup("service-centers", "/service-centers")
	serviceCenterRoutes.GET("", h.Partner.ListServiceCenters)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", h.Product.List)
	catalogRoutes.GET("/products/sku/:sku", h.Product.GetBySKU)
	catalogRoutes.GET("/products/:id", h.Product.GetByID)
	catalogRoutes.POST("/products", staff, h.Product.Create)
	catalogRoutes.PUT("/products/:id", staff, h.Product.Update)
	catalogRoutes.DELETE("/products/:id", staff, h.Product.Delete)
	catalogRoutes.GET("/categories", h.Category.List)
	catalogRoutes.GET("/categories/:id", h.Category.GetByID)
	catalogRoutes.POST("/categories", staff, h.Category.Create)
	catalogRoutes.PUT("/categories/:id", staff, h.Category.Update)
	catalogRoutes.DELETE("/categories/:id", staff, h.Category.Delete)

	serviceRoutes := NewDomainGroup("services", "/services")
	serviceRoutes.GET("", h.ServiceOffering.List)
	serviceRoutes.GET("/:id", h.ServiceOffering.GetByID)
	serviceRoutes.POST("", staff, h.ServiceOffering.Create)
	serviceRoutes.PUT("/:id", staff, h.ServiceOffering.Update)
	serviceRoutes.DELETE("/:id", staff, h.ServiceOffering.Delete)

	customerRoutes := NewDomainGroup("customers", "/customers")
	customerRoutes.GET("", h.Customer.List)
	customerRoutes.POST("", h.Customer.Create)
	customerRoutes.GET("/:id", h.Customer.GetByID)
	customerRoutes.PUT("/:id", h.Customer.Update)
	customerRoutes.DELETE("/:id", staff, h.Customer.Delete)

	saleRoutes := NewDomainGroup("sales", "/sales")
	saleRoutes.GET("", h.Sale.List)
	saleRoutes.POST("", h.Sale.Create)
	saleRoutes.GET("/:id", h.Sale.GetByID)
	saleRoutes.POST("/:id/complete", h.Sale.Complete)
	saleRoutes.POST("/:id/refund", staff, h.Sale.Refund)

	orderRoutes := NewDomainGroup("purchase-orders", "/purchase-orders").Use(staff)
	orderRoutes.GET("", h.PurchaseOrder.List)
	orderRoutes.POST("", h.PurchaseOrder.Create)
	orderRoutes.GET("/:id", h.PurchaseOrder.GetByID)
	orderRoutes.POST("/:id/items", h.PurchaseOrder.AddItem)
	orderRoutes.POST("/:id/submit", h.PurchaseOrder.Submit)
	orderRoutes.POST("/:id/cancel", h.PurchaseOrder.Cancel)
	orderRoutes.POST("/:id/receive", h.PurchaseOrder.Receive)
	orderRoutes.DELETE("/:id", h.PurchaseOrder.Delete)

	inventoryRoutes := NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/movements", h.Inventory.ListMovements)
	inventoryRoutes.GET("/low-stock", h.Inventory.LowStock)
	inventoryRoutes.POST("/adjustments", staff, h.Inventory.Adjust)

	settingsRoutes := NewDomainGroup("settings", "/settings")
	settingsRoutes.GET("", h.Settings.GetAll)
	settingsRoutes.PUT("", staff, h.Settings.UpdateAll)
	settingsRoutes.GET("/:key", h.Settings.Get)
	settingsRoutes.PUT("/:key", staff, h.Settings.Set)
	settingsRoutes.DELETE("/:key", staff, h.Settings.Delete)

	// Devices push with their own account; reporting is for staff
	revenueRoutes := NewDomainGroup("revenue", "/revenue")
	revenueRoutes.POST("/sync", h.Revenue.Sync)
	revenueRoutes.GET("", staff, h.Revenue.List)
	revenueRoutes.GET("/summary", staff, h.Revenue.Summary)
	revenueRoutes.GET("/export", staff, h.Revenue.Export)

	syncLogRoutes := NewDomainGroup("sync-logs", "/sync-logs").Use(staff)
	syncLogRoutes.GET("", h.Revenue.ListSyncLogs)

	broadcastRoutes := NewDomainGroup("broadcast", "/broadcast").Use(staff)
	broadcastRoutes.POST("", h.Broadcast.Publish)
	broadcastRoutes.GET("/stats", h.Broadcast.Stats)

	r.Register(systemRoutes).
		Register(authRoutes).
		Register(userRoutes).
		Register(partnerRoutes).
		Register(serviceCenterRoutes).
		Register(catalogRoutes).
		Register(serviceRoutes).
		Register(customerRoutes).
		Register(saleRoutes).
		Register(orderRoutes).
		Register(inventoryRoutes).
		Register(settingsRoutes).
		Register(revenueRoutes).
		Register(syncLogRoutes).
		Register(broadcastRoutes)

	r.Setup()
}

func withOptional(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}

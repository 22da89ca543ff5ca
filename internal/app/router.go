// internal/app/router.go
package app

import (
	"context"
	"net/http"

	authHandler "crm-service/internal/handlers/auth"
	customerHandler "crm-service/internal/handlers/customer"
	outletHandler "crm-service/internal/handlers/outlet"
	wsHandler "crm-service/internal/handlers/websocket"
	xilnexHandler "crm-service/internal/handlers/xilnex"
	"crm-service/internal/middleware"
	"crm-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	CustomerHandler *customerHandler.CustomerHandler
	OutletHandler   *outletHandler.OutletHandler
	XilnexHandler   *xilnexHandler.XilnexHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Health          Pinger
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		if h.Health != nil {
			if err := h.Health.Ping(c.Request.Context()); err != nil {
				response.ServiceUnavailable(c, "database unreachable", err)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Users (admin) ====================
	users := api.Group("/users")
	users.Use(h.AuthMiddleware.AdminOnly()...)
	{
		users.GET("", h.AuthHandler.ListUsers)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.POST("", h.CustomerHandler.CreateCustomer)
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/stats/overview", h.CustomerHandler.GetStats)
		customers.POST("/sync", h.AuthMiddleware.RequireRole("admin"), h.CustomerHandler.SyncPending)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.PUT("/:id", h.CustomerHandler.UpdateCustomer)
		customers.DELETE("/:id", h.CustomerHandler.DeleteCustomer)
	}

	// ==================== Outlets ====================
	contacts := api.Group("/contacts")
	contacts.Use(h.AuthMiddleware.Auth())
	{
		contacts.POST("", h.CustomerHandler.CreateContact)
	}

	outlets := api.Group("/outlets")
	outlets.Use(h.AuthMiddleware.Auth())
	{
		outlets.POST("", h.OutletHandler.CreateOutlet)
		outlets.GET("", h.OutletHandler.ListOutlets)
		outlets.GET("/stats/overview", h.OutletHandler.GetStats)
		outlets.GET("/:id", h.OutletHandler.GetOutlet)
		outlets.PUT("/:id", h.OutletHandler.UpdateOutlet)
		outlets.DELETE("/:id", h.OutletHandler.DeleteOutlet)
	}

	// ==================== Xilnex maintenance ====================
	xilnexGroup := api.Group("/xilnex")
	xilnexGroup.Use(h.AuthMiddleware.Auth())
	{
		xilnexGroup.GET("/status", h.XilnexHandler.Status)
		xilnexGroup.GET("/clients/:id", h.AuthMiddleware.RequireRole("admin"), h.XilnexHandler.GetClient)
		xilnexGroup.DELETE("/clients/:id", h.AuthMiddleware.RequireRole("admin"), h.XilnexHandler.DeleteClient)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}

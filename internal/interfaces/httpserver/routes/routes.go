package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/handlers"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates route registration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
}

func NewRoutes(provider *handlers.Provider, cfg *config.Config) *Routes {
	return &Routes{handlers: provider, cfg: cfg}
}

// Register attaches the public v1 surface and the key-guarded admin surface.
func (r *Routes) Register(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.POST("/signup", r.handlers.Waitlist.Subscribe)

	admin := router.Group("/admin")
	admin.Use(middlewares.RequireAdmin(r.cfg.AdminAPIKey))

	admin.GET("/default-token-profile", r.handlers.Profile.Get)
	admin.PUT("/default-token-profile", r.handlers.Profile.Update)

	admin.GET("/models", r.handlers.Models.List)

	admin.GET("/tokens", r.handlers.Token.List)
	admin.POST("/tokens", r.handlers.Token.Create)
	admin.POST("/tokens/:id/rotate", r.handlers.Token.Rotate)
	admin.DELETE("/tokens/:id", r.handlers.Token.Delete)

	admin.GET("/cache/stats", r.handlers.Cache.Stats)
	admin.POST("/cache/clear", r.handlers.Cache.Clear)
}

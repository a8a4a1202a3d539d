package httpapi

import (
	"log/slog"

	"chatbot-platform/internal/auth"
	"chatbot-platform/internal/rbac"
	"chatbot-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the admin engine.
func NewRouter(log *slog.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.POST("/auth/refresh", h.Refresh)

	routing := v1.Group("/routing")
	routing.Use(auth.RequireAccessToken(h.Auth))
	routing.GET("", append(rbac.Chain(rbac.Readers...), h.GetRouting)...)
	routing.PUT("/:kind", append(rbac.Chain(rbac.Editors...), h.PutDestination)...)
	routing.DELETE("/:kind", append(rbac.Chain(rbac.Editors...), h.DeleteDestination)...)

	return r
}

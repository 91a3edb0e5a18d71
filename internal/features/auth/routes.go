package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
)

// RegisterRoutes registers the auth routes
func RegisterRoutes(router *gin.RouterGroup, authenticator *Authenticator, guests *GuestIssuer, log *logger.Logger) {
	handler := NewHandler(guests, log)
	authMiddleware := NewAuthMiddleware(authenticator)

	auth := router.Group("/auth")
	{
		auth.POST("/guest", handler.StartGuestSession)
		auth.GET("/me", authMiddleware, handler.GetMe)
	}
}

package users

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/features/auth"
)

// RegisterRoutes registers the profile routes; all of them require a token.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticator *auth.Authenticator) {
	me := router.Group("/users/me")
	me.Use(auth.NewAuthMiddleware(authenticator))
	{
		me.POST("", handler.Register)
		me.GET("", handler.GetMe)
		me.GET("/reports/created", handler.ListCreated)
		me.GET("/reports/confirmed", handler.ListConfirmed)
	}
}

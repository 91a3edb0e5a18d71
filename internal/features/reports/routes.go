package reports

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/features/auth"
	"github.com/xyz-asif/reportabaches/internal/pkg/ratelimit"
)

// RegisterRoutes registers the report routes. Writes are rate limited per caller.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticator *auth.Authenticator, limiter *ratelimit.RateLimiter) {
	authMiddleware := auth.NewAuthMiddleware(authenticator)
	limit := ratelimit.Middleware(limiter, ratelimit.ByUserOrIP)

	reports := router.Group("/reports")
	{
		// Public routes
		reports.GET("", handler.ListReports)
		reports.GET("/categories", handler.ListCategories)
		reports.GET("/nearby", handler.FindNearby)
		reports.GET("/:id", handler.GetReport)

		protected := reports.Group("")
		protected.Use(authMiddleware, limit)
		{
			protected.POST("", handler.CreateReport)
			protected.POST("/:id/confirm", handler.ConfirmReport)
			protected.POST("/:id/resolve", handler.ResolveReport)
			protected.POST("/:id/photo", handler.RetryPhoto)
		}
	}
}

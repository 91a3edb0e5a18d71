package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/config"
	"github.com/xyz-asif/reportabaches/internal/features/auth"
	"github.com/xyz-asif/reportabaches/internal/features/reports"
	"github.com/xyz-asif/reportabaches/internal/features/users"
	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/events"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	"github.com/xyz-asif/reportabaches/internal/pkg/ratelimit"
	"github.com/xyz-asif/reportabaches/internal/pkg/response"
)

// HealthChecker is implemented by the active database connection
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the backends chosen at startup
type Dependencies struct {
	Config        *config.Config
	Log           *logger.Logger
	Reports       reports.Store
	Users         users.Store
	Blobs         blob.Store
	Publisher     events.Publisher
	Authenticator *auth.Authenticator
	Guests        *auth.GuestIssuer
	Limiter       *ratelimit.RateLimiter
	Health        HealthChecker
}

// SetupRoutes registers the health probe and every feature under /api/v1
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthHandler(deps.Health))

	api := router.Group("/api/v1")

	auth.RegisterRoutes(api, deps.Authenticator, deps.Guests, deps.Log.Named("auth"))

	service := reports.NewService(deps.Reports, deps.Blobs, deps.Users, deps.Publisher, deps.Log.Named("reports"))
	matcher := reports.NewMatcher(deps.Reports, deps.Config.DuplicateRadiusMeters, deps.Log.Named("matcher"))
	reports.RegisterRoutes(api, reports.NewHandler(service, matcher, deps.Log.Named("reports")), deps.Authenticator, deps.Limiter)

	users.RegisterRoutes(api, users.NewHandler(deps.Users, service, deps.Log.Named("users")), deps.Authenticator)
}

func healthHandler(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := checker.HealthCheck(ctx); err != nil {
				response.Error(c, http.StatusServiceUnavailable, "database unavailable", "DB_UNAVAILABLE")
				return
			}
		}
		response.Success(c, map[string]interface{}{
			"status": status,
			"time":   time.Now().Unix(),
		})
	}
}

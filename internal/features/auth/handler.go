// ================== internal/features/auth/handler.go ==================
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	"github.com/xyz-asif/reportabaches/internal/pkg/response"
)

type Handler struct {
	guests *GuestIssuer
	log    *logger.Logger
}

func NewHandler(guests *GuestIssuer, log *logger.Logger) *Handler {
	return &Handler{guests: guests, log: log}
}

// StartGuestSession godoc
// @Summary Start a guest session
// @Description Issue a signed token for a guest identity (guest_<uuid>). Guests may create and confirm reports but cannot resolve them.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GuestSessionRequest false "Optional display name"
// @Success 201 {object} response.SuccessResponse{data=GuestSessionResponse}
// @Failure 422 {object} response.ErrorResponse
// @Router /auth/guest [post]
func (h *Handler) StartGuestSession(c *gin.Context) {
	var req GuestSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	id, token, expiresAt, err := h.guests.Issue(req.DisplayName)
	if err != nil {
		h.log.Error("issue guest token: %v", err)
		response.InternalServerError(c, "could not start a guest session", "GUEST_SESSION_FAILED")
		return
	}

	response.Created(c, GuestSessionResponse{
		Identity:    id,
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
	})
}

// GetMe godoc
// @Summary Current identity
// @Description Return the identity resolved from the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=Identity}
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	id, ok := CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}
	response.Success(c, id)
}

package users

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/features/auth"
	"github.com/xyz-asif/reportabaches/internal/features/reports"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	"github.com/xyz-asif/reportabaches/internal/pkg/response"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// ReportLister materializes report ids into reports
type ReportLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]reports.Report, error)
}

type Handler struct {
	store   Store
	reports ReportLister
	log     *logger.Logger
	now     func() time.Time
}

func NewHandler(store Store, lister ReportLister, log *logger.Logger) *Handler {
	return &Handler{store: store, reports: lister, log: log, now: time.Now}
}

// Register godoc
// @Summary Create the caller's profile
// @Description Registered accounts only. Returns the existing profile when it was already created.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterRequest false "Profile fields"
// @Success 201 {object} response.SuccessResponse{data=User}
// @Success 200 {object} response.SuccessResponse{data=User}
// @Failure 403 {object} response.ErrorResponse
// @Router /users/me [post]
func (h *Handler) Register(c *gin.Context) {
	identity, ok := h.registered(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	name := req.Name
	if name == "" {
		name = identity.DisplayName
	}
	user := &User{
		ID:        identity.UserID,
		Name:      name,
		Email:     identity.Email,
		PhotoURL:  req.PhotoURL,
		CreatedAt: h.now().UTC(),
	}

	ctx := c.Request.Context()
	err := h.store.Create(ctx, user)
	switch {
	case err == nil:
		response.Created(c, user)
	case apperrors.Is(err, apperrors.ErrDuplicate):
		existing, getErr := h.store.GetByID(ctx, identity.UserID)
		if getErr != nil {
			h.log.Error("load user %s: %v", identity.UserID, getErr)
			response.InternalServerError(c, "could not load the profile", "USER_LOOKUP_FAILED")
			return
		}
		response.Success(c, existing)
	default:
		h.log.Error("create user %s: %v", identity.UserID, err)
		response.InternalServerError(c, "could not create the profile", "USER_CREATE_FAILED")
	}
}

// GetMe godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=User}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.Success(c, user)
}

// ListCreated godoc
// @Summary Reports created by the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.ListResponse{data=[]reports.Report}
// @Router /users/me/reports/created [get]
func (h *Handler) ListCreated(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.listReports(c, user.ReportsCreated)
}

// ListConfirmed godoc
// @Summary Reports confirmed by the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.ListResponse{data=[]reports.Report}
// @Router /users/me/reports/confirmed [get]
func (h *Handler) ListConfirmed(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.listReports(c, user.ReportsConfirmed)
}

func (h *Handler) listReports(c *gin.Context, ids []string) {
	list, err := h.reports.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		h.log.Error("list reports by id: %v", err)
		response.InternalServerError(c, "could not load the reports", "LIST_FAILED")
		return
	}
	response.List(c, list, len(list))
}

func (h *Handler) registered(c *gin.Context) (*auth.Identity, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return nil, false
	}
	if !identity.IsRegistered() {
		response.Forbidden(c, "guests have no profile", "PERMISSION_DENIED")
		return nil, false
	}
	return identity, true
}

func (h *Handler) currentUser(c *gin.Context) (*User, bool) {
	identity, ok := h.registered(c)
	if !ok {
		return nil, false
	}

	user, err := h.store.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "profile not found", "USER_NOT_FOUND")
			return nil, false
		}
		h.log.Error("load user %s: %v", identity.UserID, err)
		response.InternalServerError(c, "could not load the profile", "USER_LOOKUP_FAILED")
		return nil, false
	}
	return user, true
}

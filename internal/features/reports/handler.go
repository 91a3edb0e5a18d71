package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/features/auth"
	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	"github.com/xyz-asif/reportabaches/internal/pkg/response"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// Handler handles HTTP requests for the reports feature
type Handler struct {
	service *Service
	matcher *Matcher
	log     *logger.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, matcher *Matcher, log *logger.Logger) *Handler {
	return &Handler{service: service, matcher: matcher, log: log}
}

// ListCategories godoc
// @Summary List report categories
// @Tags reports
// @Produce json
// @Success 200 {object} response.ListResponse{data=[]CategoryInfo}
// @Router /reports/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	response.List(c, Categories, len(Categories))
}

// CreateReport godoc
// @Summary Submit a new report
// @Description Runs duplicate detection first. When open reports of the same category exist within the radius a 409 lists them unless force=true.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param category formData string true "Category tag"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param description formData string false "Description"
// @Param address formData string false "Address hint"
// @Param anonymous formData bool false "Hide the author name"
// @Param force formData bool false "Skip duplicate detection"
// @Param photo formData file true "Photo of the issue"
// @Success 201 {object} response.SuccessResponse{data=CreateReportResponse}
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse{data=DuplicatesResponse}
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var form CreateReportForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return
	}

	category, err := ValidateCategory(form.Category)
	if err != nil {
		response.FromError(c, err, "CREATE_FAILED")
		return
	}
	location, err := ValidateLocation(form.Latitude, form.Longitude)
	if err != nil {
		response.FromError(c, err, "CREATE_FAILED")
		return
	}

	photo, err := requiredPhoto(c)
	if err != nil {
		response.ValidationError(c, err.Error(), "PHOTO_REQUIRED")
		return
	}

	if !form.Force {
		duplicates, err := h.matcher.FindNearbyOpenReports(c.Request.Context(), location, category, 0)
		if err != nil {
			response.FromError(c, err, "CREATE_FAILED")
			return
		}
		if len(duplicates) > 0 {
			response.ConflictWithData(c, "similar open reports already exist nearby", "DUPLICATE_REPORT",
				DuplicatesResponse{Duplicates: duplicates})
			return
		}
	}

	input := CreateInput{
		Category:    category,
		Location:    location,
		Photo:       photo,
		Description: form.Description,
		Address:     form.Address,
	}
	anonymous := form.Anonymous || identity.IsGuest

	id, err := h.service.Create(c.Request.Context(), input, actorFrom(identity), anonymous)
	if err != nil {
		h.log.Error("create report: %v", err)
		if id != "" {
			// The record exists but its photo could not be attached.
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Error: apperrors.UserMessage(err, "could not create the report"),
				Code:  "PHOTO_UPLOAD_FAILED",
				Data:  CreateReportResponse{ID: id, PhotoState: PhotoFailed},
			})
			return
		}
		response.FromError(c, err, "CREATE_FAILED")
		return
	}

	response.Created(c, CreateReportResponse{ID: id, PhotoState: PhotoAttached})
}

// ListReports godoc
// @Summary List reports
// @Tags reports
// @Produce json
// @Param category query string false "Category tag"
// @Param status query string false "pending, in_progress or resolved"
// @Success 200 {object} response.ListResponse{data=[]Report}
// @Failure 422 {object} response.ErrorResponse
// @Router /reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	filter := ListFilter{}
	if q.Category != "" {
		category, err := ValidateCategory(q.Category)
		if err != nil {
			response.FromError(c, err, "LIST_FAILED")
			return
		}
		filter.Category = category
	}
	status, err := ValidateStatus(q.Status)
	if err != nil {
		response.FromError(c, err, "LIST_FAILED")
		return
	}
	filter.Status = status

	reports, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list reports: %v", err)
		response.FromError(c, err, "LIST_FAILED")
		return
	}
	response.List(c, reports, len(reports))
}

// FindNearby godoc
// @Summary Open reports near a point
// @Description Same check that runs before a report is created.
// @Tags reports
// @Produce json
// @Param category query string true "Category tag"
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters"
// @Success 200 {object} response.ListResponse{data=[]Report}
// @Failure 422 {object} response.ErrorResponse
// @Router /reports/nearby [get]
func (h *Handler) FindNearby(c *gin.Context) {
	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	category, err := ValidateCategory(q.Category)
	if err != nil {
		response.FromError(c, err, "NEARBY_FAILED")
		return
	}
	location, err := ValidateLocation(q.Latitude, q.Longitude)
	if err != nil {
		response.FromError(c, err, "NEARBY_FAILED")
		return
	}

	reports, err := h.matcher.FindNearbyOpenReports(c.Request.Context(), location, category, q.Radius)
	if err != nil {
		response.FromError(c, err, "NEARBY_FAILED")
		return
	}
	response.List(c, reports, len(reports))
}

// GetReport godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			h.log.Error("get report %s: %v", c.Param("id"), err)
		}
		response.FromError(c, err, "GET_FAILED")
		return
	}
	response.Success(c, report)
}

// ConfirmReport godoc
// @Summary Confirm a report still exists
// @Description Any signed in user or guest may confirm, optionally with a photo.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param photo formData file false "Photo evidence"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports/{id}/confirm [post]
func (h *Handler) ConfirmReport(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	photo, err := optionalPhoto(c)
	if err != nil {
		response.ValidationError(c, err.Error(), "INVALID_PHOTO")
		return
	}

	id := c.Param("id")
	if err := h.service.Confirm(c.Request.Context(), id, actorFrom(identity), photo); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			h.log.Error("confirm report %s: %v", id, err)
		}
		response.FromError(c, err, "CONFIRM_FAILED")
		return
	}

	h.respondWithReport(c, id)
}

// ResolveReport godoc
// @Summary Resolve a report
// @Description Registered users only. A photo of the fix is required.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param photo formData file true "Photo of the fix"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /reports/{id}/resolve [post]
func (h *Handler) ResolveReport(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}
	if !identity.IsRegistered() {
		response.FromError(c, apperrors.ErrPermissionDenied, "RESOLVE_FAILED")
		return
	}

	photo, err := requiredPhoto(c)
	if err != nil {
		response.ValidationError(c, err.Error(), "PHOTO_REQUIRED")
		return
	}

	id := c.Param("id")
	if err := h.service.Resolve(c.Request.Context(), id, actorFrom(identity), photo); err != nil {
		h.log.Warn("resolve report %s: %v", id, err)
		response.FromError(c, err, "RESOLVE_FAILED")
		return
	}

	h.respondWithReport(c, id)
}

// RetryPhoto godoc
// @Summary Attach the photo of a report whose upload failed
// @Description Only the author may retry, and only while the report has no attached photo.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param photo formData file true "Photo of the issue"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports/{id}/photo [post]
func (h *Handler) RetryPhoto(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	photo, err := requiredPhoto(c)
	if err != nil {
		response.ValidationError(c, err.Error(), "PHOTO_REQUIRED")
		return
	}

	id := c.Param("id")
	if err := h.service.RetryPhoto(c.Request.Context(), id, actorFrom(identity), photo); err != nil {
		h.log.Warn("retry photo of report %s: %v", id, err)
		response.FromError(c, err, "PHOTO_UPLOAD_FAILED")
		return
	}

	h.respondWithReport(c, id)
}

func (h *Handler) respondWithReport(c *gin.Context, id string) {
	report, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Warn("reload report %s: %v", id, err)
		response.Success(c, gin.H{"id": id})
		return
	}
	response.Success(c, report)
}

func actorFrom(id *auth.Identity) Actor {
	return Actor{UserID: id.UserID, Name: id.DisplayName, IsGuest: id.IsGuest}
}

func requiredPhoto(c *gin.Context) (*blob.Photo, error) {
	photo, err := optionalPhoto(c)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, errors.New("a photo is required")
	}
	return photo, nil
}

func optionalPhoto(c *gin.Context) (*blob.Photo, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return blob.ReadPhoto(header)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/review"
	"github.com/janhq/library-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
)

// ReviewHandler exposes member ratings.
type ReviewHandler struct {
	service  review.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service review.Service, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: requests.NewValidator(),
		log:      log.With().Str("handler", "review").Logger(),
	}
}

// ListForMedia handles GET /api/media/:id/reviews
// @Summary List reviews of a media item
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} responses.ReviewListResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/media/{id}/reviews [get]
func (h *ReviewHandler) ListForMedia(c *gin.Context) {
	page, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}
	mediaID := c.Param("id")

	items, total, err := h.service.ListByMedia(c.Request.Context(), mediaID, page.Limit, page.Offset())
	if err != nil {
		responses.HandleError(c, err, "failed to list reviews")
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), mediaID)
	if err != nil {
		responses.HandleError(c, err, "failed to summarize reviews")
		return
	}
	c.JSON(http.StatusOK, responses.NewReviewListResponse(items, summary, page.Page, page.Limit, total))
}

// Create handles POST /api/media/:id/reviews
// @Summary Review a media item
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param request body requests.CreateReviewRequest true "Review"
// @Success 201 {object} responses.ReviewResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /api/media/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req requests.CreateReviewRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid review request")
		return
	}

	r, err := h.service.Create(c.Request.Context(), review.CreateParams{
		UserID:  principal.ID,
		MediaID: c.Param("id"),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create review")
		return
	}
	if r.UserName == "" {
		r.UserName = principal.Name
	}
	c.JSON(http.StatusCreated, responses.MapReviewToResponse(r))
}

// Delete handles DELETE /api/reviews/:id
// @Summary Delete a review
// @Description Authors can delete their own reviews; admins can delete any.
// @Tags Reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		responses.HandleError(c, err, "failed to delete review")
		return
	}
	c.Status(http.StatusNoContent)
}

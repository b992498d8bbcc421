package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// MediaHandler exposes the catalog.
type MediaHandler struct {
	service  media.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(service media.Service, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		service:  service,
		validate: requests.NewValidator(),
		log:      log.With().Str("handler", "media").Logger(),
	}
}

// List handles GET /api/media
// @Summary List media items
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param type query string false "book, movie, music or tv"
// @Param category query string false "Category"
// @Param tag query string false "Tag"
// @Param available query bool false "Availability"
// @Param search query string false "Matches title or author"
// @Success 200 {object} responses.ListResponse[responses.MediaResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/media [get]
func (h *MediaHandler) List(c *gin.Context) {
	page, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}

	filter := media.NewFilter().WithPagination(page.Limit, page.Offset())
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t, ok := media.ParseType(raw)
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "type must be book, movie, music or tv", "media-list-type-001")
			return
		}
		filter.WithType(t)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.WithCategory(category)
	}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		filter.WithTag(strings.ToLower(tag))
	}
	available, err := requests.OptionalBool(c, "available")
	if err != nil {
		responses.HandleError(c, err, "invalid availability filter")
		return
	}
	if available != nil {
		filter.WithAvailable(*available)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.WithSearch(search)
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err, "failed to list media")
		return
	}
	c.JSON(http.StatusOK, responses.NewListResponse(responses.MapSlice(items, h.toResponse), page.Page, page.Limit, total))
}

// Get handles GET /api/media/:id
// @Summary Get a media item
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 200 {object} responses.MediaResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get media")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(m))
}

// Create handles POST /api/media
// @Summary Add a media item
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateMediaRequest true "Media"
// @Success 201 {object} responses.MediaResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/media [post]
func (h *MediaHandler) Create(c *gin.Context) {
	var req requests.CreateMediaRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid media request")
		return
	}

	t, _ := media.ParseType(req.Type)
	m, err := h.service.Create(c.Request.Context(), media.CreateParams{
		Title:       req.Title,
		Author:      req.Author,
		Type:        t,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		ReleaseYear: req.ReleaseYear,
		ISBN:        req.ISBN,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create media")
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(m))
}

// Update handles PUT /api/media/:id
// @Summary Update a media item
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param request body requests.UpdateMediaRequest true "Changes"
// @Success 200 {object} responses.MediaResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/media/{id} [put]
func (h *MediaHandler) Update(c *gin.Context) {
	var req requests.UpdateMediaRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid media request")
		return
	}

	params := media.UpdateParams{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		ReleaseYear: req.ReleaseYear,
		ISBN:        req.ISBN,
		ExternalID:  req.ExternalID,
	}
	if req.Type != nil {
		t, _ := media.ParseType(*req.Type)
		params.Type = &t
	}

	m, err := h.service.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		responses.HandleError(c, err, "failed to update media")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(m))
}

// Delete handles DELETE /api/media/:id
// @Summary Delete a media item
// @Description Removes the item with its loan history and reviews. Refused while a loan is not returned.
// @Tags Media
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 204
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /api/media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteMediaCascade(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete media")
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories handles GET /api/media/categories
// @Summary List categories in use
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /api/media/categories [get]
func (h *MediaHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// Tags handles GET /api/media/tags
// @Summary List tags in use
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /api/media/tags [get]
func (h *MediaHandler) Tags(c *gin.Context) {
	tags, err := h.service.Tags(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

// UploadCover handles POST /api/media/:id/cover
// @Summary Upload a cover image
// @Description Accepts a JPEG, PNG or WebP image in the multipart field "file".
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param file formData file true "Cover image"
// @Success 200 {object} responses.MediaResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /api/media/{id}/cover [post]
func (h *MediaHandler) UploadCover(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "multipart field \"file\" is required", "media-cover-form-001")
		return
	}
	file, err := header.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "failed to open uploaded file", "media-cover-open-001")
		return
	}
	defer file.Close()

	m, err := h.service.UploadCover(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		responses.HandleError(c, err, "failed to upload cover")
		return
	}
	h.log.Info().Str("media_id", m.ID).Str("filename", header.Filename).Int64("size", header.Size).Msg("cover uploaded")
	c.JSON(http.StatusOK, h.toResponse(m))
}

func (h *MediaHandler) toResponse(m *media.Media) responses.MediaResponse {
	return responses.MapMediaToResponse(m, h.service.CoverURL(m))
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/reminder"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// ReminderRunner runs one reminder pass on demand.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (*reminder.RunReport, error)
}

// AdminHandler exposes the dashboard, manual reminder runs and catalog search.
type AdminHandler struct {
	stats     stats.Service
	reminders ReminderRunner
	catalog   catalog.Service
	now       func() time.Time
	log       zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(statsService stats.Service, reminders ReminderRunner, catalogService catalog.Service, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		stats:     statsService,
		reminders: reminders,
		catalog:   catalogService,
		now:       time.Now,
		log:       log.With().Str("handler", "admin").Logger(),
	}
}

// WithClock overrides the time source.
func (h *AdminHandler) WithClock(now func() time.Time) *AdminHandler {
	h.now = now
	return h
}

// Stats handles GET /api/admin/stats
// @Summary Dashboard
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.DashboardResponse
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	dashboard, err := h.stats.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		responses.HandleError(c, err, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, responses.MapDashboardToResponse(dashboard))
}

// RunReminders handles POST /api/admin/reminders/run
// @Summary Run the reminder scheduler now
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} reminder.RunReport
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/admin/reminders/run [post]
func (h *AdminHandler) RunReminders(c *gin.Context) {
	report, err := h.reminders.Run(c.Request.Context(), h.now())
	if err != nil {
		responses.HandleError(c, err, "reminder run failed")
		return
	}
	h.log.Info().
		Int("scanned", report.Scanned).
		Int("due_soon", report.DueSoon).
		Int("late", report.Late).
		Bool("contended", report.Contended).
		Msg("manual reminder run finished")
	c.JSON(http.StatusOK, report)
}

// SearchCatalog handles GET /api/catalog/search
// @Summary Search external catalogs
// @Description Looks up metadata in Google Books, TMDB or MusicBrainz depending on the media type.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param type query string true "book, movie, music or tv"
// @Param q query string true "Query"
// @Param limit query int false "Maximum results (default 10, max 40)"
// @Success 200 {object} map[string][]catalog.Result
// @Failure 400 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /api/catalog/search [get]
func (h *AdminHandler) SearchCatalog(c *gin.Context) {
	t, ok := media.ParseType(c.Query("type"))
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "type must be book, movie, music or tv", "catalog-handler-type-001")
		return
	}
	limit := catalog.DefaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid limit number", "catalog-handler-limit-001")
			return
		}
		limit = parsed
	}

	results, err := h.catalog.Search(c.Request.Context(), t, c.Query("q"), limit)
	if err != nil {
		responses.HandleError(c, err, "catalog search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

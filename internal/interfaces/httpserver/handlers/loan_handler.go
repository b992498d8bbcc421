package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/infrastructure/metrics"
	"github.com/janhq/library-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// CoverURLFunc resolves a stored cover key to a public URL.
type CoverURLFunc func(key string) string

// LoanHandler exposes the borrow lifecycle.
type LoanHandler struct {
	service  loan.Service
	coverURL CoverURLFunc
	validate *validator.Validate
	log      zerolog.Logger
}

// NewLoanHandler constructs the handler. coverURL may be nil.
func NewLoanHandler(service loan.Service, coverURL CoverURLFunc, log zerolog.Logger) *LoanHandler {
	return &LoanHandler{
		service:  service,
		coverURL: coverURL,
		validate: requests.NewValidator(),
		log:      log.With().Str("handler", "loan").Logger(),
	}
}

// Borrow handles POST /api/borrow
// @Summary Lend a media item
// @Description Creates a loan for an available media item. The due date defaults to the loan period.
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateLoanRequest true "Loan"
// @Success 201 {object} responses.LoanResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /api/borrow [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	var req requests.CreateLoanRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid loan request")
		return
	}

	view, err := h.service.CreateLoan(c.Request.Context(), loan.CreateParams{
		UserID:  strings.TrimSpace(req.UserID),
		MediaID: strings.TrimSpace(req.MediaID),
		DueAt:   req.DueDate,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create loan")
		return
	}

	metrics.RecordLoanCreated()
	c.JSON(http.StatusCreated, responses.MapLoanToResponse(view, h.coverURL))
}

// Return handles PUT /api/borrow/:id/return
// @Summary Return a loan
// @Description Finalizes a loan and makes the media available again. Members can return their own loans.
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} responses.LoanResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /api/borrow/{id}/return [put]
func (h *LoanHandler) Return(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	loanID := c.Param("id")

	if !principal.IsAdmin() {
		existing, err := h.service.GetLoan(c.Request.Context(), loanID)
		if err != nil {
			responses.HandleError(c, err, "failed to load loan")
			return
		}
		if existing.UserID != principal.ID {
			responses.HandleNewError(c, platformerrors.ErrorTypeForbidden, "only the borrower or an admin can return this loan", "loan-return-forbidden-001")
			return
		}
	}

	view, err := h.service.ReturnLoan(c.Request.Context(), loanID)
	if err != nil {
		responses.HandleError(c, err, "failed to return loan")
		return
	}

	metrics.RecordLoanReturned()
	c.JSON(http.StatusOK, responses.MapLoanToResponse(view, h.coverURL))
}

// Mine handles GET /api/borrow/mine
// @Summary List my loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param status query string false "borrowed, returned or overdue"
// @Param mediaType query string false "book, movie, music or tv"
// @Param search query string false "Matches media title or author"
// @Success 200 {object} responses.ListResponse[responses.LoanResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/borrow/mine [get]
func (h *LoanHandler) Mine(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	h.list(c, principal.ID)
}

// ListForUser handles GET /api/borrow/user/:userId
// @Summary List a member's loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param status query string false "borrowed, returned or overdue"
// @Success 200 {object} responses.ListResponse[responses.LoanResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/borrow/user/{userId} [get]
func (h *LoanHandler) ListForUser(c *gin.Context) {
	h.list(c, c.Param("userId"))
}

// List handles GET /api/borrow
// @Summary List all loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param status query string false "borrowed, returned or overdue"
// @Param mediaType query string false "book, movie, music or tv"
// @Param search query string false "Matches media title or author"
// @Param userId query string false "Borrower"
// @Param mediaId query string false "Media item"
// @Success 200 {object} responses.ListResponse[responses.LoanResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/borrow [get]
func (h *LoanHandler) List(c *gin.Context) {
	h.list(c, strings.TrimSpace(c.Query("userId")))
}

func (h *LoanHandler) list(c *gin.Context, userID string) {
	page, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}

	filter := loan.NewFilter().WithPagination(page.Limit, page.Offset())
	if userID != "" {
		filter.WithUserID(userID)
	}
	if mediaID := strings.TrimSpace(c.Query("mediaId")); mediaID != "" {
		filter.WithMediaID(mediaID)
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := loan.ParseStatus(strings.ToLower(raw))
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "status must be borrowed, returned or overdue", "loan-list-status-002")
			return
		}
		filter.WithStatus(status)
	}
	if raw := strings.TrimSpace(c.Query("mediaType")); raw != "" {
		t, ok := media.ParseType(raw)
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "mediaType must be book, movie, music or tv", "loan-list-type-002")
			return
		}
		filter.WithMediaType(t)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.WithSearch(search)
	}

	views, total, err := h.service.ListLoans(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err, "failed to list loans")
		return
	}

	data := responses.MapSlice(views, func(v *loan.View) responses.LoanResponse {
		return responses.MapLoanToResponse(v, h.coverURL)
	})
	c.JSON(http.StatusOK, responses.NewListResponse(data, page.Page, page.Limit, total))
}

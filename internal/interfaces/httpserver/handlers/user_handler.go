package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// UserHandler exposes account administration.
type UserHandler struct {
	service  user.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service user.Service, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: requests.NewValidator(),
		log:      log.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /api/users
// @Summary List accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param search query string false "Matches name or email"
// @Param role query string false "user or admin"
// @Param active query bool false "Activation"
// @Success 200 {object} responses.ListResponse[responses.UserResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}

	filter := &user.Filter{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := user.Role(strings.ToLower(raw))
		if !role.IsValid() {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "role must be user or admin", "user-list-role-001")
			return
		}
		filter.Role = &role
	}
	active, err := requests.OptionalBool(c, "active")
	if err != nil {
		responses.HandleError(c, err, "invalid active filter")
		return
	}
	filter.Active = active

	users, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, responses.NewListResponse(responses.MapSlice(users, responses.MapUserToResponse), page.Page, page.Limit, total))
}

// Get handles GET /api/users/:id
// @Summary Get an account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} responses.UserResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get user")
		return
	}
	c.JSON(http.StatusOK, responses.MapUserToResponse(u))
}

// SetStatus handles PATCH /api/users/:id/status
// @Summary Activate or deactivate an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body requests.UpdateUserStatusRequest true "Status"
// @Success 200 {object} responses.UserResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/users/{id}/status [patch]
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req requests.UpdateUserStatusRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid status request")
		return
	}
	u, err := h.service.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		responses.HandleError(c, err, "failed to update user status")
		return
	}
	h.log.Info().Str("user_id", u.ID).Bool("active", u.Active).Msg("user status changed")
	c.JSON(http.StatusOK, responses.MapUserToResponse(u))
}

// SetRole handles PATCH /api/users/:id/role
// @Summary Change the role of an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body requests.UpdateUserRoleRequest true "Role"
// @Success 200 {object} responses.UserResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/users/{id}/role [patch]
func (h *UserHandler) SetRole(c *gin.Context) {
	var req requests.UpdateUserRoleRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid role request")
		return
	}
	u, err := h.service.SetRole(c.Request.Context(), c.Param("id"), user.Role(req.Role))
	if err != nil {
		responses.HandleError(c, err, "failed to update user role")
		return
	}
	h.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user role changed")
	c.JSON(http.StatusOK, responses.MapUserToResponse(u))
}

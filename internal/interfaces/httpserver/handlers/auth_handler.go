package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
)

// AuthHandler exposes registration and sessions.
type AuthHandler struct {
	auth     auth.Service
	users    user.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService auth.Service, users user.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		users:    users,
		validate: requests.NewValidator(),
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.RegisterRequest true "Account"
// @Success 201 {object} responses.UserResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.RegisterRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid registration")
		return
	}

	u, err := h.users.Register(c.Request.Context(), user.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.RoleUser,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to register")
		return
	}
	c.JSON(http.StatusCreated, responses.MapUserToResponse(u))
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.LoginRequest true "Credentials"
// @Success 200 {object} responses.SessionResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.LoginRequest
	if err := requests.BindJSON(c, h.validate, &req); err != nil {
		responses.HandleError(c, err, "invalid login")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		responses.HandleError(c, err, "login failed")
		return
	}
	c.JSON(http.StatusOK, responses.MapSessionToResponse(session))
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revokes the bearer token for the rest of its lifetime.
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), principal); err != nil {
		responses.HandleError(c, err, "logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.UserResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), principal.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to load account")
		return
	}
	c.JSON(http.StatusOK, responses.MapUserToResponse(u))
}

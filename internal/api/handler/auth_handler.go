package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventboard/eventboard/internal/api/middleware"
	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/ports"
	"github.com/eventboard/eventboard/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account. The role is never taken from the
// request; a matching admin_code grants admin.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), toRegisterInput(req))
	recordAuth("register", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user.Principal())})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, p, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(p)})
}

// Me returns the principal behind the session token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return domain.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, toUserResponse(p))
}

func recordAuth(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.AuthAttemptsTotal.WithLabelValues(op, result).Inc()
}

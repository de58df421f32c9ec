package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventboard/eventboard/internal/api/middleware"
	"github.com/eventboard/eventboard/internal/core/ports"
)

// RegistrationHandler handles sign-ups for events.
type RegistrationHandler struct {
	service ports.RegistrationService
}

func NewRegistrationHandler(service ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Status handles GET /v1/events/:id/registration. Anonymous callers are
// reported as not registered.
//
// @Summary      Registration status of the caller
// @Tags         registrations
// @Produce      json
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  registrationStatusResponse
// @Router       /v1/events/{id}/registration [get]
func (h *RegistrationHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")
	ok, err := h.service.IsRegistered(ctx, middleware.Principal(c), eventID)
	if err != nil {
		return err
	}
	n, err := h.service.CountRegistrants(ctx, eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, registrationStatusResponse{EventID: eventID, Registered: ok, RegistrantCount: &n})
}

// Register handles POST /v1/events/:id/registration.
//
// @Summary      Register for an event
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event id"
// @Success      201  {object}  registrationStatusResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/events/{id}/registration [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	eventID := c.Param("id")
	if err := h.service.Register(c.Request().Context(), middleware.Principal(c), eventID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registrationStatusResponse{EventID: eventID, Registered: true})
}

// Cancel handles DELETE /v1/events/:id/registration.
//
// @Summary      Cancel a registration
// @Tags         registrations
// @Security     BearerAuth
// @Param        id   path  string  true  "Event id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/events/{id}/registration [delete]
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	if err := h.service.Cancel(c.Request().Context(), middleware.Principal(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Registrants handles GET /v1/events/:id/registrants.
//
// @Summary      List registrants of an event
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  registrantListResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/events/{id}/registrants [get]
func (h *RegistrationHandler) Registrants(c echo.Context) error {
	eventID := c.Param("id")
	registrants, err := h.service.ListRegistrantsForEvent(c.Request().Context(), middleware.Principal(c), eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRegistrantList(eventID, registrants))
}

// MyEvents handles GET /v1/me/events.
//
// @Summary      Events the caller registered for
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  eventListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/events [get]
func (h *RegistrationHandler) MyEvents(c echo.Context) error {
	events, err := h.service.ListMyRegisteredEvents(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventList(events))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventboard/eventboard/internal/api/middleware"
	"github.com/eventboard/eventboard/internal/core/ports"
)

// EventHandler handles HTTP requests for event operations.
type EventHandler struct {
	service ports.EventService
}

func NewEventHandler(service ports.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// List handles GET /v1/events.
//
// @Summary      List events
// @Description  All events, latest date first, with registrant counts.
// @Tags         events
// @Produce      json
// @Success      200  {object}  eventListResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/events [get]
func (h *EventHandler) List(c echo.Context) error {
	summaries, err := h.service.ListEvents(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummaryList(summaries))
}

// Get handles GET /v1/events/:id.
//
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  eventResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

// Create handles POST /v1/events.
//
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      eventRequest  true  "Event"
// @Success      201   {object}  eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.CreateEvent(c.Request().Context(), middleware.Principal(c), toEventDraft(req))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/v1/events/"+event.ID)
	return c.JSON(http.StatusCreated, toEventResponse(event))
}

// Update handles PUT /v1/events/:id. Every mutable field is replaced.
//
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Event id"
// @Param        body  body      eventRequest  true  "Event"
// @Success      200   {object}  eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.UpdateEvent(c.Request().Context(), middleware.Principal(c), c.Param("id"), toEventDraft(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

// Delete handles DELETE /v1/events/:id. Registrations go with the event.
//
// @Summary      Delete an event
// @Tags         events
// @Security     BearerAuth
// @Param        id   path  string  true  "Event id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteEvent(c.Request().Context(), middleware.Principal(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

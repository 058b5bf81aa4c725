package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/eventosu/internal/dto"
	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), service.CreateEventInput{
		Title:       req.Title,
		Type:        req.Type,
		Datetime:    req.Datetime,
		Venue:       req.Venue,
		Capacity:    req.Capacity,
		Description: req.Description,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, h.card(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.svc.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.card(event))
}

// ListEvents renders the catalog with the type, date and q filters applied.
func (h *EventHandler) ListEvents(c echo.Context) error {
	view, err := h.svc.ApplyFilters(c.Request().Context(), service.EventFilter{
		Type: c.QueryParam("type"),
		Date: c.QueryParam("date"),
		Text: c.QueryParam("q"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

func (h *EventHandler) card(event *models.Event) service.EventCard {
	return h.svc.Render([]models.Event{*event}).Events[0]
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Eursukkul/eventosu/internal/dto"
	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/labstack/echo/v4"
)

// AttendeeConsole is the part of *service.AttendeeConsole the HTTP layer drives.
type AttendeeConsole interface {
	Initialize(ctx context.Context) error
	Filter(f service.ConsoleFilter)
	GoToPage(n int)
	Render() service.ConsolePage
	Events() []service.EventSummary
	Lookup(ctx context.Context, attendeeID string) (models.FlatAttendee, error)
	CycleStatus(ctx context.Context, attendeeID string) (models.FlatAttendee, error)
	DeleteAttendee(ctx context.Context, attendeeID string, confirm service.Confirmer) error
	ExportText(now time.Time) (string, string, error)
}

type AttendeeHandler struct {
	console AttendeeConsole
	now     func() time.Time
}

func NewAttendeeHandler(console AttendeeConsole) *AttendeeHandler {
	return &AttendeeHandler{console: console, now: time.Now}
}

func (h *AttendeeHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAttendees)
	g.GET("/events", h.ListEvents)
	g.GET("/export", h.Export)
	g.POST("/reload", h.Reload)
	g.POST("/:id/status", h.CycleStatus)
	g.DELETE("/:id", h.DeleteAttendee)
}

func (h *AttendeeHandler) applyQuery(c echo.Context) (dto.AttendeeQuery, error) {
	var q dto.AttendeeQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	var status models.AttendeeStatus
	if q.Status != "" {
		status = models.ParseStatus(q.Status)
		if !status.Valid() {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	h.console.Filter(service.ConsoleFilter{EventID: q.Event, Status: status, Search: q.Search})
	return q, nil
}

// ListAttendees filters the console by the query and renders the requested page.
func (h *AttendeeHandler) ListAttendees(c echo.Context) error {
	q, err := h.applyQuery(c)
	if err != nil {
		return err
	}
	if q.Page > 1 {
		h.console.GoToPage(q.Page)
	}
	return c.JSON(http.StatusOK, h.console.Render())
}

func (h *AttendeeHandler) ListEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.console.Events())
}

func (h *AttendeeHandler) Reload(c echo.Context) error {
	if err := h.console.Initialize(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.console.Render())
}

func (h *AttendeeHandler) CycleStatus(c echo.Context) error {
	a, err := h.console.CycleStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAttendeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToAttendeeResponse(a))
}

// DeleteAttendee needs confirm=true; without it the response carries the
// confirmation question.
func (h *AttendeeHandler) DeleteAttendee(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	a, err := h.console.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrAttendeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	confirmed := c.QueryParam("confirm") == "true"
	err = h.console.DeleteAttendee(ctx, id, func(string) bool { return confirmed })
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeleteNotConfirmed):
			return echo.NewHTTPError(http.StatusPreconditionRequired, service.DeletePrompt(a))
		case errors.Is(err, service.ErrAttendeeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// Export downloads the filtered attendees as a text file.
func (h *AttendeeHandler) Export(c echo.Context) error {
	if _, err := h.applyQuery(c); err != nil {
		return err
	}

	name, content, err := h.console.ExportText(h.now())
	if err != nil {
		if errors.Is(err, service.ErrNothingToExport) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, service.ExportContentType, []byte(content))
}

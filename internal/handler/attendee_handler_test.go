package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Eursukkul/eventosu/internal/dto"
	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock AttendeeConsole ---

type mockConsole struct {
	filters []service.ConsoleFilter
	page    int

	initFn   func(ctx context.Context) error
	lookupFn func(ctx context.Context, id string) (models.FlatAttendee, error)
	cycleFn  func(ctx context.Context, id string) (models.FlatAttendee, error)
	deleteFn func(ctx context.Context, id string, confirm service.Confirmer) error
	exportFn func(now time.Time) (string, string, error)
}

func (m *mockConsole) Initialize(ctx context.Context) error { return m.initFn(ctx) }
func (m *mockConsole) Filter(f service.ConsoleFilter)       { m.filters = append(m.filters, f) }
func (m *mockConsole) GoToPage(n int)                        { m.page = n }
func (m *mockConsole) Render() service.ConsolePage {
	return service.ConsolePage{Rows: []service.ConsoleRow{}, Page: max(m.page, 1), CountCaption: "0 asistentes"}
}
func (m *mockConsole) Events() []service.EventSummary {
	return []service.EventSummary{{ID: "evento1", Name: "Taller de Ciberseguridad", Capacity: 15}}
}
func (m *mockConsole) Lookup(ctx context.Context, id string) (models.FlatAttendee, error) {
	return m.lookupFn(ctx, id)
}
func (m *mockConsole) CycleStatus(ctx context.Context, id string) (models.FlatAttendee, error) {
	return m.cycleFn(ctx, id)
}
func (m *mockConsole) DeleteAttendee(ctx context.Context, id string, confirm service.Confirmer) error {
	return m.deleteFn(ctx, id, confirm)
}
func (m *mockConsole) ExportText(now time.Time) (string, string, error) { return m.exportFn(now) }

var beto = models.FlatAttendee{
	Attendee:  models.Attendee{ID: "a2", Name: "Beto", Email: "beto@x.com", Status: models.StatusPending},
	EventID:   "evento1",
	EventName: "Taller de Ciberseguridad",
}

func attendeeContext(method, target, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

// --- Tests ---

func TestListAttendees_Handler_AppliesQuery(t *testing.T) {
	console := &mockConsole{}
	c, rec := attendeeContext(http.MethodGet, "/api/v1/attendees?event=evento1&status=Pendiente&q=beto&page=2", "")

	err := NewAttendeeHandler(console).ListAttendees(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []service.ConsoleFilter{{EventID: "evento1", Status: models.StatusPending, Search: "beto"}}, console.filters)
	assert.Equal(t, 2, console.page)

	var resp service.ConsolePage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
}

func TestListAttendees_Handler_InvalidStatus(t *testing.T) {
	console := &mockConsole{}
	c, _ := attendeeContext(http.MethodGet, "/api/v1/attendees?status=Archived", "")

	err := NewAttendeeHandler(console).ListAttendees(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Empty(t, console.filters)
}

func TestListAttendeeEvents_Handler(t *testing.T) {
	c, rec := attendeeContext(http.MethodGet, "/api/v1/attendees/events", "")

	err := NewAttendeeHandler(&mockConsole{}).ListEvents(c)

	assert.NoError(t, err)
	var resp []service.EventSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestReload_Handler(t *testing.T) {
	calls := 0
	console := &mockConsole{initFn: func(ctx context.Context) error { calls++; return nil }}
	c, rec := attendeeContext(http.MethodPost, "/api/v1/attendees/reload", "")

	err := NewAttendeeHandler(console).Reload(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestCycleStatus_Handler(t *testing.T) {
	console := &mockConsole{
		cycleFn: func(ctx context.Context, id string) (models.FlatAttendee, error) {
			a := beto
			a.Status = a.Status.Next()
			return a, nil
		},
	}
	c, rec := attendeeContext(http.MethodPost, "/api/v1/attendees/a2/status", "a2")

	err := NewAttendeeHandler(console).CycleStatus(c)

	assert.NoError(t, err)
	var resp dto.AttendeeResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCancelled, resp.Status)
	assert.Equal(t, "bg-danger", resp.StatusClass)
}

func TestCycleStatus_Handler_NotFound(t *testing.T) {
	console := &mockConsole{
		cycleFn: func(ctx context.Context, id string) (models.FlatAttendee, error) {
			return models.FlatAttendee{}, service.ErrAttendeeNotFound
		},
	}
	c, _ := attendeeContext(http.MethodPost, "/api/v1/attendees/zz/status", "zz")

	err := NewAttendeeHandler(console).CycleStatus(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func deletingConsole() *mockConsole {
	return &mockConsole{
		lookupFn: func(ctx context.Context, id string) (models.FlatAttendee, error) {
			if id != beto.ID {
				return models.FlatAttendee{}, service.ErrAttendeeNotFound
			}
			return beto, nil
		},
		deleteFn: func(ctx context.Context, id string, confirm service.Confirmer) error {
			if !confirm("prompt") {
				return service.ErrDeleteNotConfirmed
			}
			return nil
		},
	}
}

func TestDeleteAttendee_Handler_Confirmed(t *testing.T) {
	c, rec := attendeeContext(http.MethodDelete, "/api/v1/attendees/a2?confirm=true", "a2")

	err := NewAttendeeHandler(deletingConsole()).DeleteAttendee(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteAttendee_Handler_NeedsConfirmation(t *testing.T) {
	c, _ := attendeeContext(http.MethodDelete, "/api/v1/attendees/a2", "a2")

	err := NewAttendeeHandler(deletingConsole()).DeleteAttendee(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusPreconditionRequired, he.Code)
	assert.Equal(t, "¿Está seguro de que desea eliminar a Beto del evento Taller de Ciberseguridad?", he.Message)
}

func TestDeleteAttendee_Handler_NotFound(t *testing.T) {
	c, _ := attendeeContext(http.MethodDelete, "/api/v1/attendees/zz?confirm=true", "zz")

	err := NewAttendeeHandler(deletingConsole()).DeleteAttendee(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestExport_Handler(t *testing.T) {
	at := time.Date(2025, 9, 3, 8, 0, 0, 0, time.UTC)
	console := &mockConsole{
		exportFn: func(now time.Time) (string, string, error) {
			assert.Equal(t, at, now)
			return service.ExportFilename, "Lista de Asistentes - EventosU\n", nil
		},
	}
	h := NewAttendeeHandler(console)
	h.now = func() time.Time { return at }
	c, rec := attendeeContext(http.MethodGet, "/api/v1/attendees/export?event=evento1", "")

	err := h.Export(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="asistentes_eventosu.txt"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "Lista de Asistentes - EventosU\n", rec.Body.String())
	assert.Equal(t, "evento1", console.filters[0].EventID)
}

func TestExport_Handler_NothingToExport(t *testing.T) {
	console := &mockConsole{
		exportFn: func(now time.Time) (string, string, error) {
			return "", "", service.ErrNothingToExport
		},
	}
	c, _ := attendeeContext(http.MethodGet, "/api/v1/attendees/export", "")

	err := NewAttendeeHandler(console).Export(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestExport_Handler_StoreFailure(t *testing.T) {
	console := &mockConsole{
		exportFn: func(now time.Time) (string, string, error) {
			return "", "", errors.New("boom")
		},
	}
	c, _ := attendeeContext(http.MethodGet, "/api/v1/attendees/export", "")

	err := NewAttendeeHandler(console).Export(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}

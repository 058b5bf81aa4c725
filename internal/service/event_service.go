package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/repository"
)

type EventService interface {
	EnsureSeeded(ctx context.Context) error
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	Render(events []models.Event) CatalogView
	ApplyFilters(ctx context.Context, filter EventFilter) (CatalogView, error)
	CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error)
	SyncEvent(ctx context.Context, event models.Event) error
	Subscribe(l Listener)
}

// EventFilter holds the catalog filters; empty fields are inactive.
type EventFilter struct {
	Type string
	Date string
	Text string
}

type CreateEventInput struct {
	Title       string
	Type        string
	Datetime    string
	Venue       string
	Capacity    int
	Description string
}

type EventCard struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Type        models.EventType `json:"type"`
	TypeLabel   string           `json:"type_label"`
	Datetime    string           `json:"datetime"`
	Date        string           `json:"date"`
	Venue       string           `json:"venue"`
	Capacity    int              `json:"capacity"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	CanRegister bool             `json:"can_register"`
	ActionLabel string           `json:"action_label"`
}

type CatalogView struct {
	Events  []EventCard `json:"events"`
	Empty   bool        `json:"empty"`
	Title   string      `json:"title,omitempty"`
	Message string      `json:"message,omitempty"`
}

type eventService struct {
	repo      repository.EventRepository
	publisher EventPublisher
	loc       *time.Location
	now       func() time.Time
	listeners listeners
}

func NewEventService(repo repository.EventRepository, publisher EventPublisher, loc *time.Location) EventService {
	if loc == nil {
		loc = time.Local
	}
	return &eventService{repo: repo, publisher: publisher, loc: loc, now: time.Now}
}

func (s *eventService) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// EnsureSeeded writes every seed event whose id is not stored yet.
func (s *eventService) EnsureSeeded(ctx context.Context) error {
	return s.repo.Update(ctx, func(set *models.EventSet) error {
		for _, seed := range SeedEvents() {
			if _, ok := set.Get(seed.ID); !ok {
				set.Put(seed)
			}
		}
		return nil
	})
}

// GetAllEvents lists seed events first (stored versions win), then the
// stored events that are not seeds, in document order.
func (s *eventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	set, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	seeds := SeedEvents()
	isSeed := make(map[string]bool, len(seeds))
	out := make([]models.Event, 0, len(seeds)+set.Len())
	for _, seed := range seeds {
		isSeed[seed.ID] = true
		if ev, ok := set.Get(seed.ID); ok {
			out = append(out, ev.Clone())
			continue
		}
		out = append(out, seed)
	}
	for _, ev := range set.Events() {
		if !isSeed[ev.ID] {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	set, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ev, ok := set.Get(id); ok {
		out := ev.Clone()
		return &out, nil
	}
	if seed, ok := seedByID(id); ok {
		return &seed, nil
	}
	return nil, ErrEventNotFound
}

func (s *eventService) Render(events []models.Event) CatalogView {
	if len(events) == 0 {
		return CatalogView{
			Events:  []EventCard{},
			Empty:   true,
			Title:   "No se encontraron eventos",
			Message: "Intenta con otros términos de búsqueda o ajusta los filtros.",
		}
	}

	cards := make([]EventCard, len(events))
	for i := range events {
		cards[i] = s.card(&events[i])
	}
	return CatalogView{Events: cards}
}

func (s *eventService) card(ev *models.Event) EventCard {
	c := EventCard{
		ID:          ev.ID,
		Title:       ev.Title,
		Type:        ev.Type,
		TypeLabel:   ev.Type.Label(),
		Datetime:    ev.Datetime,
		Date:        displayDate(ev.Datetime, s.loc),
		Venue:       ev.Venue,
		Capacity:    ev.Capacity,
		Description: ev.Description,
		Image:       cardImage(ev.Type),
		CanRegister: ev.Capacity > 0,
		ActionLabel: "Inscribirme",
	}
	if !c.CanRegister {
		c.ActionLabel = "Cupos Completos"
	}
	return c
}

func cardImage(t models.EventType) string {
	switch t {
	case models.EventTypeConferencia, models.EventTypeCongreso:
		return "img/taller2.jpg"
	case models.EventTypeCurso:
		return "img/taller3.jpg"
	default:
		return "img/taller1.jpg"
	}
}

// ApplyFilters renders the events passing every active filter. The type
// filter is an exact match on the type key.
func (s *eventService) ApplyFilters(ctx context.Context, f EventFilter) (CatalogView, error) {
	all, err := s.GetAllEvents(ctx)
	if err != nil {
		return CatalogView{}, err
	}

	typeFilter := strings.ToLower(strings.TrimSpace(f.Type))
	dateFilter := normalizeDate(f.Date, s.loc)
	text := strings.TrimSpace(f.Text)

	filtered := make([]models.Event, 0, len(all))
	for _, ev := range all {
		if typeFilter != "" && strings.ToLower(string(ev.Type)) != typeFilter {
			continue
		}
		if strings.TrimSpace(f.Date) != "" {
			evDate := normalizeDate(ev.Datetime, s.loc)
			if evDate == "" || evDate != dateFilter {
				continue
			}
		}
		if text != "" && !containsFold(ev.Title, text) && !containsFold(ev.Venue, text) &&
			!containsFold(string(ev.Type), text) && !containsFold(ev.Type.Label(), text) {
			continue
		}
		filtered = append(filtered, ev)
	}
	return s.Render(filtered), nil
}

func (s *eventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	now := s.now()
	if err := s.validate(in, now); err != nil {
		return nil, err
	}

	ev := models.Event{
		Title:       strings.TrimSpace(in.Title),
		Type:        models.EventType(strings.TrimSpace(in.Type)),
		Datetime:    strings.TrimSpace(in.Datetime),
		Venue:       strings.TrimSpace(in.Venue),
		Capacity:    in.Capacity,
		Description: strings.TrimSpace(in.Description),
		Attendees:   []models.Attendee{},
		CreatedAt:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	err := s.repo.Update(ctx, func(set *models.EventSet) error {
		ev.ID = nextEventID(set, now)
		set.Put(ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.listeners.eventSaved(ev)
	publish(s.publisher, RoutingEventCreated, ev)
	return &ev, nil
}

func (s *eventService) validate(in CreateEventInput, now time.Time) error {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Title) == "" {
		verr.add("title", "El título es obligatorio")
	}

	switch t := models.EventType(strings.TrimSpace(in.Type)); {
	case t == "":
		verr.add("type", "Debe seleccionar un tipo de evento")
	case !t.Known():
		verr.add("type", "Tipo de evento no válido")
	}

	if strings.TrimSpace(in.Datetime) == "" {
		verr.add("datetime", "La fecha es obligatoria")
	} else if at, ok := parseDatetime(in.Datetime, s.loc); !ok {
		verr.add("datetime", "Formato de fecha no válido")
	} else if !at.After(now) {
		verr.add("datetime", "La fecha debe ser futura")
	}

	if strings.TrimSpace(in.Venue) == "" {
		verr.add("venue", "La sede es obligatoria")
	}
	if in.Capacity < 1 {
		verr.add("capacity", "El cupo debe ser al menos 1")
	}
	if strings.TrimSpace(in.Description) == "" {
		verr.add("description", "La descripción es obligatoria")
	}

	return verr.errOrNil()
}

// nextEventID derives the id from the creation time, skipping taken ids.
func nextEventID(set *models.EventSet, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := "evento" + strconv.FormatInt(ms, 10)
		if _, taken := set.Get(id); !taken {
			return id
		}
		ms++
	}
}

// SyncEvent imports an event announced by another service. Known events only
// get their descriptive fields refreshed; attendees and capacity stay local.
func (s *eventService) SyncEvent(ctx context.Context, in models.Event) error {
	if strings.TrimSpace(in.ID) == "" {
		return &ValidationError{Fields: map[string]string{"id": "El identificador es obligatorio"}}
	}

	var saved models.Event
	err := s.repo.Update(ctx, func(set *models.EventSet) error {
		if ev, ok := set.Get(in.ID); ok {
			ev.Title = in.Title
			ev.Type = in.Type
			ev.Datetime = in.Datetime
			ev.Venue = in.Venue
			ev.Description = in.Description
			saved = ev.Clone()
			return nil
		}
		if in.Attendees == nil {
			in.Attendees = []models.Attendee{}
		}
		set.Put(in)
		saved = in.Clone()
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync event %s: %w", in.ID, err)
	}

	s.listeners.eventSaved(saved)
	return nil
}

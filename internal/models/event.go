package models

import "strings"

type EventType string

const (
	EventTypeTaller      EventType = "taller"
	EventTypeConferencia EventType = "conferencia"
	EventTypeCurso       EventType = "curso"
	EventTypeCongreso    EventType = "congreso"
)

var eventTypeLabels = map[EventType]string{
	EventTypeConferencia: "Conferencia",
	EventTypeTaller:      "Taller",
	EventTypeCurso:       "Curso",
	EventTypeCongreso:    "Congreso",
}

// Label is the display name of the type; unknown types label as themselves.
func (t EventType) Label() string {
	if l, ok := eventTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t EventType) Known() bool {
	_, ok := eventTypeLabels[t]
	return ok
}

// Event is one entry of the persisted events document. Capacity holds the
// remaining open slots, not the original size of the event.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        EventType  `json:"type"`
	Datetime    string     `json:"datetime"`
	Venue       string     `json:"venue"`
	Capacity    int        `json:"capacity"`
	Description string     `json:"description"`
	Attendees   []Attendee `json:"attendees"`
	CreatedAt   string     `json:"createdAt,omitempty"`
}

// DisplayName is the label used for the event in attendee listings.
func (e *Event) DisplayName() string {
	if strings.TrimSpace(e.Title) != "" {
		return e.Title
	}
	return "Evento " + e.ID
}

// HasEmail reports whether an attendee with the given email is already registered.
func (e *Event) HasEmail(email string) bool {
	email = strings.TrimSpace(email)
	for _, a := range e.Attendees {
		if strings.EqualFold(strings.TrimSpace(a.Email), email) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no attendee storage with e.
func (e Event) Clone() Event {
	out := e
	out.Attendees = make([]Attendee, len(e.Attendees))
	copy(out.Attendees, e.Attendees)
	return out
}

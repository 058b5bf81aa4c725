package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var ErrMalformedDocument = errors.New("malformed events document")

// EventSet is the events document: event id -> event, in insertion order.
// Replacing an existing id keeps its position; new ids go to the end.
type EventSet struct {
	order []string
	byID  map[string]*Event
}

func NewEventSet() *EventSet {
	return &EventSet{byID: make(map[string]*Event)}
}

func (s *EventSet) Len() int { return len(s.order) }

func (s *EventSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the stored event; mutations through the pointer are kept.
func (s *EventSet) Get(id string) (*Event, bool) {
	e, ok := s.byID[id]
	return e, ok
}

func (s *EventSet) Put(e Event) {
	if _, ok := s.byID[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	ev := e
	s.byID[e.ID] = &ev
}

// Events returns copies of all events in document order.
func (s *EventSet) Events() []Event {
	out := make([]Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// DecodeEventSet parses a stored document. Field names written by the first
// browser version of the app (titulo, cupo, asistentes...) are accepted when
// the current name is missing. Entries that are not objects are skipped.
func DecodeEventSet(body string) (*EventSet, error) {
	set := NewEventSet()
	if strings.TrimSpace(body) == "" {
		return set, nil
	}
	if !gjson.Valid(body) {
		return nil, ErrMalformedDocument
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return nil, ErrMalformedDocument
	}

	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		set.Put(decodeEvent(key.String(), value))
		return true
	})
	return set, nil
}

// Encode serialises the set as a JSON object keeping document order.
func (s *EventSet) Encode() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return "", fmt.Errorf("encode event id %q: %w", id, err)
		}
		ev := s.byID[id]
		if ev.Attendees == nil {
			ev.Attendees = []Attendee{}
		}
		raw, err := json.Marshal(ev)
		if err != nil {
			return "", fmt.Errorf("encode event %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

func decodeEvent(key string, v gjson.Result) Event {
	ev := Event{
		ID:          key,
		Title:       field(v, "title", "titulo"),
		Type:        EventType(field(v, "type", "tipo")),
		Datetime:    field(v, "datetime", "fecha"),
		Venue:       field(v, "venue", "sede"),
		Capacity:    int(fieldResult(v, "capacity", "cupo").Int()),
		Description: field(v, "description", "descripcion"),
		CreatedAt:   field(v, "createdAt", "fechaCreacion"),
		Attendees:   []Attendee{},
	}

	fieldResult(v, "attendees", "asistentes").ForEach(func(_, a gjson.Result) bool {
		if !a.IsObject() {
			return true
		}
		att := Attendee{
			ID:     field(a, "id"),
			Name:   field(a, "name", "nombre"),
			Email:  field(a, "email"),
			Phone:  field(a, "phone", "telefono"),
			Status: ParseStatus(field(a, "status", "estado")),
		}
		if att.ID == "" {
			att.ID = LegacyAttendeeID(ev.ID, att.Email)
		}
		ev.Attendees = append(ev.Attendees, att)
		return true
	})
	return ev
}

// LegacyAttendeeID derives a stable id for attendees stored before ids existed,
// so repeated loads of the same document agree on it.
func LegacyAttendeeID(eventID, email string) string {
	name := "eventosu:" + eventID + ":" + strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func fieldResult(v gjson.Result, names ...string) gjson.Result {
	for _, n := range names {
		if r := v.Get(n); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func field(v gjson.Result, names ...string) string {
	return fieldResult(v, names...).String()
}

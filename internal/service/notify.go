package service

import (
	"log"

	"github.com/Eursukkul/eventosu/internal/models"
)

const (
	RoutingEventCreated          = "event.created"
	RoutingAttendeeRegistered    = "attendee.registered"
	RoutingAttendeeStatusChanged = "attendee.status_changed"
	RoutingAttendeeDeleted       = "attendee.deleted"
)

// EventPublisher is satisfied by *rabbitmq.Publisher. A nil publisher disables notifications.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// AttendeeMessage is the payload of the attendee.* notifications.
type AttendeeMessage struct {
	EventID  string          `json:"event_id"`
	Attendee models.Attendee `json:"attendee"`
	Capacity int             `json:"capacity"`
}

// Listener is told about store writes made outside the attendee console so
// in-memory views can follow them.
type Listener interface {
	EventSaved(event models.Event)
	AttendeeRegistered(event models.Event, attendee models.Attendee)
}

type listeners []Listener

func (ls listeners) eventSaved(ev models.Event) {
	for _, l := range ls {
		l.EventSaved(ev.Clone())
	}
}

func (ls listeners) attendeeRegistered(ev models.Event, a models.Attendee) {
	for _, l := range ls {
		l.AttendeeRegistered(ev.Clone(), a)
	}
}

func publish(p EventPublisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("[Notify] failed to publish %s: %v", routingKey, err)
	}
}

package service

import "github.com/Eursukkul/eventosu/internal/models"

// SeedEvents are always part of the catalog. A stored event with the same id
// overrides the seed definition.
func SeedEvents() []models.Event {
	return []models.Event{
		{
			ID:          "evento1",
			Title:       "Taller de Ciberseguridad",
			Type:        models.EventTypeTaller,
			Datetime:    "2025-09-18T10:00:00",
			Venue:       "Aula Magna FCC",
			Capacity:    15,
			Description: "Taller sobre ciberseguridad",
			Attendees:   []models.Attendee{},
		},
		{
			ID:          "evento2",
			Title:       "Conferencia de Inteligencia Artificial",
			Type:        models.EventTypeConferencia,
			Datetime:    "2025-09-20T10:00:00",
			Venue:       "Auditorio Principal",
			Capacity:    0,
			Description: "Conferencia sobre IA",
			Attendees:   []models.Attendee{},
		},
		{
			ID:          "evento3",
			Title:       "Curso de Desarrollo Web",
			Type:        models.EventTypeCurso,
			Datetime:    "2025-09-25T10:00:00",
			Venue:       "Laboratorio de Computación 3",
			Capacity:    8,
			Description: "Curso de desarrollo web",
			Attendees:   []models.Attendee{},
		},
	}
}

func seedByID(id string) (models.Event, bool) {
	for _, ev := range SeedEvents() {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.Event{}, false
}

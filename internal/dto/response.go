package dto

import "github.com/Eursukkul/eventosu/internal/models"

type ErrorResponse struct {
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type AttendeeResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone"`
	EventID     string                `json:"event_id"`
	EventName   string                `json:"event_name"`
	Status      models.AttendeeStatus `json:"status"`
	StatusClass string                `json:"status_class"`
}

func ToAttendeeResponse(a models.FlatAttendee) AttendeeResponse {
	return AttendeeResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		EventID:     a.EventID,
		EventName:   a.EventName,
		Status:      a.Status,
		StatusClass: a.Status.BadgeClass(),
	}
}

package dto

type CreateEventRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Datetime    string `json:"datetime"`
	Venue       string `json:"venue"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// AttendeeQuery is bound from the query string of the attendee listing and export.
type AttendeeQuery struct {
	Event  string `query:"event"`
	Status string `query:"status"`
	Search string `query:"q"`
	Page   int    `query:"page"`
}

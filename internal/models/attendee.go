package models

type AttendeeStatus string

const (
	StatusConfirmed AttendeeStatus = "Confirmed"
	StatusPending   AttendeeStatus = "Pending"
	StatusCancelled AttendeeStatus = "Cancelled"
)

var statusCycle = []AttendeeStatus{StatusConfirmed, StatusPending, StatusCancelled}

var legacyStatuses = map[string]AttendeeStatus{
	"Confirmado": StatusConfirmed,
	"Pendiente":  StatusPending,
	"Cancelado":  StatusCancelled,
}

// ParseStatus maps a stored value to a status. Empty values default to Confirmed.
func ParseStatus(s string) AttendeeStatus {
	if s == "" {
		return StatusConfirmed
	}
	if st, ok := legacyStatuses[s]; ok {
		return st
	}
	return AttendeeStatus(s)
}

func (s AttendeeStatus) Valid() bool {
	for _, st := range statusCycle {
		if st == s {
			return true
		}
	}
	return false
}

// Next advances Confirmed -> Pending -> Cancelled -> Confirmed.
// A status outside the cycle moves to Confirmed.
func (s AttendeeStatus) Next() AttendeeStatus {
	idx := -1
	for i, st := range statusCycle {
		if st == s {
			idx = i
			break
		}
	}
	return statusCycle[(idx+1)%len(statusCycle)]
}

// BadgeClass is the CSS class of the status badge shown in the attendee table.
func (s AttendeeStatus) BadgeClass() string {
	switch s {
	case StatusConfirmed:
		return "bg-success"
	case StatusPending:
		return "bg-warning text-dark"
	case StatusCancelled:
		return "bg-danger"
	default:
		return "bg-secondary"
	}
}

type Attendee struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Phone  string         `json:"phone"`
	Status AttendeeStatus `json:"status"`
}

// FlatAttendee is an attendee joined with the event it belongs to. It only
// lives in the attendee console and is folded back into events on persist.
type FlatAttendee struct {
	Attendee
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
}

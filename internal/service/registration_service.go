package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/repository"
	"github.com/google/uuid"
)

type RegistrationService interface {
	Register(ctx context.Context, eventID string, in RegisterInput) (*RegistrationResult, error)
	Subscribe(l Listener)
}

type RegisterInput struct {
	Name  string
	Email string
	Phone string
}

// RegistrationResult carries what the catalog needs to refresh the event card.
type RegistrationResult struct {
	EventID     string          `json:"event_id"`
	Attendee    models.Attendee `json:"attendee"`
	Capacity    int             `json:"capacity"`
	CanRegister bool            `json:"can_register"`
}

type registrationService struct {
	repo      repository.EventRepository
	publisher EventPublisher
	listeners listeners
}

func NewRegistrationService(repo repository.EventRepository, publisher EventPublisher) RegistrationService {
	return &registrationService{repo: repo, publisher: publisher}
}

func (s *registrationService) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Register appends an attendee and takes one slot. Checks run in order: the
// event must exist (stored, or a seed), the email must be new for the event,
// and a slot must remain. Any failure leaves the store untouched.
func (s *registrationService) Register(ctx context.Context, eventID string, in RegisterInput) (*RegistrationResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	attendee := models.Attendee{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Status: models.StatusConfirmed,
	}

	var updated models.Event
	err := s.repo.Update(ctx, func(set *models.EventSet) error {
		ev, ok := set.Get(eventID)
		if !ok {
			seed, found := seedByID(eventID)
			if !found {
				return ErrEventNotFound
			}
			set.Put(seed)
			ev, _ = set.Get(eventID)
		}

		if ev.HasEmail(in.Email) {
			return ErrAlreadyRegistered
		}
		if ev.Capacity <= 0 {
			return ErrNoCapacity
		}

		ev.Attendees = append(ev.Attendees, attendee)
		ev.Capacity--
		updated = ev.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrNoCapacity) {
			return nil, err
		}
		return nil, fmt.Errorf("register attendee: %w", err)
	}

	s.listeners.attendeeRegistered(updated, attendee)
	publish(s.publisher, RoutingAttendeeRegistered, AttendeeMessage{
		EventID:  updated.ID,
		Attendee: attendee,
		Capacity: updated.Capacity,
	})

	return &RegistrationResult{
		EventID:     updated.ID,
		Attendee:    attendee,
		Capacity:    updated.Capacity,
		CanRegister: updated.Capacity > 0,
	}, nil
}

func validateRegistration(in RegisterInput) error {
	verr := &ValidationError{}
	if in.Name == "" {
		verr.add("name", "El nombre es obligatorio")
	}
	if in.Email == "" {
		verr.add("email", "El correo es obligatorio")
	} else if !isValidEmail(in.Email) {
		verr.add("email", "El correo no es válido")
	}
	return verr.errOrNil()
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

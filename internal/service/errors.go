package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrNoCapacity         = errors.New("no capacity remaining")
	ErrAttendeeNotFound   = errors.New("attendee not found")
	ErrDeleteNotConfirmed = errors.New("deletion not confirmed")
	ErrNothingToExport    = errors.New("no attendees to export")
)

// ValidationError collects per-field messages so a form can show all of them at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "invalid input: " + strings.Join(names, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Eursukkul/eventosu/internal/models"
)

// EventsKey is the document key holding every event.
const EventsKey = "events"

type EventRepository interface {
	Load(ctx context.Context) (*models.EventSet, error)
	Save(ctx context.Context, set *models.EventSet) error
	// Update loads the document, applies fn and saves it unless fn fails.
	// Calls are serialized within the process.
	Update(ctx context.Context, fn func(set *models.EventSet) error) error
}

type eventRepository struct {
	docs DocumentRepository
	mu   sync.Mutex
}

func NewEventRepository(docs DocumentRepository) EventRepository {
	return &eventRepository{docs: docs}
}

// Load treats a missing or malformed document as an empty catalog.
func (r *eventRepository) Load(ctx context.Context) (*models.EventSet, error) {
	body, err := r.docs.Get(ctx, EventsKey)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return models.NewEventSet(), nil
		}
		return nil, fmt.Errorf("read events document: %w", err)
	}

	set, err := models.DecodeEventSet(body)
	if err != nil {
		log.Printf("[EventStore] ignoring unreadable events document: %v", err)
		return models.NewEventSet(), nil
	}
	return set, nil
}

func (r *eventRepository) Save(ctx context.Context, set *models.EventSet) error {
	body, err := set.Encode()
	if err != nil {
		return err
	}
	if err := r.docs.Put(ctx, EventsKey, body); err != nil {
		return fmt.Errorf("write events document: %w", err)
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, fn func(set *models.EventSet) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(set); err != nil {
		return err
	}
	return r.Save(ctx, set)
}

//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/repository"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends() map[string]func() repository.DocumentRepository {
	return map[string]func() repository.DocumentRepository{
		"postgres": func() repository.DocumentRepository { return repository.NewGormDocumentRepository(testDB) },
		"redis":    func() repository.DocumentRepository { return repository.NewRedisDocumentRepository(testRedis) },
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			cleanStores()
			docs := open()
			ctx := context.Background()

			_, err := docs.Get(ctx, repository.EventsKey)
			assert.ErrorIs(t, err, repository.ErrDocumentNotFound)

			require.NoError(t, docs.Put(ctx, repository.EventsKey, `{"a":1}`))
			require.NoError(t, docs.Put(ctx, repository.EventsKey, `{"b":2}`))

			body, err := docs.Get(ctx, repository.EventsKey)
			require.NoError(t, err)
			assert.Equal(t, `{"b":2}`, body)
		})
	}
}

// Test: 20 concurrent registrations against an event with 15 slots
// → exactly 15 stored attendees, capacity 0
func TestConcurrentRegistrations(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			cleanStores()
			repo := repository.NewEventRepository(open())
			svc := service.NewRegistrationService(repo, nil)

			var wg sync.WaitGroup
			errs := make(chan error, 20)
			wg.Add(20)
			for i := 0; i < 20; i++ {
				go func(i int) {
					defer wg.Done()
					_, err := svc.Register(context.Background(), "evento1", service.RegisterInput{
						Name:  fmt.Sprintf("User %d", i),
						Email: fmt.Sprintf("user%d@test.com", i),
					})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)

			full := 0
			for err := range errs {
				if err != nil {
					assert.ErrorIs(t, err, service.ErrNoCapacity)
					full++
				}
			}
			assert.Equal(t, 5, full)

			set, err := repo.Load(context.Background())
			require.NoError(t, err)
			ev, ok := set.Get("evento1")
			require.True(t, ok)
			assert.Equal(t, 0, ev.Capacity)
			assert.Len(t, ev.Attendees, 15)
		})
	}
}

func TestConsoleDeleteAgainstStore(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			cleanStores()
			ctx := context.Background()
			repo := repository.NewEventRepository(open())
			events := service.NewEventService(repo, nil, nil)
			reg := service.NewRegistrationService(repo, nil)
			console := service.NewAttendeeConsole(repo, nil)
			reg.Subscribe(console)

			require.NoError(t, events.EnsureSeeded(ctx))
			require.NoError(t, console.Initialize(ctx))
			res, err := reg.Register(ctx, "evento3", service.RegisterInput{Name: "Ana", Email: "a@x.com"})
			require.NoError(t, err)
			assert.Equal(t, 7, res.Capacity)

			require.NoError(t, console.DeleteAttendee(ctx, res.Attendee.ID, func(string) bool { return true }))

			set, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"evento1", "evento2", "evento3"}, set.IDs())
			ev, _ := set.Get("evento3")
			assert.Equal(t, 8, ev.Capacity)
			assert.Empty(t, ev.Attendees)
			assert.Equal(t, models.StatusConfirmed, res.Attendee.Status)
		})
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventSet_PreservesOrder(t *testing.T) {
	body := `{"evento9":{"id":"evento9","title":"Z"},"evento1":{"id":"evento1","title":"A"},"evento5":{"id":"evento5","title":"M"}}`

	set, err := DecodeEventSet(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"evento9", "evento1", "evento5"}, set.IDs())

	out, err := set.Encode()
	require.NoError(t, err)

	again, err := DecodeEventSet(out)
	require.NoError(t, err)
	assert.Equal(t, set.IDs(), again.IDs())
}

func TestDecodeEventSet_LegacyFieldNames(t *testing.T) {
	body := `{"evento1":{"id":"evento1","titulo":"Taller de Ciberseguridad","tipo":"taller","fecha":"2025-09-18T10:00:00","sede":"Aula Magna FCC","cupo":14,"descripcion":"Taller","asistentes":[{"nombre":"Ana","email":"a@x.com","telefono":"555","estado":"Pendiente"}]}}`

	set, err := DecodeEventSet(body)
	require.NoError(t, err)

	ev, ok := set.Get("evento1")
	require.True(t, ok)
	assert.Equal(t, "Taller de Ciberseguridad", ev.Title)
	assert.Equal(t, EventTypeTaller, ev.Type)
	assert.Equal(t, "2025-09-18T10:00:00", ev.Datetime)
	assert.Equal(t, "Aula Magna FCC", ev.Venue)
	assert.Equal(t, 14, ev.Capacity)
	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, "Ana", ev.Attendees[0].Name)
	assert.Equal(t, "555", ev.Attendees[0].Phone)
	assert.Equal(t, StatusPending, ev.Attendees[0].Status)
	assert.Equal(t, LegacyAttendeeID("evento1", "a@x.com"), ev.Attendees[0].ID)
}

func TestDecodeEventSet_DefaultsAndKeyAsID(t *testing.T) {
	body := `{"evento7":{"title":"Sin cupo","attendees":[{"id":"a1","name":"Luis","email":"l@x.com"}]},"bogus":42}`

	set, err := DecodeEventSet(body)
	require.NoError(t, err)

	assert.Equal(t, 1, set.Len())
	ev, _ := set.Get("evento7")
	assert.Equal(t, "evento7", ev.ID)
	assert.Equal(t, 0, ev.Capacity)
	assert.Equal(t, "a1", ev.Attendees[0].ID)
	assert.Equal(t, StatusConfirmed, ev.Attendees[0].Status)
}

func TestDecodeEventSet_Malformed(t *testing.T) {
	for _, body := range []string{`{"evento1":`, `[1,2,3]`, `"text"`} {
		_, err := DecodeEventSet(body)
		assert.ErrorIs(t, err, ErrMalformedDocument, body)
	}
}

func TestDecodeEventSet_Empty(t *testing.T) {
	set, err := DecodeEventSet("   ")

	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestEventSet_PutReplaceKeepsPosition(t *testing.T) {
	set := NewEventSet()
	set.Put(Event{ID: "a", Title: "first"})
	set.Put(Event{ID: "b"})
	set.Put(Event{ID: "a", Title: "second"})

	assert.Equal(t, []string{"a", "b"}, set.IDs())
	ev, _ := set.Get("a")
	assert.Equal(t, "second", ev.Title)
}

func TestEventSet_EncodeWritesEmptyAttendeeArray(t *testing.T) {
	set := NewEventSet()
	set.Put(Event{ID: "evento1", Capacity: 3})

	out, err := set.Encode()

	require.NoError(t, err)
	assert.Contains(t, out, `"attendees":[]`)
	assert.Contains(t, out, `"capacity":3`)
}

func TestEventSet_EventsAreCopies(t *testing.T) {
	set := NewEventSet()
	set.Put(Event{ID: "e", Attendees: []Attendee{{ID: "1", Name: "Ana"}}})

	events := set.Events()
	events[0].Attendees[0].Name = "changed"

	ev, _ := set.Get("e")
	assert.Equal(t, "Ana", ev.Attendees[0].Name)
}

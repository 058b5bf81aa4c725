package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/repository"
)

const DefaultPageSize = 5

type ConsoleFilter struct {
	EventID string
	Status  models.AttendeeStatus
	Search  string
}

type EventSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type ConsoleRow struct {
	Number      int                   `json:"number"`
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone"`
	EventID     string                `json:"event_id"`
	EventName   string                `json:"event_name"`
	Status      models.AttendeeStatus `json:"status"`
	StatusClass string                `json:"status_class"`
}

type ConsolePage struct {
	Rows         []ConsoleRow `json:"rows"`
	Empty        bool         `json:"empty"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	PageSize     int          `json:"page_size"`
	Total        int          `json:"total"`
	PrevEnabled  bool         `json:"prev_enabled"`
	NextEnabled  bool         `json:"next_enabled"`
	CountCaption string       `json:"count_caption"`
	CapacityInfo string       `json:"capacity_info"`
}

// Confirmer is asked before a destructive action; false aborts it.
type Confirmer func(prompt string) bool

// AttendeeConsole is the working copy behind the attendee table: every
// attendee of every event flattened into one list, the filtered view and the
// current page. Mutations are written back to the events document.
type AttendeeConsole struct {
	repo      repository.EventRepository
	publisher EventPublisher

	mu          sync.Mutex
	initialized bool
	seen        map[string]struct{}
	all         []models.FlatAttendee
	filtered    []models.FlatAttendee
	events      []EventSummary
	filter      ConsoleFilter
	page        int
	pageSize    int
}

func NewAttendeeConsole(repo repository.EventRepository, publisher EventPublisher) *AttendeeConsole {
	return &AttendeeConsole{
		repo:      repo,
		publisher: publisher,
		seen:      map[string]struct{}{},
		page:      1,
		pageSize:  DefaultPageSize,
	}
}

// Initialize rebuilds the working copy from the store and clears the filter.
func (c *AttendeeConsole) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initializeLocked(ctx)
}

func (c *AttendeeConsole) initializeLocked(ctx context.Context) error {
	set, err := c.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load attendees: %w", err)
	}

	c.all = c.all[:0]
	c.events = c.events[:0]
	c.seen = map[string]struct{}{}
	for _, ev := range set.Events() {
		c.events = append(c.events, EventSummary{ID: ev.ID, Name: ev.DisplayName(), Capacity: ev.Capacity})
		for _, a := range ev.Attendees {
			c.addLocked(flatten(ev, a))
		}
	}

	c.filter = ConsoleFilter{}
	c.filtered = append([]models.FlatAttendee(nil), c.all...)
	c.page = 1
	c.initialized = true
	return nil
}

func (c *AttendeeConsole) ensureInitialized(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	return c.initializeLocked(ctx)
}

// Filter recomputes the view from the full list and goes back to page 1.
func (c *AttendeeConsole) Filter(f ConsoleFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.applyFilterLocked()
	c.page = 1
}

func (c *AttendeeConsole) applyFilterLocked() {
	f := c.filter
	out := make([]models.FlatAttendee, 0, len(c.all))
	for _, a := range c.all {
		if f.EventID != "" && a.EventID != f.EventID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Search != "" && !containsFold(a.Name, f.Search) && !containsFold(a.Email, f.Search) {
			continue
		}
		out = append(out, a)
	}
	c.filtered = out
}

func (c *AttendeeConsole) totalPagesLocked() int {
	return (len(c.filtered) + c.pageSize - 1) / c.pageSize
}

func (c *AttendeeConsole) clampPageLocked() {
	if total := c.totalPagesLocked(); c.page > total {
		c.page = total
	}
	if c.page < 1 {
		c.page = 1
	}
}

func (c *AttendeeConsole) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page < c.totalPagesLocked() {
		c.page++
	}
}

func (c *AttendeeConsole) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
}

// GoToPage moves to page n, clamped to the available pages.
func (c *AttendeeConsole) GoToPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = n
	c.clampPageLocked()
}

func (c *AttendeeConsole) Events() []EventSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]EventSummary(nil), c.events...)
}

func (c *AttendeeConsole) Render() ConsolePage {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := len(c.filtered)
	pages := c.totalPagesLocked()
	p := ConsolePage{
		Rows:         []ConsoleRow{},
		Empty:        total == 0,
		Page:         c.page,
		TotalPages:   pages,
		PageSize:     c.pageSize,
		Total:        total,
		PrevEnabled:  c.page > 1,
		NextEnabled:  pages > 0 && c.page < pages,
		CountCaption: fmt.Sprintf("%d asistentes", total),
		CapacityInfo: c.capacityInfoLocked(),
	}

	start := (c.page - 1) * c.pageSize
	end := min(start+c.pageSize, total)
	for i := start; i < end; i++ {
		a := c.filtered[i]
		p.Rows = append(p.Rows, ConsoleRow{
			Number:      i + 1,
			ID:          a.ID,
			Name:        a.Name,
			Email:       a.Email,
			Phone:       a.Phone,
			EventID:     a.EventID,
			EventName:   a.EventName,
			Status:      a.Status,
			StatusClass: a.Status.BadgeClass(),
		})
	}
	return p
}

func (c *AttendeeConsole) capacityInfoLocked() string {
	if len(c.filtered) == 0 {
		return "No hay asistentes para mostrar"
	}
	if id := c.filter.EventID; id != "" {
		if sum, ok := c.summaryLocked(id); ok {
			confirmed := 0
			for _, a := range c.filtered {
				if a.EventID == id && a.Status == models.StatusConfirmed {
					confirmed++
				}
			}
			return fmt.Sprintf("Evento con %d cupos totales. Quedan %d disponibles.", sum.Capacity+confirmed, sum.Capacity)
		}
	}
	return fmt.Sprintf("Mostrando %d asistentes de todos los eventos", len(c.filtered))
}

func (c *AttendeeConsole) summaryLocked(id string) (*EventSummary, bool) {
	for i := range c.events {
		if c.events[i].ID == id {
			return &c.events[i], true
		}
	}
	return nil, false
}

func indexByID(list []models.FlatAttendee, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *AttendeeConsole) idAtLocked(index int) (string, error) {
	if index < 0 || index >= len(c.filtered) {
		return "", ErrAttendeeNotFound
	}
	return c.filtered[index].ID, nil
}

// CycleStatus moves the attendee to the next status and persists it.
func (c *AttendeeConsole) CycleStatus(ctx context.Context, attendeeID string) (models.FlatAttendee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return models.FlatAttendee{}, err
	}
	return c.cycleStatusLocked(ctx, attendeeID)
}

// CycleStatusAt is CycleStatus addressed by position in the filtered view.
func (c *AttendeeConsole) CycleStatusAt(ctx context.Context, index int) (models.FlatAttendee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return models.FlatAttendee{}, err
	}
	id, err := c.idAtLocked(index)
	if err != nil {
		return models.FlatAttendee{}, err
	}
	return c.cycleStatusLocked(ctx, id)
}

func (c *AttendeeConsole) cycleStatusLocked(ctx context.Context, id string) (models.FlatAttendee, error) {
	i := indexByID(c.all, id)
	if i < 0 {
		return models.FlatAttendee{}, ErrAttendeeNotFound
	}

	prev := c.all[i].Status
	next := prev.Next()
	c.all[i].Status = next
	stored, err := c.persistLocked(ctx, c.all, nil)
	if err != nil {
		c.all[i].Status = prev
		return models.FlatAttendee{}, err
	}
	if j := indexByID(c.filtered, id); j >= 0 {
		c.filtered[j].Status = next
	}

	updated := c.all[i]
	c.catchUpLocked(stored)
	publish(c.publisher, RoutingAttendeeStatusChanged, AttendeeMessage{
		EventID:  updated.EventID,
		Attendee: updated.Attendee,
		Capacity: c.capacityOfLocked(updated.EventID),
	})
	return updated, nil
}

// DeleteAttendee removes the attendee after confirmation and gives the slot
// back to the event.
func (c *AttendeeConsole) DeleteAttendee(ctx context.Context, attendeeID string, confirm Confirmer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return err
	}
	return c.deleteLocked(ctx, attendeeID, confirm)
}

// DeleteAttendeeAt is DeleteAttendee addressed by position in the filtered view.
func (c *AttendeeConsole) DeleteAttendeeAt(ctx context.Context, index int, confirm Confirmer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return err
	}
	id, err := c.idAtLocked(index)
	if err != nil {
		return err
	}
	return c.deleteLocked(ctx, id, confirm)
}

// DeletePrompt is the confirmation question for removing an attendee.
func DeletePrompt(a models.FlatAttendee) string {
	return fmt.Sprintf("¿Está seguro de que desea eliminar a %s del evento %s?", a.Name, a.EventName)
}

// Lookup returns the attendee with the given id from the working copy.
func (c *AttendeeConsole) Lookup(ctx context.Context, attendeeID string) (models.FlatAttendee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return models.FlatAttendee{}, err
	}
	i := indexByID(c.all, attendeeID)
	if i < 0 {
		return models.FlatAttendee{}, ErrAttendeeNotFound
	}
	return c.all[i], nil
}

func (c *AttendeeConsole) deleteLocked(ctx context.Context, id string, confirm Confirmer) error {
	i := indexByID(c.all, id)
	if i < 0 {
		return ErrAttendeeNotFound
	}
	target := c.all[i]
	if confirm == nil || !confirm(DeletePrompt(target)) {
		return ErrDeleteNotConfirmed
	}

	remaining := make([]models.FlatAttendee, 0, len(c.all)-1)
	remaining = append(remaining, c.all[:i]...)
	remaining = append(remaining, c.all[i+1:]...)

	stored, err := c.persistLocked(ctx, remaining, map[string]int{target.EventID: 1})
	if err != nil {
		return err
	}

	c.all = remaining
	if j := indexByID(c.filtered, id); j >= 0 {
		c.filtered = append(c.filtered[:j], c.filtered[j+1:]...)
	}
	c.catchUpLocked(stored)
	c.clampPageLocked()

	publish(c.publisher, RoutingAttendeeDeleted, AttendeeMessage{
		EventID:  target.EventID,
		Attendee: target.Attendee,
		Capacity: c.capacityOfLocked(target.EventID),
	})
	return nil
}

func (c *AttendeeConsole) capacityOfLocked(eventID string) int {
	if sum, ok := c.summaryLocked(eventID); ok {
		return sum.Capacity
	}
	return 0
}

// Persist writes the working copy back to the store.
func (c *AttendeeConsole) Persist(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureInitialized(ctx); err != nil {
		return err
	}
	stored, err := c.persistLocked(ctx, c.all, nil)
	if err != nil {
		return err
	}
	c.catchUpLocked(stored)
	return nil
}

// storeState is the document as written by persistLocked.
type storeState struct {
	events []models.Event
	unseen []models.FlatAttendee
}

// persistLocked replaces every stored attendee list with the matching group
// of all, so events left without attendees get an empty list. Stored
// attendees the console has never loaded (registrations whose notification
// has not arrived yet) are kept after the group. capacityDelta is added to
// the stored capacity of each listed event, recreating missing events.
func (c *AttendeeConsole) persistLocked(ctx context.Context, all []models.FlatAttendee, capacityDelta map[string]int) (storeState, error) {
	var state storeState
	err := c.repo.Update(ctx, func(set *models.EventSet) error {
		state = storeState{}
		kept := map[string][]models.Attendee{}
		for _, id := range set.IDs() {
			ev, _ := set.Get(id)
			for _, a := range ev.Attendees {
				if _, ok := c.seen[a.ID]; ok {
					continue
				}
				kept[id] = append(kept[id], a)
				state.unseen = append(state.unseen, flatten(*ev, a))
			}
			ev.Attendees = []models.Attendee{}
		}
		for _, fa := range all {
			ev := getOrStub(set, fa.EventID)
			ev.Attendees = append(ev.Attendees, fa.Attendee)
		}
		for id, list := range kept {
			ev, _ := set.Get(id)
			ev.Attendees = append(ev.Attendees, list...)
		}
		for id, delta := range capacityDelta {
			getOrStub(set, id).Capacity += delta
		}
		state.events = set.Events()
		return nil
	})
	if err != nil {
		return storeState{}, fmt.Errorf("persist attendees: %w", err)
	}
	return state, nil
}

// getOrStub returns the event, inserting an empty one with capacity 0 when
// the store no longer has it.
func getOrStub(set *models.EventSet, id string) *models.Event {
	if ev, ok := set.Get(id); ok {
		return ev
	}
	set.Put(models.Event{ID: id, Attendees: []models.Attendee{}})
	ev, _ := set.Get(id)
	return ev
}

// catchUpLocked aligns the summaries with what was written and adopts the
// attendees persistLocked found but the console did not know yet.
func (c *AttendeeConsole) catchUpLocked(st storeState) {
	for _, ev := range st.events {
		c.upsertSummaryLocked(ev)
	}
	if len(st.unseen) == 0 {
		return
	}
	for _, fa := range st.unseen {
		c.addLocked(fa)
	}
	c.applyFilterLocked()
	c.clampPageLocked()
}

// addLocked appends a stored attendee to the working copy and marks its id
// as seen. Deleted ids stay seen so a later write-back never restores them.
func (c *AttendeeConsole) addLocked(fa models.FlatAttendee) bool {
	if _, ok := c.seen[fa.ID]; ok {
		return false
	}
	if fa.Status == "" {
		fa.Status = models.StatusConfirmed
	}
	c.seen[fa.ID] = struct{}{}
	c.all = append(c.all, fa)
	return true
}

func flatten(ev models.Event, a models.Attendee) models.FlatAttendee {
	return models.FlatAttendee{Attendee: a, EventID: ev.ID, EventName: ev.DisplayName()}
}

// EventSaved keeps the event selector and display names current, and picks
// up attendees that arrived with an imported event.
func (c *AttendeeConsole) EventSaved(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertSummaryLocked(ev)
	name := ev.DisplayName()
	for i := range c.all {
		if c.all[i].EventID == ev.ID {
			c.all[i].EventName = name
		}
	}
	for i := range c.filtered {
		if c.filtered[i].EventID == ev.ID {
			c.filtered[i].EventName = name
		}
	}
	if !c.initialized {
		return
	}
	added := false
	for _, a := range ev.Attendees {
		if c.addLocked(flatten(ev, a)) {
			added = true
		}
	}
	if added {
		c.applyFilterLocked()
		c.clampPageLocked()
	}
}

// AttendeeRegistered adds a newly registered attendee to the working copy and
// re-applies the active filter, staying on the current page when possible.
func (c *AttendeeConsole) AttendeeRegistered(ev models.Event, a models.Attendee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	c.upsertSummaryLocked(ev)
	if !c.addLocked(flatten(ev, a)) {
		return
	}
	c.applyFilterLocked()
	c.clampPageLocked()
}

func (c *AttendeeConsole) upsertSummaryLocked(ev models.Event) {
	if sum, ok := c.summaryLocked(ev.ID); ok {
		sum.Name = ev.DisplayName()
		sum.Capacity = ev.Capacity
		return
	}
	c.events = append(c.events, EventSummary{ID: ev.ID, Name: ev.DisplayName(), Capacity: ev.Capacity})
}

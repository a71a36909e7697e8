// Package memory provides an in-memory calendar store for tests and
// single-process development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// Store is an in-memory implementation of calendar.Store. Events are
// grouped by calendar ID.
type Store struct {
	events map[string][]calendar.Event
	nextID int
	mu     sync.Mutex

	// failWith, when set, makes every operation fail. Used to simulate
	// provider outages in tests.
	failWith error
}

// NewStore creates a new in-memory calendar store.
func NewStore() *Store {
	return &Store{
		events: make(map[string][]calendar.Event),
	}
}

// Seed adds events to a calendar without going through CreateEvent.
func (s *Store) Seed(calendarID string, events ...calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[calendarID] = append(s.events[calendarID], events...)
}

// FailWith makes all subsequent operations return the given error. Pass
// nil to restore normal behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// ListEvents returns events overlapping [timeMin, timeMax), sorted by
// start time.
func (s *Store) ListEvents(ctx context.Context, calendarIDs []string, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	window := calendar.Slot{Start: timeMin, End: timeMax}

	var result []calendar.Event
	for _, id := range calendarIDs {
		for _, e := range s.events[id] {
			if window.Overlaps(calendar.Slot{Start: e.Start, End: e.End}) {
				result = append(result, e)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})

	return result, nil
}

// CreateEvent creates a new event on the given calendar.
func (s *Store) CreateEvent(ctx context.Context, calendarID string, event calendar.Event) (calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return calendar.Event{}, err
	}

	if !event.End.After(event.Start) {
		return calendar.Event{}, calendar.ErrInvalidEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return calendar.Event{}, s.failWith
	}

	if event.ID == "" {
		s.nextID++
		event.ID = fmt.Sprintf("evt-%d", s.nextID)
	}

	s.events[calendarID] = append(s.events[calendarID], event)
	return event, nil
}

// MoveEvent changes an existing event's start and end times.
func (s *Store) MoveEvent(ctx context.Context, calendarID, eventID string, start, end time.Time) (calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return calendar.Event{}, err
	}

	if !end.After(start) {
		return calendar.Event{}, calendar.ErrInvalidEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return calendar.Event{}, s.failWith
	}

	events := s.events[calendarID]
	for i, e := range events {
		if e.ID == eventID {
			events[i].Start = start
			events[i].End = end
			return events[i], nil
		}
	}

	return calendar.Event{}, calendar.ErrEventNotFound
}

var _ calendar.Store = (*Store)(nil)

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"care-journal/internal/domain/events"
)

type eventsRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventsRepo() events.Repository {
	return &eventsRepo{
		byID: make(map[string]events.Event),
	}
}

func (r *eventsRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, ErrNotFound
	}
	return e, nil
}

func (r *eventsRepo) ListByCase(ctx context.Context, caseID string, filter events.ListFilter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if e.CaseID != caseID || e.DeletedAt != nil {
			continue
		}
		if filter.Before != nil && !e.OccurredAt.Before(*filter.Before) {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].OccurredAt.After(out[b].OccurredAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *eventsRepo) Update(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func containsType(ts []events.EventType, t events.EventType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

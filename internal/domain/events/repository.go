package events

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)

	// ListByCase devuelve eventos no borrados del caso, más reciente primero.
	ListByCase(ctx context.Context, caseID string, filter ListFilter) ([]Event, error)

	Update(ctx context.Context, e Event) error
}

type ListFilter struct {
	Types  []EventType
	Before *time.Time
	Limit  int
}

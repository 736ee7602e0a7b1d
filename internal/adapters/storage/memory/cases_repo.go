package memory

import (
	"context"
	"errors"
	"sync"

	"care-journal/internal/domain/cases"
)

type casesRepo struct {
	mu   sync.RWMutex
	byID map[string]cases.Case
}

func NewCasesRepo() cases.Repository {
	return &casesRepo{
		byID: make(map[string]cases.Case),
	}
}

func (r *casesRepo) Create(ctx context.Context, c cases.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("case id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("case already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *casesRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cases.Case{}, ErrNotFound
	}
	return c, nil
}

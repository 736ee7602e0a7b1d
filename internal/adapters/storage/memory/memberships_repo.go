package memory

import (
	"context"
	"errors"
	"sync"

	"care-journal/internal/domain/memberships"
)

type membershipsRepo struct {
	mu   sync.RWMutex
	byID map[string]memberships.Membership
}

func NewMembershipsRepo() memberships.Repository {
	return &membershipsRepo{
		byID: make(map[string]memberships.Membership),
	}
}

func (r *membershipsRepo) Create(ctx context.Context, m memberships.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("membership id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("membership already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *membershipsRepo) GetByID(ctx context.Context, id string) (memberships.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return memberships.Membership{}, ErrNotFound
	}
	return m, nil
}

func (r *membershipsRepo) Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.CaseID == caseID && m.UserID == userID && m.Active() {
			return m, nil
		}
	}
	return memberships.Membership{}, ErrNotFound
}

func (r *membershipsRepo) ListByCase(ctx context.Context, caseID string) ([]memberships.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberships.Membership, 0)
	for _, m := range r.byID {
		if m.CaseID == caseID && m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *membershipsRepo) ListByUser(ctx context.Context, userID string) ([]memberships.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberships.Membership, 0)
	for _, m := range r.byID {
		if m.UserID == userID && m.Active() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *membershipsRepo) Update(ctx context.Context, m memberships.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("membership id required")
	}
	if _, exists := r.byID[m.ID]; !exists {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

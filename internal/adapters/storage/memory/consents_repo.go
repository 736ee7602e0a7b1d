package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"care-journal/internal/domain/consents"
)

type consentsRepo struct {
	mu         sync.RWMutex
	consents   map[string]consents.Consent // por id
	grantsByID map[string]consents.Grant
}

func NewConsentsRepo() consents.Repository {
	return &consentsRepo{
		consents:   make(map[string]consents.Consent),
		grantsByID: make(map[string]consents.Grant),
	}
}

func (r *consentsRepo) CreateConsent(ctx context.Context, c consents.Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("consent id required")
	}
	if _, exists := r.consents[c.ID]; exists {
		return errors.New("consent already exists")
	}
	r.consents[c.ID] = c
	return nil
}

func (r *consentsRepo) GetByMembership(ctx context.Context, membershipID string) (consents.Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.consents {
		if c.MembershipID == membershipID {
			return c, nil
		}
	}
	return consents.Consent{}, ErrNotFound
}

func (r *consentsRepo) UpdateConsent(ctx context.Context, c consents.Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("consent id required")
	}
	if _, exists := r.consents[c.ID]; !exists {
		return ErrNotFound
	}
	r.consents[c.ID] = c
	return nil
}

func (r *consentsRepo) InsertGrants(ctx context.Context, gs []consents.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range gs {
		if g.ID == "" {
			return errors.New("grant id required")
		}
		if _, exists := r.grantsByID[g.ID]; exists {
			return errors.New("grant already exists")
		}
	}
	for _, g := range gs {
		r.grantsByID[g.ID] = g
	}
	return nil
}

func (r *consentsRepo) SoftDeleteGrants(ctx context.Context, membershipID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, g := range r.grantsByID {
		if g.MembershipID != membershipID || g.DeletedAt != nil {
			continue
		}
		t := at
		g.DeletedAt = &t
		r.grantsByID[id] = g
	}
	return nil
}

func (r *consentsRepo) ListActiveGrants(ctx context.Context, membershipID string) ([]consents.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]consents.Grant, 0)
	for _, g := range r.grantsByID {
		if g.MembershipID == membershipID && g.DeletedAt == nil {
			out = append(out, g)
		}
	}
	return out, nil
}

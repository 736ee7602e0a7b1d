package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"care-journal/internal/domain/invites"
)

type invitesRepo struct {
	mu   sync.RWMutex
	byID map[string]invites.Invite
}

func NewInvitesRepo() invites.Repository {
	return &invitesRepo{
		byID: make(map[string]invites.Invite),
	}
}

func (r *invitesRepo) Create(ctx context.Context, i invites.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i.ID == "" {
		return errors.New("invite id required")
	}
	if _, exists := r.byID[i.ID]; exists {
		return errors.New("invite already exists")
	}
	r.byID[i.ID] = i
	return nil
}

func (r *invitesRepo) GetByID(ctx context.Context, id string) (invites.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return invites.Invite{}, ErrNotFound
	}
	return i, nil
}

func (r *invitesRepo) GetByToken(ctx context.Context, token string) (invites.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.byID {
		if i.Token == token {
			return i, nil
		}
	}
	return invites.Invite{}, ErrNotFound
}

func (r *invitesRepo) FindPending(ctx context.Context, caseID, email string, now time.Time) (invites.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.byID {
		if i.CaseID != caseID {
			continue
		}
		if !strings.EqualFold(i.Email, email) {
			continue
		}
		if i.AcceptedAt != nil || i.Expired(now) {
			continue
		}
		return i, nil
	}
	return invites.Invite{}, ErrNotFound
}

func (r *invitesRepo) ListPending(ctx context.Context, caseID string, now time.Time) ([]invites.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]invites.Invite, 0)
	for _, i := range r.byID {
		if i.CaseID == caseID && i.AcceptedAt == nil && !i.Expired(now) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (r *invitesRepo) Update(ctx context.Context, i invites.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i.ID == "" {
		return errors.New("invite id required")
	}
	if _, exists := r.byID[i.ID]; !exists {
		return ErrNotFound
	}
	r.byID[i.ID] = i
	return nil
}

func (r *invitesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

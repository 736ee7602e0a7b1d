package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"care-journal/internal/domain/audit"
)

// auditRepo es append-only: no expone Update ni Delete.
type auditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditRepo() audit.Repository {
	return &auditRepo{}
}

func (r *auditRepo) Append(ctx context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("audit entry id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) ListByCase(ctx context.Context, caseID string, limit int) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0)
	for _, e := range r.entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].At.After(out[b].At)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

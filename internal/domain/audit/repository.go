package audit

import "context"

type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByCase(ctx context.Context, caseID string, limit int) ([]Entry, error)
}

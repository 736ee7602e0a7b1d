package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"care-journal/internal/domain/audit"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append inserta una entrada. La tabla es append-only: no hay Update ni
// Delete en este repo, y las migraciones no crean índices de escritura extra.
func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	_, err = q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO audit_log (
			id, case_id, actor_user_id,
			action, object_type, object_id,
			metadata, at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.CaseID,
		e.ActorUserID,
		string(e.Action),
		e.ObjectType,
		e.ObjectID,
		meta,
		e.At,
	)
	return err
}

func (r *AuditRepo) ListByCase(ctx context.Context, caseID string, limit int) ([]audit.Entry, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT
			id, case_id, actor_user_id,
			action, object_type, object_id,
			metadata, at
		FROM audit_log
		WHERE case_id = $1
		ORDER BY at DESC
		LIMIT $2
	`, caseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var action string
		var meta []byte

		if err := rows.Scan(
			&e.ID,
			&e.CaseID,
			&e.ActorUserID,
			&action,
			&e.ObjectType,
			&e.ObjectID,
			&meta,
			&e.At,
		); err != nil {
			return nil, err
		}

		e.Action = audit.Action(action)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

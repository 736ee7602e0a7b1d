package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"care-journal/internal/domain/consents"
	"care-journal/internal/domain/scopes"
)

type ConsentsRepo struct {
	db *sql.DB
}

func NewConsentsRepo(db *sql.DB) *ConsentsRepo {
	return &ConsentsRepo{db: db}
}

func (r *ConsentsRepo) CreateConsent(ctx context.Context, c consents.Consent) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO consents (
			id, case_id, membership_id,
			status, granted_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		c.ID,
		c.CaseID,
		c.MembershipID,
		string(c.Status),
		c.GrantedAt,
		toNullTime(c.RevokedAt),
	)
	return err
}

// GetByMembership bloquea la fila (FOR UPDATE) cuando corre dentro de una
// transacción: las transiciones de estado concurrentes sobre el mismo consent
// se serializan en la base, no en memoria.
func (r *ConsentsRepo) GetByMembership(ctx context.Context, membershipID string) (consents.Consent, error) {
	membershipID = strings.TrimSpace(membershipID)
	if membershipID == "" {
		return consents.Consent{}, ErrNotFound
	}

	query := `
		SELECT id, case_id, membership_id, status, granted_at, revoked_at
		FROM consents
		WHERE membership_id = $1
	`
	if txFrom(ctx) != nil {
		query += " FOR UPDATE"
	}

	row := q(ctx, r.db).QueryRowContext(ctx, query, membershipID)

	var c consents.Consent
	var status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&c.ID,
		&c.CaseID,
		&c.MembershipID,
		&status,
		&c.GrantedAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return consents.Consent{}, ErrNotFound
		}
		return consents.Consent{}, err
	}

	c.Status = consents.Status(status)
	c.RevokedAt = fromNullTime(revokedAt)

	return c, nil
}

func (r *ConsentsRepo) UpdateConsent(ctx context.Context, c consents.Consent) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE consents
		SET
			status = $2,
			revoked_at = $3
		WHERE id = $1
	`,
		c.ID,
		string(c.Status),
		toNullTime(c.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ConsentsRepo) InsertGrants(ctx context.Context, gs []consents.Grant) error {
	for _, g := range gs {
		_, err := q(ctx, r.db).ExecContext(ctx, `
			INSERT INTO permission_grants (
				id, consent_id, membership_id,
				scope, created_at, deleted_at
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			g.ID,
			g.ConsentID,
			g.MembershipID,
			string(g.Scope),
			g.CreatedAt,
			toNullTime(g.DeletedAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ConsentsRepo) SoftDeleteGrants(ctx context.Context, membershipID string, at time.Time) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE permission_grants
		SET deleted_at = $2
		WHERE membership_id = $1
		  AND deleted_at IS NULL
	`, membershipID, at)
	return err
}

func (r *ConsentsRepo) ListActiveGrants(ctx context.Context, membershipID string) ([]consents.Grant, error) {
	membershipID = strings.TrimSpace(membershipID)
	if membershipID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT id, consent_id, membership_id, scope, created_at, deleted_at
		FROM permission_grants
		WHERE membership_id = $1
		  AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]consents.Grant, 0)
	for rows.Next() {
		var g consents.Grant
		var scope string
		var deletedAt sql.NullTime

		if err := rows.Scan(
			&g.ID,
			&g.ConsentID,
			&g.MembershipID,
			&scope,
			&g.CreatedAt,
			&deletedAt,
		); err != nil {
			return nil, err
		}

		g.Scope = scopes.Code(scope)
		g.DeletedAt = fromNullTime(deletedAt)

		out = append(out, g)
	}

	return out, rows.Err()
}

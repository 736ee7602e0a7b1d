package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
)

type MembershipsRepo struct {
	db *sql.DB
}

func NewMembershipsRepo(db *sql.DB) *MembershipsRepo {
	return &MembershipsRepo{db: db}
}

const membershipCols = `
	id, case_id, user_id,
	kind, authority, specialty,
	added_at, revoked_at, deleted_at
`

func (r *MembershipsRepo) Create(ctx context.Context, m memberships.Membership) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO memberships (`+membershipCols+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.CaseID,
		m.UserID,
		string(m.Kind),
		string(m.Authority),
		string(m.Specialty),
		m.AddedAt,
		toNullTime(m.RevokedAt),
		toNullTime(m.DeletedAt),
	)
	return err
}

func (r *MembershipsRepo) Update(ctx context.Context, m memberships.Membership) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE memberships
		SET
			authority = $2,
			specialty = $3,
			revoked_at = $4,
			deleted_at = $5
		WHERE id = $1
	`,
		m.ID,
		string(m.Authority),
		string(m.Specialty),
		toNullTime(m.RevokedAt),
		toNullTime(m.DeletedAt),
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

func (r *MembershipsRepo) GetByID(ctx context.Context, id string) (memberships.Membership, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return memberships.Membership{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+membershipCols+`
		FROM memberships
		WHERE id = $1
	`, id)

	return scanMembership(row)
}

func (r *MembershipsRepo) Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error) {
	caseID = strings.TrimSpace(caseID)
	userID = strings.TrimSpace(userID)
	if caseID == "" || userID == "" {
		return memberships.Membership{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+membershipCols+`
		FROM memberships
		WHERE case_id = $1
		  AND user_id = $2
		  AND revoked_at IS NULL
		  AND deleted_at IS NULL
		LIMIT 1
	`, caseID, userID)

	return scanMembership(row)
}

func (r *MembershipsRepo) ListByCase(ctx context.Context, caseID string) ([]memberships.Membership, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+membershipCols+`
		FROM memberships
		WHERE case_id = $1
		  AND deleted_at IS NULL
		ORDER BY added_at ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMemberships(rows)
}

func (r *MembershipsRepo) ListByUser(ctx context.Context, userID string) ([]memberships.Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+membershipCols+`
		FROM memberships
		WHERE user_id = $1
		  AND revoked_at IS NULL
		  AND deleted_at IS NULL
		ORDER BY added_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMemberships(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (memberships.Membership, error) {
	var m memberships.Membership
	var kind, authority, specialty string
	var revokedAt, deletedAt sql.NullTime

	if err := row.Scan(
		&m.ID,
		&m.CaseID,
		&m.UserID,
		&kind,
		&authority,
		&specialty,
		&m.AddedAt,
		&revokedAt,
		&deletedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return memberships.Membership{}, ErrNotFound
		}
		return memberships.Membership{}, err
	}

	m.Kind = memberships.ActorKind(kind)
	m.Authority = memberships.Authority(authority)
	m.Specialty = scopes.Specialty(specialty)
	m.RevokedAt = fromNullTime(revokedAt)
	m.DeletedAt = fromNullTime(deletedAt)

	return m, nil
}

func collectMemberships(rows *sql.Rows) ([]memberships.Membership, error) {
	out := make([]memberships.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// helpers
func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

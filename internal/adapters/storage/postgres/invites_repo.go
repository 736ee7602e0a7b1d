package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"care-journal/internal/domain/invites"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
)

type InvitesRepo struct {
	db *sql.DB
}

func NewInvitesRepo(db *sql.DB) *InvitesRepo {
	return &InvitesRepo{db: db}
}

const inviteCols = `
	id, case_id, email,
	type, role, specialty,
	token, invited_by_id,
	created_at, expires_at, accepted_at
`

func (r *InvitesRepo) Create(ctx context.Context, i invites.Invite) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO invites (`+inviteCols+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		i.ID,
		i.CaseID,
		i.Email,
		string(i.Type),
		string(i.Role),
		string(i.Specialty),
		i.Token,
		i.InvitedByID,
		i.CreatedAt,
		i.ExpiresAt,
		toNullTime(i.AcceptedAt),
	)
	return err
}

func (r *InvitesRepo) Update(ctx context.Context, i invites.Invite) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE invites
		SET
			specialty = $2,
			expires_at = $3,
			accepted_at = $4
		WHERE id = $1
	`,
		i.ID,
		string(i.Specialty),
		i.ExpiresAt,
		toNullTime(i.AcceptedAt),
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

func (r *InvitesRepo) Delete(ctx context.Context, id string) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		DELETE FROM invites WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *InvitesRepo) GetByID(ctx context.Context, id string) (invites.Invite, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return invites.Invite{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+inviteCols+`
		FROM invites
		WHERE id = $1
	`, id)

	return scanInvite(row)
}

func (r *InvitesRepo) GetByToken(ctx context.Context, token string) (invites.Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return invites.Invite{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+inviteCols+`
		FROM invites
		WHERE token = $1
	`, token)

	return scanInvite(row)
}

func (r *InvitesRepo) FindPending(ctx context.Context, caseID, email string, now time.Time) (invites.Invite, error) {
	caseID = strings.TrimSpace(caseID)
	email = strings.TrimSpace(email)
	if caseID == "" || email == "" {
		return invites.Invite{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+inviteCols+`
		FROM invites
		WHERE case_id = $1
		  AND lower(email) = lower($2)
		  AND accepted_at IS NULL
		  AND expires_at > $3
		LIMIT 1
	`, caseID, email, now)

	return scanInvite(row)
}

func (r *InvitesRepo) ListPending(ctx context.Context, caseID string, now time.Time) ([]invites.Invite, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+inviteCols+`
		FROM invites
		WHERE case_id = $1
		  AND accepted_at IS NULL
		  AND expires_at > $2
		ORDER BY created_at DESC
	`, caseID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]invites.Invite, 0)
	for rows.Next() {
		i, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanInvite(row rowScanner) (invites.Invite, error) {
	var i invites.Invite
	var typ, role, specialty string
	var acceptedAt sql.NullTime

	if err := row.Scan(
		&i.ID,
		&i.CaseID,
		&i.Email,
		&typ,
		&role,
		&specialty,
		&i.Token,
		&i.InvitedByID,
		&i.CreatedAt,
		&i.ExpiresAt,
		&acceptedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return invites.Invite{}, ErrNotFound
		}
		return invites.Invite{}, err
	}

	i.Type = invites.Type(typ)
	i.Role = memberships.Authority(role)
	i.Specialty = scopes.Specialty(specialty)
	i.AcceptedAt = fromNullTime(acceptedAt)

	return i, nil
}

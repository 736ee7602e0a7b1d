package postgres

import (
	"context"
	"database/sql"
	"strings"

	"care-journal/internal/domain/cases"
)

type CasesRepo struct {
	db *sql.DB
}

func NewCasesRepo(db *sql.DB) *CasesRepo {
	return &CasesRepo{db: db}
}

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO cases (
			id, child_display_name,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4)
	`,
		c.ID,
		c.ChildDisplayName,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CasesRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cases.Case{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, child_display_name, created_at, updated_at
		FROM cases
		WHERE id = $1
	`, id)

	var c cases.Case
	if err := row.Scan(
		&c.ID,
		&c.ChildDisplayName,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return cases.Case{}, ErrNotFound
		}
		return cases.Case{}, err
	}

	return c, nil
}

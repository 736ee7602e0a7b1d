package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"care-journal/internal/domain/events"
	"care-journal/internal/domain/scopes"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventCols = `
	id, case_id, author_id,
	type, free_text,
	occurred_at, logged_at,
	scopes, deleted_at
`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO journal_events (`+eventCols+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		e.ID,
		e.CaseID,
		e.AuthorID,
		string(e.Type),
		e.FreeText,
		e.OccurredAt,
		e.LoggedAt,
		scopesToTextArray(e.Scopes),
		toNullTime(e.DeletedAt),
	)
	return err
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE journal_events
		SET
			free_text = $2,
			scopes = $3,
			deleted_at = $4
		WHERE id = $1
	`,
		e.ID,
		e.FreeText,
		scopesToTextArray(e.Scopes),
		toNullTime(e.DeletedAt),
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

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+eventCols+`
		FROM journal_events
		WHERE id = $1
	`, id)

	return scanEvent(row)
}

func (r *EventsRepo) ListByCase(ctx context.Context, caseID string, filter events.ListFilter) ([]events.Event, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + eventCols + `
		FROM journal_events
		WHERE case_id = $1
		  AND deleted_at IS NULL
	`)

	args := []any{caseID}
	argN := 2

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.Before != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at < $%d", argN))
		args = append(args, *filter.Before)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := q(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func scanEvent(row rowScanner) (events.Event, error) {
	var e events.Event
	var typ string
	var tags []string
	var deletedAt sql.NullTime

	if err := row.Scan(
		&e.ID,
		&e.CaseID,
		&e.AuthorID,
		&typ,
		&e.FreeText,
		&e.OccurredAt,
		&e.LoggedAt,
		&tags,
		&deletedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, ErrNotFound
		}
		return events.Event{}, err
	}

	e.Type = events.EventType(typ)
	e.Scopes = textArrayToScopes(tags)
	e.DeletedAt = fromNullTime(deletedAt)

	return e, nil
}

// helpers
func scopesToTextArray(in []scopes.Code) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func textArrayToScopes(in []string) []scopes.Code {
	out := make([]scopes.Code, 0, len(in))
	for _, s := range in {
		out = append(out, scopes.Code(s))
	}
	return out
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"care-journal/internal/ports/storage"
)

type txKey struct{}

// querier es lo que comparten *sql.DB y *sql.Tx; los repos operan sobre
// esta interfaz y resuelven cuál usar mirando el contexto.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// q devuelve la transacción del contexto si hay una en curso, o el pool.
func q(ctx context.Context, db *sql.DB) querier {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db
}

// UnitOfWork agrupa mutaciones en una transacción que viaja por el contexto.
// Los repos del paquete la recogen transparentemente: el dominio solo ve
// storage.UnitOfWork y nunca toca *sql.Tx.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) storage.UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	// Atomic anidado reutiliza la transacción en curso.
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

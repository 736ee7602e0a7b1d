// Package memory implementa los repositorios en memoria (dev y tests).
package memory

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("not found")

// UnitOfWork serializa las unidades atómicas con un mutex global.
// No hay rollback acá: es el adapter de dev/tests; la atomicidad real
// con rollback la da el adapter de postgres.
type UnitOfWork struct {
	mu sync.Mutex
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

func (u *UnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx)
}

// Package memdir es un directorio de usuarios en memoria para dev y tests.
package memdir

import (
	"context"
	"errors"
	"strings"
	"sync"

	"care-journal/internal/ports/accounts"
)

var ErrUserNotFound = errors.New("user not found")

type Directory struct {
	mu   sync.RWMutex
	byID map[string]accounts.User
}

func New() *Directory {
	return &Directory{byID: make(map[string]accounts.User)}
}

// Put registra o reemplaza un usuario.
func (d *Directory) Put(u accounts.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[u.ID] = u
}

func (d *Directory) UserByID(ctx context.Context, id string) (accounts.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return accounts.User{}, ErrUserNotFound
	}
	return u, nil
}

func (d *Directory) UserByEmail(ctx context.Context, email string) (accounts.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return accounts.User{}, ErrUserNotFound
}

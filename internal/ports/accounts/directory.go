// Package accounts define el puerto hacia el directorio de cuentas de usuario.
// Este core no es dueño de los usuarios; solo necesita resolver id <-> email.
package accounts

import "context"

// User es la vista mínima de una cuenta que necesita el core.
type User struct {
	ID    string
	Name  string
	Email string
}

// Directory resuelve cuentas por id o email. La comparación de email
// es case-insensitive del lado del adapter.
type Directory interface {
	UserByID(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
}

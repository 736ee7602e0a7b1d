// Package errs contiene los errores sentinela compartidos entre capas.
// Los handlers mapean cada sentinela a un status HTTP y mensaje fijo;
// nada en el dominio lanza errores "sueltos" que un caller pueda tragarse.
package errs

import "errors"

var (
	// ErrInvalidInput indica parámetros vacíos o mal formados.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indica que el actor no tiene la autoridad requerida.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indica objeto ausente. No distingue "no existe" de
	// "existe pero oculto" para no filtrar la existencia de casos.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember indica que ya existe una membresía vigente para ese email/usuario.
	ErrAlreadyMember = errors.New("already a member")

	// ErrInvitePending indica que ya hay una invitación vigente para ese email+caso.
	ErrInvitePending = errors.New("invite already pending")

	// ErrAlreadyAccepted indica un token de invitación ya consumido.
	ErrAlreadyAccepted = errors.New("invite already accepted")

	// ErrExpired indica una invitación vencida (now >= expiresAt).
	ErrExpired = errors.New("invite expired")

	// ErrEmailMismatch indica que la cuenta que acepta no coincide con el email invitado.
	ErrEmailMismatch = errors.New("invite email mismatch")

	// ErrCannotSelfRevoke: un admin no puede revocar su propia membresía.
	ErrCannotSelfRevoke = errors.New("cannot revoke own membership")

	// ErrInvalidTransition indica un cambio de estado de consent no permitido.
	ErrInvalidTransition = errors.New("invalid consent transition")

	// ErrAuditWriteFailed es fatal: si el audit no persiste, la operación
	// que lo dispara también debe fallar.
	ErrAuditWriteFailed = errors.New("audit write failed")
)

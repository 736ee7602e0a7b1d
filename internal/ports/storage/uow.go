package storage

import "context"

// UnitOfWork ejecuta fn como una unidad atómica. Toda mutación multi-paso
// (aceptar invite, transición de consent + audit, replace de grants + audit)
// corre adentro: si fn devuelve error, nada queda aplicado a medias.
//
// El contexto que recibe fn lleva la transacción; los repositorios deben
// usarlo para que sus escrituras participen de la misma unidad.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

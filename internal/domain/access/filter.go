// Package access implementa el filtro de visibilidad sobre registros con
// scopes. Es función pura de (kind del viewer, set otorgado, tags del
// registro): mismo resultado de a uno o en bulk, sin dependencia de orden.
package access

import (
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
)

// Viewer es lo que el filtro necesita saber de quien mira:
// qué clase de actor es y qué scopes tiene otorgados ahora.
type Viewer struct {
	Kind    memberships.ActorKind
	Granted []scopes.Code
}

// Decision es el veredicto por registro.
type Decision struct {
	Visible bool

	// Shown es la lista de tags que se le muestra al viewer. Para clínicos
	// es la intersección con Granted: nunca ven etiquetas de categorías no
	// autorizadas, ni siquiera como metadata de un registro visible.
	Shown []scopes.Code

	// PartiallyHidden marca que al menos un tag real fue redactado.
	// Señal deliberada ("some details not shared"), distinta de la
	// exclusión total; binaria, sin contar cuántos tags se ocultaron.
	PartiallyHidden bool
}

// Evaluate decide la visibilidad de un registro con los tags dados.
//
// Reglas:
//  1. FAMILY ve todo, sin redactar: los scopes existen para acotar la
//     visibilidad de clínicos, no de la familia.
//  2. CARE_TEAM sin scopes otorgados (consent no ACTIVE) no ve nada.
//  3. CARE_TEAM con set no vacío: el registro entra si comparte al menos
//     un tag con el set (OR entre tags, no AND). Registros sin tags nunca
//     son visibles para clínicos.
//  4. Los tags mostrados son la intersección con el set otorgado.
//  5. Si la intersección perdió tags respecto de la lista real,
//     PartiallyHidden = true.
func Evaluate(v Viewer, tags []scopes.Code) Decision {
	if v.Kind == memberships.KindFamily {
		shown := make([]scopes.Code, len(tags))
		copy(shown, tags)
		return Decision{Visible: true, Shown: shown}
	}

	if len(v.Granted) == 0 || len(tags) == 0 {
		return Decision{}
	}

	shown := scopes.Intersect(tags, v.Granted)
	if len(shown) == 0 {
		return Decision{}
	}

	return Decision{
		Visible:         true,
		Shown:           shown,
		PartiallyHidden: len(shown) < len(tags),
	}
}

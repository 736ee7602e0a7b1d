// Package scopes define el registro fijo de categorías de datos clínicos.
// Es data de referencia inmutable: no es un motor de reglas ni pertenece a un caso.
package scopes

import (
	"strings"

	"care-journal/internal/errs"
)

// Code identifica una categoría de datos de forma estable.
type Code string

const (
	Seizures   Code = "seizures"
	SkinWounds Code = "skin_wounds"
	Infection  Code = "infection"
	Meds       Code = "meds"
	Feeding    Code = "feeding"
	Sleep      Code = "sleep"
	Mobility   Code = "mobility"
	VisionComm Code = "vision_comm"
	Comfort    Code = "comfort"
	CareAdmin  Code = "care_admin"
	Other      Code = "other"
)

// Scope es una categoría con su etiqueta legible.
type Scope struct {
	Code  Code
	Label string
}

var registry = []Scope{
	{Seizures, "Seizure activity"},
	{SkinWounds, "Skin and wounds"},
	{Infection, "Infection concerns"},
	{Meds, "Medications"},
	{Feeding, "Feeding and nutrition"},
	{Sleep, "Sleep patterns"},
	{Mobility, "Mobility and movement"},
	{VisionComm, "Vision and communication"},
	{Comfort, "Comfort and pain"},
	{CareAdmin, "Care administration"},
	{Other, "Other observations"},
}

var byCode = func() map[Code]Scope {
	m := make(map[Code]Scope, len(registry))
	for _, s := range registry {
		m[s.Code] = s
	}
	return m
}()

// All devuelve el registro completo, en orden estable.
func All() []Scope {
	out := make([]Scope, len(registry))
	copy(out, registry)
	return out
}

// AllCodes devuelve todos los códigos del registro.
func AllCodes() []Code {
	out := make([]Code, 0, len(registry))
	for _, s := range registry {
		out = append(out, s.Code)
	}
	return out
}

func Valid(c Code) bool {
	_, ok := byCode[c]
	return ok
}

// Label devuelve la etiqueta del código, o el código mismo si no existe.
func Label(c Code) string {
	if s, ok := byCode[c]; ok {
		return s.Label
	}
	return string(c)
}

// Normalize valida estrictamente una lista de códigos: trim, dedupe,
// y rechaza cualquier código fuera del registro.
func Normalize(in []Code) ([]Code, error) {
	seen := map[Code]struct{}{}
	out := make([]Code, 0, len(in))

	for _, raw := range in {
		c := Code(strings.TrimSpace(string(raw)))
		if c == "" {
			continue
		}
		if !Valid(c) {
			return nil, errs.ErrInvalidInput
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out, nil
}

// Contains valida si la lista incluye el código.
func Contains(list []Code, c Code) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

// Intersect devuelve los códigos de tags presentes en granted,
// preservando el orden de tags.
func Intersect(tags, granted []Code) []Code {
	out := make([]Code, 0, len(tags))
	for _, t := range tags {
		if Contains(granted, t) {
			out = append(out, t)
		}
	}
	return out
}

package scopes

import "strings"

// Specialty identifica la especialidad de un clínico invitado.
// Define los scopes iniciales de su consent; es un default de UX,
// no una decisión de seguridad: el admin del caso puede cambiarlos después.
type Specialty string

const (
	SpecialtyGP            Specialty = "gp"
	SpecialtyNeurology     Specialty = "neurology"
	SpecialtyDermatology   Specialty = "dermatology"
	SpecialtyEpilepsyNurse Specialty = "epilepsy_nurse"
	SpecialtyGastro        Specialty = "gastro"
	SpecialtyPhysio        Specialty = "physio"
	SpecialtyOphthalmology Specialty = "ophthalmology"
	SpecialtyPalliative    Specialty = "palliative"
	SpecialtyOtherSpec     Specialty = "other"
)

type specialtyInfo struct {
	Label         string
	DefaultScopes []Code
}

var specialties = map[Specialty]specialtyInfo{
	SpecialtyGP: {
		Label:         "GP / Primary Care",
		DefaultScopes: []Code{Infection, Meds, Feeding, Sleep, Comfort, CareAdmin},
	},
	SpecialtyNeurology: {
		Label:         "Neurology",
		DefaultScopes: []Code{Seizures, Meds, Sleep, VisionComm, Mobility, Comfort},
	},
	SpecialtyDermatology: {
		Label:         "Dermatology / Wound Care",
		DefaultScopes: []Code{SkinWounds, Infection, Meds, Comfort},
	},
	SpecialtyEpilepsyNurse: {
		Label:         "Epilepsy Nurse",
		DefaultScopes: []Code{Seizures, Meds, Sleep, Comfort},
	},
	SpecialtyGastro: {
		Label:         "Gastro / Dietetics / SLT",
		DefaultScopes: []Code{Feeding, Infection, Meds},
	},
	SpecialtyPhysio: {
		Label:         "Physio / OT",
		DefaultScopes: []Code{Mobility, Comfort, CareAdmin},
	},
	SpecialtyOphthalmology: {
		Label:         "Ophthalmology",
		DefaultScopes: []Code{VisionComm, Mobility},
	},
	SpecialtyPalliative: {
		Label:         "Palliative Care",
		DefaultScopes: []Code{Comfort, Meds, Feeding, Sleep, CareAdmin},
	},
	SpecialtyOtherSpec: {
		Label:         "Other Specialist",
		DefaultScopes: []Code{CareAdmin},
	},
}

func ValidSpecialty(s Specialty) bool {
	_, ok := specialties[Specialty(strings.TrimSpace(string(s)))]
	return ok
}

func SpecialtyLabel(s Specialty) string {
	if info, ok := specialties[s]; ok {
		return info.Label
	}
	return string(s)
}

// DefaultScopesFor devuelve una copia de los scopes default de la especialidad.
func DefaultScopesFor(s Specialty) []Code {
	info, ok := specialties[s]
	if !ok {
		return nil
	}
	out := make([]Code, len(info.DefaultScopes))
	copy(out, info.DefaultScopes)
	return out
}

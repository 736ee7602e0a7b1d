package events

// EventType clasifica la observación registrada en el diario.
type EventType string

const (
	EventTypeSeizure    EventType = "SEIZURE"
	EventTypeSleep      EventType = "SLEEP"
	EventTypeFeeding    EventType = "FEEDING"
	EventTypeMedication EventType = "MEDICATION"
	EventTypeSymptom    EventType = "SYMPTOM"
	EventTypeNote       EventType = "NOTE"
)

func validType(t EventType) bool {
	switch t {
	case EventTypeSeizure, EventTypeSleep, EventTypeFeeding,
		EventTypeMedication, EventTypeSymptom, EventTypeNote:
		return true
	}
	return false
}

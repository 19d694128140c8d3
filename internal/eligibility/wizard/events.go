package wizard

import (
	"bytes"
	"encoding/json"

	"screening/internal/eligibility"
)

// EventType names a questionnaire interaction.
type EventType string

const (
	EventSetAge          EventType = "set_age"
	EventToggleExclusion EventType = "toggle_exclusion"
	EventToggleRisk      EventType = "toggle_risk"
	EventSetExclusions   EventType = "set_exclusions"
	EventSetRisks        EventType = "set_risks"
	EventNext            EventType = "next"
	EventBack            EventType = "back"
	EventNavigate        EventType = "navigate"
	EventReset           EventType = "reset"
)

// Event is one interaction. Value carries the age text, a toggled code or a
// requested step depending on Type; Codes carries whole selections.
// Unknown types leave the state unchanged.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value,omitempty"`
	Codes []string  `json:"codes,omitempty"`
}

// UnmarshalJSON never rejects an event. Value accepts a JSON string or number
// (a deep link may send {"value":3}); anything else becomes "". A non-string
// type or a non-object event decodes to an event the reducer ignores.
func (e *Event) UnmarshalJSON(data []byte) error {
	*e = Event{}
	var raw struct {
		Type  json.RawMessage     `json:"type"`
		Value json.RawMessage     `json:"value"`
		Codes eligibility.CodeSet `json:"codes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	e.Type = EventType(scalarText(raw.Type))
	e.Value = scalarText(raw.Value)
	if raw.Codes != nil {
		e.Codes = []string(raw.Codes)
	}
	return nil
}

func scalarText(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	return ""
}

func SetAge(raw string) Event {
	return Event{Type: EventSetAge, Value: raw}
}

func ToggleExclusion(code string) Event {
	return Event{Type: EventToggleExclusion, Value: code}
}

func ToggleRisk(code string) Event {
	return Event{Type: EventToggleRisk, Value: code}
}

func SetExclusions(codes ...string) Event {
	return Event{Type: EventSetExclusions, Codes: codes}
}

func SetRisks(codes ...string) Event {
	return Event{Type: EventSetRisks, Codes: codes}
}

func Next() Event {
	return Event{Type: EventNext}
}

func Back() Event {
	return Event{Type: EventBack}
}

// Navigate requests a jump, e.g. from a "?paso=3" deep link.
func Navigate(raw string) Event {
	return Event{Type: EventNavigate, Value: raw}
}

func Reset() Event {
	return Event{Type: EventReset}
}

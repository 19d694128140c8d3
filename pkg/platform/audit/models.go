package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers screening decisions handed to a person.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers access to protected endpoints.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity such as call-queue moves.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It never carries
// candidate answers (age, selected codes); only the resulting classification.
type Event struct {
	ID          string
	Category    EventCategory
	Timestamp   time.Time
	Action      string
	Outcome     string
	DeviceClass string
	Subject     string
	RequestID   string
}

type AuditEvent string

const (
	EventEligibilityEvaluated AuditEvent = "eligibility_evaluated"
	EventVideoTokenIssued     AuditEvent = "video_token_issued"
	EventAdminAccessDenied    AuditEvent = "admin_access_denied"
	EventCallClaimed          AuditEvent = "call_claimed"
	EventCallFinished         AuditEvent = "call_finished"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEligibilityEvaluated: CategoryCompliance,
	EventVideoTokenIssued:     CategorySecurity,
	EventAdminAccessDenied:    CategorySecurity,
	EventCallClaimed:          CategoryOperations,
	EventCallFinished:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

package audit

import (
	"context"
	"time"

	id "duediligence/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// onboarding decisions and account activation. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the authenticated reviewer or approver.
	ActorID id.UserID
	// Subject is the aggregate the event is about, e.g. an onboarding ID.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
}

type AuditEvent string

const (
	EventTemplatePublished AuditEvent = "template_published"
	EventOnboardingCreated AuditEvent = "onboarding_created"
	EventChecklistUpdated  AuditEvent = "checklist_updated"
	EventDecisionMade      AuditEvent = "decision_made"
	EventAccountActivated  AuditEvent = "account_activated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDecisionMade:      CategoryCompliance,
	EventAccountActivated:  CategoryCompliance,
	EventTemplatePublished: CategoryCompliance,

	EventOnboardingCreated: CategoryOperations,
	EventChecklistUpdated:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Outbox-backed stores join the caller's
// transaction when one is carried on the context.
type Store interface {
	Append(ctx context.Context, event Event) error
}

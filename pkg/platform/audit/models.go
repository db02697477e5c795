// Package audit records who changed what in the panel and, optionally, how
// visitors were classified by the jurisdiction resolver.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies events for retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to legally significant artifacts:
	// policy publication and deletion, widget deployment, client lifecycle.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventPolicyCreated    AuditEvent = "policy_created"
	EventPolicyUpdated    AuditEvent = "policy_updated"
	EventPolicyPublished  AuditEvent = "policy_published"
	EventPolicyDuplicated AuditEvent = "policy_duplicated"
	EventPolicyDeleted    AuditEvent = "policy_deleted"

	EventWidgetCreated    AuditEvent = "widget_created"
	EventWidgetUpdated    AuditEvent = "widget_updated"
	EventWidgetToggled    AuditEvent = "widget_toggled"
	EventWidgetDeployed   AuditEvent = "widget_deployed"
	EventWidgetDuplicated AuditEvent = "widget_duplicated"
	EventWidgetDeleted    AuditEvent = "widget_deleted"

	EventClientCreated     AuditEvent = "client_created"
	EventClientUpdated     AuditEvent = "client_updated"
	EventClientActivated   AuditEvent = "client_activated"
	EventClientDeactivated AuditEvent = "client_deactivated"
	EventClientDeleted     AuditEvent = "client_deleted"

	EventJurisdictionResolved AuditEvent = "jurisdiction_resolved"
)

var complianceEvents = map[AuditEvent]struct{}{
	EventPolicyPublished:   {},
	EventPolicyDeleted:     {},
	EventWidgetDeployed:    {},
	EventWidgetDeleted:     {},
	EventClientCreated:     {},
	EventClientDeactivated: {},
	EventClientDeleted:     {},
}

// Category returns the category of the event; unlisted events are operational.
func (e AuditEvent) Category() EventCategory {
	if _, ok := complianceEvents[e]; ok {
		return CategoryCompliance
	}
	return CategoryOperations
}

// Event is transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Action    AuditEvent    `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	// SubjectType is "policy", "widget", "client" or "jurisdiction".
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id,omitempty"`
	// Detail is a short machine-readable outcome, e.g. the new status or
	// the resolved country code.
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Publisher accepts events from services.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is a sink that persists or forwards events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

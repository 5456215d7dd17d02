package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/intake/internal/types"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []types.SourceRef
	Summary          string
	Category         string // "intake", "conflict", "availability", "export", "data"
	Actor            string
	Payload          json.RawMessage
}

// Event types.
const (
	TypeIntakeCreated          = "intake_created"
	TypeIntakeUpdated          = "intake_updated"
	TypeConflictCheckPerformed = "conflict_check_performed"
	TypeAvailabilityChanged    = "availability_changed"
	TypeExportGenerated        = "export_generated"
	TypeRecordsChanged         = "records_changed"
)

// Entity types referenced by events.
const (
	EntityLead    = "lead"
	EntityIntake  = "intake"
	EntityUser    = "user"
	EntityExport  = "export"
	EntityInvoice = "invoice"
	EntityPayment = "payment"
	EntityTime    = "time_entry"
	EntityMatter  = "matter"
)

// Now is the clock events are stamped with.
var Now = time.Now

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// short abbreviates an id for summaries.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ── Intake events ────────────────────────────────────────────────────────────

// IntakePayload carries event-specific data for IntakeCreated and
// IntakeUpdated.
type IntakePayload struct {
	IntakeID    string   `json:"intake_id"`
	LeadID      string   `json:"lead_id"`
	TypeOfLaw   string   `json:"type_of_law,omitempty"`
	MatterTypes []string `json:"matter_types,omitempty"`
}

func intakeEvent(eventType, verb, actor string, p IntakePayload) DomainEvent {
	refs := []types.SourceRef{{EntityType: EntityIntake, EntityID: p.IntakeID, Role: "subject"}}
	if p.LeadID != "" {
		refs = append(refs, types.SourceRef{EntityType: EntityLead, EntityID: p.LeadID, Role: "context"})
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        eventType,
		OccurredAt:       Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("Intake %s %s for lead %s", short(p.IntakeID), verb, short(p.LeadID)),
		Category:         "intake",
		Actor:            actor,
		Payload:          mustJSON(p),
	}
}

func NewIntakeCreated(actor string, p IntakePayload) DomainEvent {
	return intakeEvent(TypeIntakeCreated, "created", actor, p)
}

func NewIntakeUpdated(actor string, p IntakePayload) DomainEvent {
	return intakeEvent(TypeIntakeUpdated, "updated", actor, p)
}

// ── Conflict events ──────────────────────────────────────────────────────────

// ConflictCheckPayload carries event-specific data for ConflictCheckPerformed.
type ConflictCheckPayload struct {
	CheckID     string `json:"check_id"`
	LeadID      string `json:"lead_id"`
	Criteria    string `json:"criteria"`
	MatchCount  int    `json:"match_count"`
	HighestRisk int    `json:"highest_risk"`
	Saved       bool   `json:"saved"`
}

func NewConflictCheckPerformed(actor string, p ConflictCheckPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeConflictCheckPerformed,
		OccurredAt: Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: EntityLead, EntityID: p.LeadID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Conflict check on lead %s found %d matches", short(p.LeadID), p.MatchCount),
		Category: "conflict",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Availability events ──────────────────────────────────────────────────────

// AvailabilityChangedPayload carries event-specific data for AvailabilityChanged.
type AvailabilityChangedPayload struct {
	UserID   string `json:"user_id"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current"`
}

func NewAvailabilityChanged(actor string, p AvailabilityChangedPayload) DomainEvent {
	prev := p.Previous
	if prev == "" {
		prev = "unset"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeAvailabilityChanged,
		OccurredAt: Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: EntityUser, EntityID: p.UserID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("User %s availability %s → %s", short(p.UserID), prev, p.Current),
		Category: "availability",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Export events ────────────────────────────────────────────────────────────

// ExportGeneratedPayload carries event-specific data for ExportGenerated.
type ExportGeneratedPayload struct {
	Report   string `json:"report"`
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Key      string `json:"key,omitempty"` // archive key, when archived
}

func NewExportGenerated(actor string, p ExportGeneratedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeExportGenerated,
		OccurredAt: Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: EntityExport, EntityID: p.Report, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Exported %d rows to %s", p.Rows, p.Filename),
		Category: "export",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Data events ──────────────────────────────────────────────────────────────

// RecordsChangedPayload carries event-specific data for RecordsChanged.
type RecordsChangedPayload struct {
	EntityType string   `json:"entity_type"`
	IDs        []string `json:"ids"`
}

// NewRecordsChanged reports stored records written outside the intake flow,
// such as a load of invoices or time entries.
func NewRecordsChanged(actor string, p RecordsChangedPayload) DomainEvent {
	refs := make([]types.SourceRef, 0, len(p.IDs))
	for _, id := range p.IDs {
		refs = append(refs, types.SourceRef{EntityType: p.EntityType, EntityID: id, Role: "subject"})
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeRecordsChanged,
		OccurredAt:       Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("%d %s records changed", len(p.IDs), p.EntityType),
		Category:         "data",
		Actor:            actor,
		Payload:          mustJSON(p),
	}
}

// Touches reports whether evt references an entity of the given type.
func (evt DomainEvent) Touches(entityType string) bool {
	for _, ref := range evt.AffectedEntities {
		if ref.EntityType == entityType {
			return true
		}
	}
	return false
}

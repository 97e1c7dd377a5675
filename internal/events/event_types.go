package events

import (
	"time"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketNoteAdded     EventType = "ticket_note_added"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// AllEventTypes lists every lifecycle event, in publication order of a ticket's life.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketStatusChanged,
	EventTicketAssigned,
	EventTicketNoteAdded,
	EventTicketDeleted,
}

// Actor identifies who triggered the event.
type Actor struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Event represents a committed lifecycle change. Notification is the in-app notice
// written in the same transaction, if any.
type Event struct {
	ID              string               `json:"id"`
	Type            EventType            `json:"type"`
	TicketDisplayID string               `json:"ticket_display_id"`
	Actor           Actor                `json:"actor"`
	Timestamp       time.Time            `json:"timestamp"`
	Notification    *domain.Notification `json:"notification,omitempty"`
	Payload         interface{}          `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string                `json:"title"`
	Category   domain.TicketCategory `json:"category"`
	OfficeID   *int64                `json:"office_id,omitempty"`
	AssigneeID *string               `json:"assignee_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssigneeID *string `json:"previous_assignee_id,omitempty"`
	AssigneeID         string  `json:"assignee_id"`
}

// TicketNoteAddedPayload payload.
type TicketNoteAddedPayload struct {
	HistoryID   int64  `json:"history_id"`
	BodyPreview string `json:"body_preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title   string `json:"title"`
	OwnerID string `json:"owner_id"`
}

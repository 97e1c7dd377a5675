package domain

import "time"

// HistoryKind classifies a ledger entry.
type HistoryKind string

const (
	HistoryKindCreated       HistoryKind = "created"
	HistoryKindUpdated       HistoryKind = "updated"
	HistoryKindStatusChanged HistoryKind = "status_changed"
	HistoryKindAssigned      HistoryKind = "assigned"
	HistoryKindNote          HistoryKind = "note"
	HistoryKindDeleted       HistoryKind = "deleted"
)

// TicketHistory is an immutable audit trail entry. TicketID is cleared when the
// ticket is deleted; the snapshot fields keep the entry readable afterwards.
type TicketHistory struct {
	ID              int64
	TicketID        *int64
	TicketTitle     string
	TicketDisplayID string
	OwnerID         string
	ActorID         *string
	Kind            HistoryKind
	Action          string
	Note            string
	NewStatus       *TicketStatus
	Timestamp       time.Time
}

// Orphaned reports whether the referenced ticket no longer exists.
func (h *TicketHistory) Orphaned() bool {
	return h.TicketID == nil
}

// NotesOf filters staff notes out of a history listing.
func NotesOf(entries []TicketHistory) []TicketHistory {
	notes := make([]TicketHistory, 0)
	for _, entry := range entries {
		if entry.Kind == HistoryKindNote {
			notes = append(notes, entry)
		}
	}
	return notes
}

package dto

import (
	"time"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// TicketSubmissionRequest is a category form. Field keys follow the form, e.g.
// "issueType" or "itemDescription".
type TicketSubmissionRequest struct {
	Category domain.TicketCategory `json:"category"`
	Fields   map[string]string     `json:"fields"`
	Photo    *AttachmentRequest    `json:"photo"`
}

// AttachmentRequest references an already uploaded blob.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// NoteRequest payload.
type NoteRequest struct {
	Note string `json:"note"`
}

// TicketResponse describes one ticket.
type TicketResponse struct {
	ID               int64                       `json:"id"`
	DisplayID        string                      `json:"display_id"`
	Title            string                      `json:"title"`
	Description      string                      `json:"description"`
	Category         domain.TicketCategory       `json:"category"`
	Status           domain.TicketStatus         `json:"status"`
	StatusLabel      string                      `json:"status_label"`
	Urgency          *domain.TicketUrgency       `json:"urgency,omitempty"`
	Details          domain.TicketDetails        `json:"details"`
	Attachment       *domain.AttachmentReference `json:"attachment,omitempty"`
	CreatedBy        string                      `json:"created_by"`
	AssignedTo       *string                     `json:"assigned_to"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	LastViewedByUser *time.Time                  `json:"last_viewed_by_user,omitempty"`
	LastAdminUpdate  *time.Time                  `json:"last_admin_update,omitempty"`
	HasUnreadUpdates bool                        `json:"has_unread_updates"`
}

// TicketBucketsResponse partitions a listing by status.
type TicketBucketsResponse struct {
	Open       []TicketResponse `json:"open"`
	InProgress []TicketResponse `json:"in_progress"`
	Completed  []TicketResponse `json:"completed"`
}

// TicketHistoryResponse is one ledger line.
type TicketHistoryResponse struct {
	ID              int64                `json:"id"`
	TicketID        *int64               `json:"ticket_id"`
	TicketTitle     string               `json:"ticket_title"`
	TicketDisplayID string               `json:"ticket_display_id"`
	Kind            domain.HistoryKind   `json:"kind"`
	Action          string               `json:"action"`
	Note            string               `json:"note,omitempty"`
	NewStatus       *domain.TicketStatus `json:"new_status,omitempty"`
	Orphaned        bool                 `json:"orphaned"`
	Timestamp       time.Time            `json:"timestamp"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	Ticket    TicketResponse          `json:"ticket"`
	History   []TicketHistoryResponse `json:"history"`
	Notes     []TicketHistoryResponse `json:"notes"`
	NoteCount int                     `json:"note_count"`
}

// WarningResponse reports a mail that could not be delivered after a successful change.
type WarningResponse struct {
	Code      string `json:"code"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

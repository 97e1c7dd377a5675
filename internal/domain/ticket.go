package domain

import (
	"fmt"
	"time"
)

// TicketCategory enumerates the kinds of requests students can submit.
type TicketCategory string

const (
	CategoryAcademic   TicketCategory = "academic"
	CategoryTechnical  TicketCategory = "technical"
	CategoryFacilities TicketCategory = "facilities"
	CategoryLostFound  TicketCategory = "lostfound"
	CategoryWelfare    TicketCategory = "welfare"
)

// Categories lists every accepted category in display order.
var Categories = []TicketCategory{
	CategoryAcademic,
	CategoryTechnical,
	CategoryFacilities,
	CategoryLostFound,
	CategoryWelfare,
}

// IsValid reports whether c belongs to the closed category set.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusCompleted  TicketStatus = "completed"
)

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusCompleted:
		return true
	}
	return false
}

// Label is the human readable form used in history lines and notices.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusOpen:
		return "Open"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusCompleted:
		return "Completed"
	}
	return string(s)
}

// TicketUrgency is only collected for facilities requests.
type TicketUrgency string

const (
	UrgencyLow    TicketUrgency = "low"
	UrgencyMedium TicketUrgency = "medium"
	UrgencyHigh   TicketUrgency = "high"
)

// AttachmentReference points at an uploaded blob; storage itself lives elsewhere.
type AttachmentReference struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               int64
	Title            string
	Description      string
	Category         TicketCategory
	Status           TicketStatus
	Urgency          *TicketUrgency
	Details          TicketDetails
	Attachment       *AttachmentReference
	CreatedBy        string
	AssignedTo       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastViewedByUser *time.Time
	LastAdminUpdate  *time.Time
}

// DisplayID renders the id zero padded to at least four digits.
func (t *Ticket) DisplayID() string {
	return FormatDisplayID(t.ID)
}

// FormatDisplayID is DisplayID for callers that only hold the numeric id.
func FormatDisplayID(id int64) string {
	return fmt.Sprintf("%04d", id)
}

// HasUnreadStaffResponse is true when staff touched the ticket after the owner last looked at it.
func (t *Ticket) HasUnreadStaffResponse() bool {
	if t.LastAdminUpdate == nil {
		return false
	}
	if t.LastViewedByUser == nil {
		return true
	}
	return t.LastViewedByUser.Before(*t.LastAdminUpdate)
}

// TicketBuckets partitions a listing by status, each bucket newest first.
type TicketBuckets struct {
	Open       []Ticket
	InProgress []Ticket
	Completed  []Ticket
}

// PartitionTickets splits tickets by status preserving their order.
func PartitionTickets(tickets []Ticket) TicketBuckets {
	buckets := TicketBuckets{
		Open:       []Ticket{},
		InProgress: []Ticket{},
		Completed:  []Ticket{},
	}
	for _, ticket := range tickets {
		switch ticket.Status {
		case TicketStatusOpen:
			buckets.Open = append(buckets.Open, ticket)
		case TicketStatusInProgress:
			buckets.InProgress = append(buckets.InProgress, ticket)
		case TicketStatusCompleted:
			buckets.Completed = append(buckets.Completed, ticket)
		}
	}
	return buckets
}

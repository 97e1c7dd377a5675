package dto

import (
	"time"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// NotificationResponse describes one notice.
type NotificationResponse struct {
	ID              int64                   `json:"id"`
	TicketID        *int64                  `json:"ticket_id"`
	TicketDisplayID string                  `json:"ticket_display_id,omitempty"`
	Type            domain.NotificationType `json:"notification_type"`
	Title           string                  `json:"title"`
	Message         string                  `json:"message"`
	IsRead          bool                    `json:"is_read"`
	CreatedAt       time.Time               `json:"created_at"`
}

// NotificationListResponse is a page of notices with the unread total.
type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int64                  `json:"unread_count"`
}

// MarkReadResponse reports how many notices changed.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

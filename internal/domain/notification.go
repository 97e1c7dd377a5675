package domain

import "time"

// NotificationType enumerates the notices the lifecycle can emit.
type NotificationType string

const (
	NotificationTicketCreated   NotificationType = "ticket_created"
	NotificationTicketUpdated   NotificationType = "ticket_updated"
	NotificationTicketAssigned  NotificationType = "ticket_assigned"
	NotificationTicketCompleted NotificationType = "ticket_completed"
	NotificationTicketResponse  NotificationType = "ticket_response"
)

// Notification is a per-user notice. Only IsRead changes after creation.
type Notification struct {
	ID              int64
	RecipientID     string
	TicketID        *int64
	TicketDisplayID string
	Type            NotificationType
	Title           string
	Message         string
	IsRead          bool
	CreatedAt       time.Time
}

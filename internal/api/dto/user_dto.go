package dto

import "time"

// OfficeResponse describes an office.
type OfficeResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StaffMemberResponse describes a staff member who can take a ticket.
type StaffMemberResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	OfficeID *int64 `json:"office_id"`
}

// MeResponse describes the caller.
type MeResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	IsSuperuser bool            `json:"is_superuser"`
	IsStaff     bool            `json:"is_staff"`
	Office      *OfficeResponse `json:"office,omitempty"`
	UnreadCount int64           `json:"unread_count"`
}

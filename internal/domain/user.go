package domain

import "time"

// Office is an organizational unit that handles one or more ticket categories.
type Office struct {
	ID           int64
	Name         string
	ContactEmail string
	CreatedAt    time.Time
}

// User is anyone who can sign in: students, office staff and superusers.
// Staff carry exactly one office affiliation.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsSuperuser  bool
	OfficeID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user acts on behalf of an office.
func (u *User) IsStaff() bool {
	return u.IsSuperuser || u.OfficeID != nil
}

// DisplayName falls back to the email when no name was recorded.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// StaffProfile ties a staff user to the office they work for.
type StaffProfile struct {
	UserID    string
	OfficeID  int64
	CreatedAt time.Time
}

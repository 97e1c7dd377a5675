package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TicketDetails holds the structured, category specific part of a ticket.
// Exactly one variant exists per category.
type TicketDetails interface {
	Category() TicketCategory
}

// TechnicalDetails captures a technical support request.
type TechnicalDetails struct {
	IssueType string `json:"issue_type"`
}

func (TechnicalDetails) Category() TicketCategory { return CategoryTechnical }

// AcademicDetails captures a registrar inquiry. The question itself is the ticket description.
type AcademicDetails struct {
	ProgramYear string `json:"program_year"`
	InquiryType string `json:"inquiry_type"`
}

func (AcademicDetails) Category() TicketCategory { return CategoryAcademic }

// LostFoundDetails captures a lost or found item report.
type LostFoundDetails struct {
	Department string    `json:"department"`
	Location   string    `json:"location"`
	DateTime   time.Time `json:"date_time"`
}

func (LostFoundDetails) Category() TicketCategory { return CategoryLostFound }

// WelfareDetails captures a guidance or counselling request.
type WelfareDetails struct {
	ContactMethod string     `json:"contact_method"`
	RequestType   string     `json:"request_type"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
}

func (WelfareDetails) Category() TicketCategory { return CategoryWelfare }

// FacilitiesDetails captures a physical plant issue.
type FacilitiesDetails struct {
	Location  string        `json:"location"`
	IssueType string        `json:"issue_type"`
	Urgency   TicketUrgency `json:"urgency"`
}

func (FacilitiesDetails) Category() TicketCategory { return CategoryFacilities }

// MarshalDetails encodes details for the JSONB column.
func MarshalDetails(details TicketDetails) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}

// UnmarshalDetails decodes the JSONB column into the variant matching category.
func UnmarshalDetails(category TicketCategory, raw []byte) (TicketDetails, error) {
	var target TicketDetails
	var err error
	switch category {
	case CategoryTechnical:
		var d TechnicalDetails
		err = decodeDetails(raw, &d)
		target = d
	case CategoryAcademic:
		var d AcademicDetails
		err = decodeDetails(raw, &d)
		target = d
	case CategoryLostFound:
		var d LostFoundDetails
		err = decodeDetails(raw, &d)
		target = d
	case CategoryWelfare:
		var d WelfareDetails
		err = decodeDetails(raw, &d)
		target = d
	case CategoryFacilities:
		var d FacilitiesDetails
		err = decodeDetails(raw, &d)
		target = d
	default:
		return nil, fmt.Errorf("unknown ticket category %q", category)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s details: %w", category, err)
	}
	return target, nil
}

func decodeDetails(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

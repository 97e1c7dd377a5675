package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

func validationDetails(t *testing.T, err error) map[string]any {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, apperrors.CodeValidation, domainErr.Code)
	return domainErr.Details
}

func TestPrepareReportsEveryFailingField(t *testing.T) {
	forms := NewTicketForms()
	_, err := forms.Prepare(TicketSubmission{
		Category: domain.CategoryFacilities,
		Fields: map[string]string{
			"title":     "Broken chair",
			"issueType": "wobbly",
			"urgency":   "critical",
		},
	})
	details := validationDetails(t, err)
	assert.Len(t, details, 4)
	assert.Equal(t, "location is required", details["location"])
	assert.Equal(t, "description is required", details["description"])
	assert.Contains(t, details["issueType"], "must be one of")
	assert.Contains(t, details["urgency"], "must be one of")
}

func TestPrepareRejectsUnknownCategory(t *testing.T) {
	_, err := NewTicketForms().Prepare(TicketSubmission{Category: "general"})
	details := validationDetails(t, err)
	assert.Contains(t, details, "category")
}

func TestPrepareStripsMarkup(t *testing.T) {
	prepared, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryTechnical,
		Fields: map[string]string{
			"title":       "  <script>alert(1)</script>Wi-Fi &amp; printer ",
			"description": "<p>No signal in room 204</p>",
			"issueType":   "hardware",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Wi-Fi & printer", prepared.Title)
	assert.Equal(t, "No signal in room 204", prepared.Description)
}

func TestPrepareMarkupOnlyFieldIsMissing(t *testing.T) {
	_, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryTechnical,
		Fields:   map[string]string{"title": "<b></b>", "description": "x", "issueType": "other"},
	})
	details := validationDetails(t, err)
	assert.Contains(t, details, "title")
}

func TestPrepareAcademicUsesQuestionAsDescription(t *testing.T) {
	prepared, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryAcademic,
		Fields: map[string]string{
			"title":       "Missing grade",
			"programYear": "BSIT 2",
			"inquiryType": "grades",
			"question":    "My midterm grade is not posted",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "My midterm grade is not posted", prepared.Description)
	assert.Equal(t, domain.AcademicDetails{ProgramYear: "BSIT 2", InquiryType: "grades"}, prepared.Details)
}

func TestPrepareLengthLimits(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryFacilities,
		Fields: map[string]string{
			"title":       "Leak",
			"location":    string(long),
			"issueType":   "plumbing",
			"description": "Water on the floor",
			"urgency":     "high",
		},
	})
	details := validationDetails(t, err)
	assert.Equal(t, "location must be at most 100 characters long", details["location"])
}

func TestPrepareFacilitiesCopiesUrgencyAndPhoto(t *testing.T) {
	photo := &domain.AttachmentReference{StorageKey: "uploads/leak.jpg", FileName: "leak.jpg", MimeType: "image/jpeg", SizeBytes: 2048}
	prepared, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryFacilities,
		Fields: map[string]string{
			"title":       "Leak",
			"location":    "Gym",
			"issueType":   "plumbing",
			"description": "Water on the floor",
			"urgency":     "high",
		},
		Photo: photo,
	})
	require.NoError(t, err)
	require.NotNil(t, prepared.Urgency)
	assert.Equal(t, domain.UrgencyHigh, *prepared.Urgency)
	assert.Equal(t, photo, prepared.Attachment)
}

func TestPreparePhotoOnlyWhereAccepted(t *testing.T) {
	photo := &domain.AttachmentReference{StorageKey: "uploads/x.png"}
	_, err := NewTicketForms().Prepare(TicketSubmission{
		Category: domain.CategoryTechnical,
		Fields:   map[string]string{"title": "a", "description": "b", "issueType": "login"},
		Photo:    photo,
	})
	details := validationDetails(t, err)
	assert.Contains(t, details, "photo")
}

func TestPrepareLostFoundDates(t *testing.T) {
	forms := NewTicketForms()
	fields := func(when string) map[string]string {
		return map[string]string{
			"title":           "Found wallet",
			"department":      "shs",
			"itemDescription": "Brown leather wallet",
			"location":        "Canteen",
			"dateTime":        when,
		}
	}

	prepared, err := forms.Prepare(TicketSubmission{Category: domain.CategoryLostFound, Fields: fields("2024-09-01T13:45")})
	require.NoError(t, err)
	details := prepared.Details.(domain.LostFoundDetails)
	assert.Equal(t, time.Date(2024, 9, 1, 13, 45, 0, 0, time.UTC), details.DateTime)
	assert.Equal(t, "Brown leather wallet", prepared.Description)

	_, err = forms.Prepare(TicketSubmission{Category: domain.CategoryLostFound, Fields: fields("2024-09-01T13:45:00+08:00")})
	require.NoError(t, err)

	_, err = forms.Prepare(TicketSubmission{Category: domain.CategoryLostFound, Fields: fields("yesterday")})
	assert.Contains(t, validationDetails(t, err), "dateTime")
}

func TestPrepareWelfarePreferredDate(t *testing.T) {
	forms := NewTicketForms()
	sub := TicketSubmission{
		Category: domain.CategoryWelfare,
		Fields: map[string]string{
			"title":         "Peer support",
			"contactMethod": "inperson",
			"requestType":   "peer",
			"description":   "Looking for a peer group",
		},
	}
	prepared, err := forms.Prepare(sub)
	require.NoError(t, err)
	assert.Nil(t, prepared.Details.(domain.WelfareDetails).PreferredDate)

	sub.Fields["preferredDate"] = "2024-10-02"
	prepared, err = forms.Prepare(sub)
	require.NoError(t, err)
	preferred := prepared.Details.(domain.WelfareDetails).PreferredDate
	require.NotNil(t, preferred)
	assert.Equal(t, "2024-10-02", preferred.Format("2006-01-02"))

	sub.Fields["preferredDate"] = "02/10/2024"
	_, err = forms.Prepare(sub)
	assert.Contains(t, validationDetails(t, err), "preferredDate")
}

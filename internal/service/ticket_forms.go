package service

import (
	"fmt"
	"html"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

const (
	lostFoundDateTimeLayout = "2006-01-02T15:04"
	preferredDateLayout     = "2006-01-02"
)

// TicketSubmission is the raw category form a student fills in.
type TicketSubmission struct {
	Category domain.TicketCategory
	Fields   map[string]string
	Photo    *domain.AttachmentReference
}

// PreparedTicket is a validated submission ready to be stored.
type PreparedTicket struct {
	Title       string
	Description string
	Details     domain.TicketDetails
	Urgency     *domain.TicketUrgency
	Attachment  *domain.AttachmentReference
}

type technicalForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	IssueType   string `json:"issueType" validate:"required,oneof=login software hardware other"`
}

type academicForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	ProgramYear string `json:"programYear" validate:"required,max=50"`
	InquiryType string `json:"inquiryType" validate:"required,oneof=enrollment grades schedule curriculum other"`
	Question    string `json:"question" validate:"required"`
}

type lostFoundForm struct {
	Title           string `json:"title" validate:"required,max=200"`
	Department      string `json:"department" validate:"required,oneof=jhs shs college"`
	ItemDescription string `json:"itemDescription" validate:"required"`
	Location        string `json:"location" validate:"required,max=100"`
	DateTime        string `json:"dateTime" validate:"required"`
	Notes           string `json:"notes"`
}

type welfareForm struct {
	Title         string `json:"title" validate:"required,max=200"`
	ContactMethod string `json:"contactMethod" validate:"required,oneof=email phone inperson"`
	RequestType   string `json:"requestType" validate:"required,oneof=academic personal mental peer other"`
	Description   string `json:"description" validate:"required"`
	PreferredDate string `json:"preferredDate"`
}

type facilitiesForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Location    string `json:"location" validate:"required,max=100"`
	IssueType   string `json:"issueType" validate:"required,oneof=electrical plumbing furniture it safety other"`
	Description string `json:"description" validate:"required"`
	Urgency     string `json:"urgency" validate:"required,oneof=low medium high"`
}

// TicketForms validates and normalises category forms.
type TicketForms struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewTicketForms builds the form validator.
func NewTicketForms() *TicketForms {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &TicketForms{validate: v, policy: bluemonday.StrictPolicy()}
}

// Prepare validates a submission against its category form. Every failing field is
// reported at once in the error details.
func (f *TicketForms) Prepare(sub TicketSubmission) (*PreparedTicket, error) {
	if !sub.Category.IsValid() {
		return nil, apperrors.NewValidationError("invalid ticket", map[string]any{
			"category": fmt.Sprintf("category must be one of %v", domain.Categories),
		})
	}
	field := func(name string) string {
		return f.clean(sub.Fields[name])
	}

	switch sub.Category {
	case domain.CategoryTechnical:
		form := technicalForm{Title: field("title"), Description: field("description"), IssueType: field("issueType")}
		if problems := f.check(form); len(problems) > 0 {
			return nil, invalidTicket(problems)
		}
		if sub.Photo != nil {
			return nil, photoNotAccepted()
		}
		return &PreparedTicket{
			Title:       form.Title,
			Description: form.Description,
			Details:     domain.TechnicalDetails{IssueType: form.IssueType},
		}, nil

	case domain.CategoryAcademic:
		form := academicForm{
			Title:       field("title"),
			ProgramYear: field("programYear"),
			InquiryType: field("inquiryType"),
			Question:    field("question"),
		}
		if problems := f.check(form); len(problems) > 0 {
			return nil, invalidTicket(problems)
		}
		if sub.Photo != nil {
			return nil, photoNotAccepted()
		}
		return &PreparedTicket{
			Title:       form.Title,
			Description: form.Question,
			Details:     domain.AcademicDetails{ProgramYear: form.ProgramYear, InquiryType: form.InquiryType},
		}, nil

	case domain.CategoryLostFound:
		form := lostFoundForm{
			Title:           field("title"),
			Department:      field("department"),
			ItemDescription: field("itemDescription"),
			Location:        field("location"),
			DateTime:        field("dateTime"),
			Notes:           field("notes"),
		}
		problems := f.check(form)
		var when time.Time
		if form.DateTime != "" {
			parsed, err := parseDateTime(form.DateTime)
			if err != nil {
				problems["dateTime"] = "dateTime must look like 2006-01-02T15:04"
			}
			when = parsed
		}
		if len(problems) > 0 {
			return nil, invalidTicket(problems)
		}
		description := form.ItemDescription
		if form.Notes != "" {
			description += "\n\nNotes: " + form.Notes
		}
		return &PreparedTicket{
			Title:       form.Title,
			Description: description,
			Details:     domain.LostFoundDetails{Department: form.Department, Location: form.Location, DateTime: when},
			Attachment:  sub.Photo,
		}, nil

	case domain.CategoryWelfare:
		form := welfareForm{
			Title:         field("title"),
			ContactMethod: field("contactMethod"),
			RequestType:   field("requestType"),
			Description:   field("description"),
			PreferredDate: field("preferredDate"),
		}
		problems := f.check(form)
		var preferred *time.Time
		if form.PreferredDate != "" {
			parsed, err := time.Parse(preferredDateLayout, form.PreferredDate)
			if err != nil {
				problems["preferredDate"] = "preferredDate must look like 2006-01-02"
			} else {
				preferred = &parsed
			}
		}
		if len(problems) > 0 {
			return nil, invalidTicket(problems)
		}
		if sub.Photo != nil {
			return nil, photoNotAccepted()
		}
		return &PreparedTicket{
			Title:       form.Title,
			Description: form.Description,
			Details: domain.WelfareDetails{
				ContactMethod: form.ContactMethod,
				RequestType:   form.RequestType,
				PreferredDate: preferred,
			},
		}, nil

	default: // facilities
		form := facilitiesForm{
			Title:       field("title"),
			Location:    field("location"),
			IssueType:   field("issueType"),
			Description: field("description"),
			Urgency:     field("urgency"),
		}
		if problems := f.check(form); len(problems) > 0 {
			return nil, invalidTicket(problems)
		}
		urgency := domain.TicketUrgency(form.Urgency)
		return &PreparedTicket{
			Title:       form.Title,
			Description: form.Description,
			Details:     domain.FacilitiesDetails{Location: form.Location, IssueType: form.IssueType, Urgency: urgency},
			Urgency:     &urgency,
			Attachment:  sub.Photo,
		}, nil
	}
}

// clean strips markup and surrounding whitespace from free text.
func (f *TicketForms) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(value)))
}

func (f *TicketForms) check(form any) map[string]any {
	problems := map[string]any{}
	err := f.validate.Struct(form)
	if err == nil {
		return problems
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		problems["form"] = err.Error()
		return problems
	}
	for _, fe := range validationErrors {
		problems[fe.Field()] = fieldErrorMessage(fe)
	}
	return problems
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation for '%s'", fe.Field(), fe.Tag())
	}
}

func parseDateTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(lostFoundDateTimeLayout, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}

func invalidTicket(problems map[string]any) error {
	return apperrors.NewValidationError("invalid ticket", problems)
}

func photoNotAccepted() error {
	return invalidTicket(map[string]any{"photo": "photo is not accepted for this category"})
}

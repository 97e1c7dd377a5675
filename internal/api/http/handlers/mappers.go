package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-helpdesk/internal/api/dto"
	"github.com/spec-kit/campus-helpdesk/internal/auth"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/service"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user := auth.UserFromContext(c)
	if user == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return user, nil
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func submissionFromRequest(req dto.TicketSubmissionRequest) service.TicketSubmission {
	sub := service.TicketSubmission{
		Category: req.Category,
		Fields:   req.Fields,
	}
	if req.Photo != nil {
		sub.Photo = &domain.AttachmentReference{
			StorageKey: req.Photo.StorageKey,
			FileName:   req.Photo.FileName,
			MimeType:   req.Photo.MimeType,
			SizeBytes:  req.Photo.SizeBytes,
		}
	}
	return sub
}

// withWarnings renders a success body, adding mail failures when there are any.
func withWarnings(data any, warnings []*apperrors.NotificationDeliveryWarning) fiber.Map {
	body := fiber.Map{"data": data}
	if len(warnings) == 0 {
		return body
	}
	items := make([]dto.WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		items = append(items, dto.WarningResponse{
			Code:      "NOTIFICATION_DELIVERY_FAILED",
			Recipient: w.Recipient,
			Message:   w.Error(),
		})
	}
	body["warnings"] = items
	return body
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		DisplayID:        ticket.DisplayID(),
		Title:            ticket.Title,
		Description:      ticket.Description,
		Category:         ticket.Category,
		Status:           ticket.Status,
		StatusLabel:      ticket.Status.Label(),
		Urgency:          ticket.Urgency,
		Details:          ticket.Details,
		Attachment:       ticket.Attachment,
		CreatedBy:        ticket.CreatedBy,
		AssignedTo:       ticket.AssignedTo,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		LastViewedByUser: ticket.LastViewedByUser,
		LastAdminUpdate:  ticket.LastAdminUpdate,
		HasUnreadUpdates: ticket.HasUnreadStaffResponse(),
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	resp := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		resp = append(resp, ticketResponse(&tickets[i]))
	}
	return resp
}

func bucketsResponse(buckets domain.TicketBuckets) dto.TicketBucketsResponse {
	return dto.TicketBucketsResponse{
		Open:       ticketResponses(buckets.Open),
		InProgress: ticketResponses(buckets.InProgress),
		Completed:  ticketResponses(buckets.Completed),
	}
}

func historyResponse(entry *domain.TicketHistory) dto.TicketHistoryResponse {
	return dto.TicketHistoryResponse{
		ID:              entry.ID,
		TicketID:        entry.TicketID,
		TicketTitle:     entry.TicketTitle,
		TicketDisplayID: entry.TicketDisplayID,
		Kind:            entry.Kind,
		Action:          entry.Action,
		Note:            entry.Note,
		NewStatus:       entry.NewStatus,
		Orphaned:        entry.Orphaned(),
		Timestamp:       entry.Timestamp,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, historyResponse(&entries[i]))
	}
	return resp
}

func ticketDetailResponse(detail *service.TicketDetail) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		Ticket:    ticketResponse(detail.Ticket),
		History:   historyResponses(detail.History),
		Notes:     historyResponses(detail.Notes),
		NoteCount: len(detail.Notes),
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:              n.ID,
		TicketID:        n.TicketID,
		TicketDisplayID: n.TicketDisplayID,
		Type:            n.Type,
		Title:           n.Title,
		Message:         n.Message,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt,
	}
}

func notificationListResponse(list *service.NotificationList) dto.NotificationListResponse {
	items := make([]dto.NotificationResponse, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, notificationResponse(&list.Items[i]))
	}
	return dto.NotificationListResponse{Items: items, UnreadCount: list.UnreadCount}
}

func officeResponse(office *domain.Office) *dto.OfficeResponse {
	if office == nil {
		return nil
	}
	return &dto.OfficeResponse{
		ID:           office.ID,
		Name:         office.Name,
		ContactEmail: office.ContactEmail,
		CreatedAt:    office.CreatedAt,
	}
}

func staffMemberResponses(users []domain.User) []dto.StaffMemberResponse {
	resp := make([]dto.StaffMemberResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, dto.StaffMemberResponse{
			ID:       user.ID,
			Name:     user.DisplayName(),
			Email:    user.Email,
			OfficeID: user.OfficeID,
		})
	}
	return resp
}

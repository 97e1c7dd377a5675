package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-helpdesk/internal/api/dto"
	"github.com/spec-kit/campus-helpdesk/internal/service"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// StaffTicketsHandler exposes the office dashboard endpoints.
type StaffTicketsHandler struct {
	service *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{service: ticketService}
}

// ListTickets GET /staff/tickets?scope=office|all.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	scope := service.ListScope(strings.ToLower(c.Query("scope", string(service.ScopeOffice))))
	if scope == service.ScopeOwn {
		return apperrors.NewValidationError("invalid scope", map[string]any{
			"scope": "scope must be one of [office all]",
		})
	}
	buckets, err := h.service.ListTickets(c.UserContext(), user, scope)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bucketsResponse(buckets)})
}

// GetTicket GET /staff/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicketDetail(c.UserContext(), user, id, service.AccessPathStaff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(detail)})
}

// UpdateStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.UpdateTicketStatus(c.UserContext(), user, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(ticketResponse(result.Ticket), result.Warnings))
}

// Assign POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.AssignTicket(c.UserContext(), user, id, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(ticketResponse(result.Ticket), result.Warnings))
}

// ListAssignees GET /staff/tickets/:id/assignees.
func (h *StaffTicketsHandler) ListAssignees(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	staff, err := h.service.ListAssignees(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffMemberResponses(staff)})
}

// AddNote POST /staff/tickets/:id/notes.
func (h *StaffTicketsHandler) AddNote(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.AddNote(c.UserContext(), user, id, req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(withWarnings(historyResponse(result.Entry), result.Warnings))
}

// DeleteTicket DELETE /staff/tickets/:id.
func (h *StaffTicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	return deleteTicket(c, h.service, service.AccessPathStaff)
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-helpdesk/internal/api/dto"
	"github.com/spec-kit/campus-helpdesk/internal/service"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// TicketsHandler manages the ticket owner's endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TicketSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.CreateTicket(c.UserContext(), user, submissionFromRequest(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(withWarnings(ticketResponse(result.Ticket), result.Warnings))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	buckets, err := h.service.ListTickets(c.UserContext(), user, service.ScopeOwn)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bucketsResponse(buckets)})
}

// ListHistory GET /tickets/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListOwnerHistory(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// GetTicket GET /tickets/:id. Viewing marks the ticket's notices read.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicketDetail(c.UserContext(), user, id, service.AccessPathOwner)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(detail)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.TicketSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.UpdateTicket(c.UserContext(), user, id, submissionFromRequest(req))
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(ticketResponse(result.Ticket), result.Warnings))
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	return deleteTicket(c, h.service, service.AccessPathOwner)
}

func deleteTicket(c *fiber.Ctx, svc *service.TicketService, path service.AccessPath) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	result, err := svc.DeleteTicket(c.UserContext(), user, id, path)
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(historyResponse(result.Entry), result.Warnings))
}

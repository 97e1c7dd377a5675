package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-helpdesk/internal/api/dto"
	"github.com/spec-kit/campus-helpdesk/internal/service"
)

// MeHandler describes the authenticated caller and the office directory.
type MeHandler struct {
	staff         *service.StaffService
	notifications *service.NotificationService
}

// NewMeHandler constructs handler.
func NewMeHandler(staffService *service.StaffService, notificationService *service.NotificationService) *MeHandler {
	return &MeHandler{staff: staffService, notifications: notificationService}
}

// Me GET /me.
func (h *MeHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	office, err := h.staff.OfficeOf(c.UserContext(), user)
	if err != nil {
		return err
	}
	unread, err := h.notifications.UnreadCount(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		ID:          user.ID,
		Name:        user.DisplayName(),
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		IsStaff:     user.IsStaff(),
		Office:      officeResponse(office),
		UnreadCount: unread,
	}})
}

// ListOffices GET /staff/offices.
func (h *MeHandler) ListOffices(c *fiber.Ctx) error {
	offices, err := h.staff.ListOffices(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]*dto.OfficeResponse, 0, len(offices))
	for i := range offices {
		resp = append(resp, officeResponse(&offices[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

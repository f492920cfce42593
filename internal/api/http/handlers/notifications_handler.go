package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/api/dto"
	"github.com/spec-kit/logistics-realtime/internal/service"
	apperrors "github.com/spec-kit/logistics-realtime/pkg/util/errorutil"
)

// NotificationsHandler pushes pre-built notification payloads straight to a
// user's realtime channel.
type NotificationsHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationsHandler returns a new handler instance.
func NewNotificationsHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, logger: logger}
}

// Post delivers a notification to one user.
func (h *NotificationsHandler) Post(c *fiber.Ctx) error {
	var req dto.NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.notifications.Deliver(c.UserContext(), req.UserID, req.Notification); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/api/dto"
	"github.com/spec-kit/logistics-realtime/internal/events"
	apperrors "github.com/spec-kit/logistics-realtime/pkg/util/errorutil"
)

// EventsHandler is the ingest surface external collaborators call after
// persisting a state change. It decodes, validates, and publishes; the
// notification service does the rest through plain function calls.
type EventsHandler struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewEventsHandler returns a new handler instance.
func NewEventsHandler(dispatcher events.Dispatcher, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{dispatcher: dispatcher, logger: logger}
}

// PostBid ingests a bid lifecycle event.
func (h *EventsHandler) PostBid(c *fiber.Ctx) error {
	var req dto.BidEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	event := req.ToEvent()
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"event_id": event.ID})
}

// PostShipment ingests a shipment lifecycle event.
func (h *EventsHandler) PostShipment(c *fiber.Ctx) error {
	var req dto.ShipmentEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	event := req.ToEvent()
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"event_id": event.ID})
}

// PostPayment ingests a payment event.
func (h *EventsHandler) PostPayment(c *fiber.Ctx) error {
	var req dto.PaymentEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	event := req.ToEvent()
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"event_id": event.ID})
}

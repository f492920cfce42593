package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/api/http/handlers"
	"github.com/spec-kit/logistics-realtime/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Events         *handlers.EventsHandler
	Notifications  *handlers.NotificationsHandler
	Socket         *realtime.SocketHandler
	InternalAPIKey string
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/ws", cfg.Socket.UpgradeGate, cfg.Socket.Handler())

	internal := app.Group("/internal", InternalAuth(cfg.InternalAPIKey, cfg.Logger))
	internal.Post("/events/bid", cfg.Events.PostBid)
	internal.Post("/events/shipment", cfg.Events.PostShipment)
	internal.Post("/events/payment", cfg.Events.PostPayment)
	internal.Post("/notifications", cfg.Notifications.Post)
}

package routes

import (
	"foodia-handoff/internal/api/handlers"
	"foodia-handoff/internal/middleware"
	"foodia-handoff/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                *fiber.App
	TransactionHandler handlers.TransactionHandler
	TrackingHandler    handlers.TrackingHandler
	HandoffHandler     handlers.HandoffHandler
	ShareHandler       handlers.ShareHandler
	RouteHandler       handlers.RouteHandler
	Middleware         middleware.Middleware
	JWTService         jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Transactions()
	c.Geocode()
	c.GuestRoute()
}

func (c *Config) Transactions() {
	transactions := c.App.Group("/api/v1/transactions", c.Middleware.AuthMiddleware(c.JWTService))
	// lifecycle
	{
		transactions.Get("/:id", c.TransactionHandler.GetTransaction)
		transactions.Post("/:id/accept", c.TransactionHandler.AcceptTransaction)
		transactions.Post("/:id/reject", c.TransactionHandler.RejectTransaction)
		transactions.Post("/:id/collected", c.TransactionHandler.MarkCollected)
		transactions.Post("/:id/complete", c.TransactionHandler.CompleteHandoff)
	}

	// live tracking
	transactions.Put("/:id/location", c.TransactionHandler.UpdateLocation)
	transactions.Put("/:id/handoff-point", c.HandoffHandler.ProposeHandoffPoint)
	transactions.Get("/:id/tracking", c.TrackingHandler.GetTracking)
	transactions.Get("/:id/tracking/stream", c.TrackingHandler.StreamTracking)
	transactions.Get("/:id/directions", c.TrackingHandler.GetDirections)

	// recorded route
	transactions.Get("/:id/route", c.RouteHandler.GetRoute)
	transactions.Get("/:id/route/replay", c.RouteHandler.GetReplayFrame)
	transactions.Get("/:id/route/replay/stream", c.RouteHandler.StreamReplay)

	// trip sharing
	transactions.Post("/:id/share", c.ShareHandler.EnableShare)
	transactions.Delete("/:id/share", c.ShareHandler.DisableShare)
}

func (c *Config) Geocode() {
	geocode := c.App.Group("/api/v1/geocode", c.Middleware.AuthMiddleware(c.JWTService))
	geocode.Get("/forward", c.TrackingHandler.GeocodeForward)
	geocode.Get("/reverse", c.TrackingHandler.GeocodeReverse)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	shared := c.App.Group("/api/v1/shared-trip")
	shared.Get("/:token", c.ShareHandler.ResolveShare)
	shared.Get("/:token/stream", c.ShareHandler.StreamShare)
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves liveness and discovery endpoints.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler measuring uptime from now.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// RegisterRoutes registers GET /health under router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth reports that the process is up.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"message":   "API is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

// HandleWelcome lists the top level endpoints.
func (h *HealthHandler) HandleWelcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to CRUD API",
		"endpoints": fiber.Map{
			"users":     "/api/users",
			"addresses": "/api/addresses",
			"auth":      "/api/auth",
			"health":    "/api/health",
		},
	})
}

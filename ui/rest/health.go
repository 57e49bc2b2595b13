package rest

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	pkgError "github.com/recruiterhub/wabot/pkg/error"
)

type Health struct {
	Version string
}

func InitRestHealth(app fiber.Router, version string) Health {
	handler := Health{Version: version}
	app.Get("/api/health", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.Version,
	})
}

// InitRestCatchAll rejects unknown API paths. Must be registered after
// every other route.
func InitRestCatchAll(app fiber.Router) {
	app.All("/api/*", func(c *fiber.Ctx) error {
		panic(pkgError.NotFoundError(fmt.Sprintf("API endpoint not found: %s", c.Path())))
	})
}

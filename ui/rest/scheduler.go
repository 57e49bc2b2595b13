package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/recruiterhub/wabot/usecase"
)

type Scheduler struct {
	Service *usecase.FollowupScheduler
}

// InitRestScheduler exposes the pull-based scheduler trigger for
// deployments where the background loop cannot run.
func InitRestScheduler(app fiber.Router, service *usecase.FollowupScheduler) Scheduler {
	handler := Scheduler{Service: service}
	app.Get("/api/cron/send-scheduled", handler.Trigger)
	return handler
}

func (h *Scheduler) Trigger(c *fiber.Ctx) error {
	sent, failed := h.Service.RunOnce(c.UserContext())
	return c.JSON(fiber.Map{"sent": sent, "failed": failed})
}

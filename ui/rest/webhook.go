package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/recruiterhub/wabot/infrastructure/greenapi"
	"github.com/recruiterhub/wabot/usecase"
)

type Webhook struct {
	Pipeline *usecase.PipelineService
	Secret   string
}

func InitRestWebhook(app fiber.Router, pipeline *usecase.PipelineService, secret string) Webhook {
	handler := Webhook{Pipeline: pipeline, Secret: secret}
	app.Post("/api/wa/webhook", handler.Receive)
	return handler
}

// Receive handles one gateway notification. Ignorable payloads resolve
// to 200 so the provider does not retry them.
func (h *Webhook) Receive(c *fiber.Ctx) error {
	if h.Secret != "" {
		got := c.Get("X-Webhook-Secret")
		if got == "" {
			got = c.Query("secret")
		}
		if got != h.Secret {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "invalid secret"})
		}
	}

	msg, actionable, err := greenapi.ParseWebhook(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid json"})
	}
	if !actionable {
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}

	outcome, err := h.Pipeline.HandleIncoming(c.UserContext(), msg)
	if err != nil {
		logrus.WithError(err).Error("[WEBHOOK] Pipeline failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	switch outcome {
	case usecase.OutcomeDuplicate:
		return c.JSON(fiber.Map{"ok": true, "dedup": true})
	case usecase.OutcomeOptedOut:
		return c.JSON(fiber.Map{"ok": true, "opted_out": true})
	case usecase.OutcomeIgnored:
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	default:
		return c.JSON(fiber.Map{"ok": true})
	}
}

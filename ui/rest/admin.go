package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/domains/settings"
	pkgError "github.com/recruiterhub/wabot/pkg/error"
	"github.com/recruiterhub/wabot/pkg/utils"
	"github.com/recruiterhub/wabot/usecase"
)

// historyLimit bounds the admin history view.
const historyLimit = 200

type Admin struct {
	Settings *usecase.SettingsService
	Messages message.IMessageRepository
}

func InitRestAdmin(app fiber.Router, auth fiber.Handler, settingsService *usecase.SettingsService, messages message.IMessageRepository) Admin {
	handler := Admin{Settings: settingsService, Messages: messages}

	group := app.Group("/api/admin", auth)
	group.Get("/settings", handler.GetSettings)
	group.Post("/settings", handler.SaveSettings)
	group.Get("/history", handler.GetHistory)

	return handler
}

// GetSettings returns the flat settings object.
func (h *Admin) GetSettings(c *fiber.Ctx) error {
	dto, err := h.Settings.Get(c.UserContext())
	if err != nil {
		panic(pkgError.InternalServerError("settings load failed: " + err.Error()))
	}
	return c.JSON(dto)
}

func (h *Admin) SaveSettings(c *fiber.Ctx) error {
	var dto settings.DTO
	if err := c.BodyParser(&dto); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}

	err := h.Settings.Save(c.UserContext(), dto)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings saved",
	})
}

func (h *Admin) GetHistory(c *fiber.Ctx) error {
	entries, err := h.Messages.History(c.UserContext(), historyLimit)
	if err != nil {
		panic(pkgError.InternalServerError("history load failed: " + err.Error()))
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History retrieved",
		Results: entries,
	})
}

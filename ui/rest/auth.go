package rest

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	pkgError "github.com/recruiterhub/wabot/pkg/error"
	"github.com/recruiterhub/wabot/ui/rest/middleware"
)

type Auth struct {
	AdminUser string
	AdminPass string
}

func InitRestAuth(app fiber.Router, adminUser, adminPass string) Auth {
	handler := Auth{AdminUser: adminUser, AdminPass: adminPass}
	app.Post("/api/auth/login", handler.Login)
	return handler
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the submitted credentials against the configured pair and
// sets the session cookie. There are no fallback credentials: with an
// unconfigured pair every attempt fails.
func (h *Auth) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}

	if h.AdminUser == "" || h.AdminPass == "" ||
		req.Username != h.AdminUser || req.Password != h.AdminPass {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "INVALID_CREDENTIALS"})
	}

	token := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", req.Username, req.Password)))
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.JSON(fiber.Map{"success": true})
}

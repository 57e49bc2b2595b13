package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	pkgError "github.com/recruiterhub/wabot/pkg/error"
)

// SessionCookieName holds the base64 "user:password" token set at login.
const SessionCookieName = "admin_session"

// AdminAuth validates the session cookie against the configured
// credentials. Both credential values are mandatory; when either is
// empty every request is rejected. Rejections panic an AuthError for
// the Recovery middleware to map.
func AdminAuth(adminUser, adminPass string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminUser == "" || adminPass == "" {
			panic(pkgError.AuthError("admin credentials are not configured"))
		}

		token := c.Cookies(SessionCookieName)
		if token != "" {
			decoded, err := base64.StdEncoding.DecodeString(token)
			if err == nil {
				parts := strings.SplitN(string(decoded), ":", 2)
				if len(parts) == 2 && parts[0] == adminUser && parts[1] == adminPass {
					return c.Next()
				}
			}
		}

		panic(pkgError.AuthError("invalid or missing session"))
	}
}

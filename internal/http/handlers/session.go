package handlers

import (
	applog "clearfashion/internal/log"
	"clearfashion/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const sessionCookie = "sid"

// Session makes sure every visitor carries a uuid "sid" cookie and exposes
// it to handlers and log lines through Locals.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// the sid keys the visitor's session after the request buffer is reused
		sid := utils.CopyString(c.Cookies(sessionCookie))
		if sid != "" && !validate.SessionID(sid) {
			applog.Security(c, "session.invalid", map[string]any{"sid": sid})
			sid = ""
		}
		if sid == "" {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false,
			})
		}
		c.Locals(applog.SessionLocal, sid)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(applog.SessionLocal).(string)
	return sid
}

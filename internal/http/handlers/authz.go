package handlers

import (
	applog "geekshop/internal/log"
	"geekshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser redirects anonymous visitors to the login page.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/auth/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/auth/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireSuperuser gates the /admin_staff screens.
func RequireSuperuser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/auth/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || !u.IsSuperuser {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

package handlers

import (
	"time"

	"geekshop/internal/domain"
	"geekshop/internal/log"
	"geekshop/internal/services"
	"geekshop/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	username := c.FormValue("username")
	pass := c.FormValue("password")

	if _, ok := validate.Username(username); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid username or password", "CSRFToken": c.Cookies("csrf_")})
	}

	_, err := h.Auth.Login(sid, username, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid username or password", "CSRFToken": c.Cookies("csrf_")})
	}

	log.Audit(c, "auth.login.success", map[string]any{"username": username})
	if next := c.Query("next"); next != "" && next[0] == '/' {
		return c.Redirect(next)
	}
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	username, okU := validate.Username(c.FormValue("username"))
	email, okE := validate.Email(c.FormValue("email"))
	age, okA := validate.Age(c.FormValue("age"))
	pass := c.FormValue("password")

	fail := func(msg string) error {
		return c.Status(400).Render("register", fiber.Map{
			"Err": msg, "Username": username, "Email": email,
			"CSRFToken": c.Cookies("csrf_"),
		})
	}
	if !okU {
		return fail("Username must be 3-30 letters, digits, dots or dashes")
	}
	if !okE {
		return fail("Enter a valid e-mail address")
	}
	if !okA {
		return fail("Enter a valid age")
	}
	if !validate.Password(pass) {
		return fail("Password needs 8+ characters with upper, lower and digit")
	}

	u, err := h.Auth.Register(services.RegisterForm{
		Username: username, Email: email, Password: pass, Age: age,
	})
	if err != nil {
		log.Error(c, "auth.register.fail", err, map[string]any{"username": username})
		return fail("Could not create the account. The username or e-mail may be taken.")
	}

	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return render(c, "login", fiber.Map{"Err": "", "Notice": "Check your inbox for the verification link."})
}

// Verify handles the e-mailed activation link. A wrong or expired key
// renders the same neutral page without activating anything.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	email := c.Params("email")
	key := c.Params("key")

	u, activated, err := h.Auth.Verify(email, key)
	if err != nil {
		log.Error(c, "auth.verify.fail", err, map[string]any{"email": email})
		return render(c, "verify", fiber.Map{"Activated": false})
	}
	if activated {
		// log the fresh account in right away
		sid := ensureSID(c)
		_ = h.Auth.Users.BindSession(sid, u.ID)
		log.Audit(c, "auth.verify.success", map[string]any{"user_id": u.ID})
	}
	return render(c, "verify", fiber.Map{"Activated": activated})
}

func (h *AuthHandler) EditForm(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/auth/login")
	}
	profile, err := h.Auth.Profile(u.ID)
	if err != nil {
		log.Error(c, "auth.edit.load", err, nil)
		return notFoundPage(c, "Could not load your account")
	}
	return render(c, "edit", fiber.Map{"Account": u, "Profile": profile, "Err": ""})
}

func (h *AuthHandler) Edit(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/auth/login")
	}

	username, okU := validate.Username(c.FormValue("username"))
	email, okE := validate.Email(c.FormValue("email"))
	age, okA := validate.Age(c.FormValue("age"))
	if !okU || !okE || !okA {
		profile, _ := h.Auth.Profile(u.ID)
		return c.Status(400).Render("edit", fiber.Map{
			"Account": u, "Profile": profile,
			"Err":       "Check the highlighted fields",
			"CSRFToken": c.Cookies("csrf_"),
		})
	}

	err := h.Auth.UpdateAccount(u.ID, services.AccountForm{
		Username: username,
		Email:    email,
		Age:      age,
		Tagline:  c.FormValue("tagline"),
		About:    c.FormValue("about"),
		Gender:   c.FormValue("gender"),
	})
	if err != nil {
		log.Error(c, "auth.edit.fail", err, map[string]any{"user_id": u.ID})
		profile, _ := h.Auth.Profile(u.ID)
		return c.Status(400).Render("edit", fiber.Map{
			"Account": u, "Profile": profile,
			"Err":       "Could not save changes",
			"CSRFToken": c.Cookies("csrf_"),
		})
	}

	log.Audit(c, "auth.edit", map[string]any{"user_id": u.ID})
	return c.Redirect("/auth/edit")
}

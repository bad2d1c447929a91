package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"geekshop/internal/config"
	"geekshop/internal/http/handlers"
	"geekshop/internal/repos"
	"geekshop/internal/services"
)

func newTestEngine() *html.Engine {
	engine := html.New("../../web/templates", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })
	return engine
}

func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps, *services.AuthService) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	engine := newTestEngine()
	app := fiber.New(fiber.Config{Views: engine})
	deps := handlers.NewDeps(db, config.Config{}, authSvc, nil, engine)
	return app, deps, authSvc
}

// Anonymous visitors bounce to login, shoppers get a 403, superusers get
// the console.
func TestAdminRoutesRequireSuperuser(t *testing.T) {
	app, deps, authSvc := newTestApp(t)

	admin := app.Group("/admin_staff", handlers.RequireSuperuser(authSvc))
	admin.Get("/users", deps.AdminHandler.Users)
	admin.Get("/categories", deps.AdminHandler.Categories)

	// anonymous
	req := httptest.NewRequest(http.MethodGet, "/admin_staff/users", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Fatalf("anonymous redirect = %q", loc)
	}

	// regular shopper
	if err := authSvc.Users.BindSession("sid-vera", "u-vera"); err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin_staff/users", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-vera"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("shopper status = %d, want 403", resp.StatusCode)
	}

	// superuser
	if err := authSvc.Users.BindSession("sid-admin", "u-admin"); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/admin_staff/users", "/admin_staff/categories"} {
		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
		resp, err = app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("superuser GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

// Basket and order screens redirect anonymous visitors to login.
func TestShopperRoutesRequireLogin(t *testing.T) {
	app, deps, authSvc := newTestApp(t)

	basket := app.Group("/basket", handlers.RequireUser(authSvc))
	basket.Get("/", deps.BasketHandler.View)
	orders := app.Group("/orders", handlers.RequireUser(authSvc))
	orders.Get("/", deps.OrderHandler.List)

	for _, path := range []string{"/basket/", "/orders/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("anonymous GET %s = %d, want 302", path, resp.StatusCode)
		}
	}
}

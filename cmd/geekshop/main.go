package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"geekshop/internal/cache"
	"geekshop/internal/config"
	"geekshop/internal/http/handlers"
	applog "geekshop/internal/log"
	"geekshop/internal/mail"
	"geekshop/internal/repos"
	"geekshop/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// LOW_CACHE catalog cache; a failed redis leaves caching off
	var cc *cache.Cache
	if cfg.LowCache {
		cc, err = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			log.Printf("[warn] LOW_CACHE requested but redis unavailable: %v", err)
			cc = nil
		}
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	authSvc := &services.AuthService{
		Users:      userRepo,
		Mail:       sender,
		DomainName: cfg.DomainName,
		KeyTTL:     time.Duration(cfg.ActivationHours) * time.Hour,
	}
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc, cc, engine)

	app.Static("/static", "./web/static")

	// Catalog
	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/category/:id", deps.CatalogHandler.Category)
	app.Get("/product/:id", deps.CatalogHandler.Product)

	// Auth (login throttled)
	auth := app.Group("/auth")
	auth.Get("/login", authH.LoginForm)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	auth.Post("/logout", authH.Logout)
	auth.Get("/register", authH.RegisterForm)
	auth.Post("/register", authH.Register)
	auth.Get("/verify/:email/:key", authH.Verify)
	auth.Get("/edit", handlers.RequireUser(authSvc), authH.EditForm)
	auth.Post("/edit", handlers.RequireUser(authSvc), authH.Edit)

	// Basket (login required)
	basket := app.Group("/basket", handlers.RequireUser(authSvc))
	basket.Get("/", deps.BasketHandler.View)
	basket.Post("/add/:product_id", deps.BasketHandler.Add)
	basket.Post("/edit/:line_id/:quantity", deps.BasketHandler.Edit)
	basket.Post("/delete/:line_id", deps.BasketHandler.Delete)

	// Orders (login required)
	orders := app.Group("/orders", handlers.RequireUser(authSvc))
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/create", deps.OrderHandler.CreateForm)
	orders.Post("/create", deps.OrderHandler.Create)
	orders.Get("/read/:id", deps.OrderHandler.Read)
	orders.Get("/update/:id", deps.OrderHandler.UpdateForm)
	orders.Post("/update/:id", deps.OrderHandler.Update)
	orders.Post("/delete/:id", deps.OrderHandler.Delete)
	orders.Post("/forming/complete/:id", deps.OrderHandler.Complete)
	orders.Get("/product/:id/price", deps.OrderHandler.ProductPrice)

	// Admin console (superuser only)
	admin := app.Group("/admin_staff", handlers.RequireSuperuser(authSvc))
	admin.Get("/users", deps.AdminHandler.Users)
	admin.Get("/users/create", deps.AdminHandler.UserCreateForm)
	admin.Post("/users/create", deps.AdminHandler.UserCreate)
	admin.Get("/users/update/:id", deps.AdminHandler.UserUpdateForm)
	admin.Post("/users/update/:id", deps.AdminHandler.UserUpdate)
	admin.Post("/users/delete/:id", deps.AdminHandler.UserDelete)
	admin.Get("/categories", deps.AdminHandler.Categories)
	admin.Get("/categories/create", deps.AdminHandler.CategoryCreateForm)
	admin.Post("/categories/create", deps.AdminHandler.CategoryCreate)
	admin.Get("/categories/update/:id", deps.AdminHandler.CategoryUpdateForm)
	admin.Post("/categories/update/:id", deps.AdminHandler.CategoryUpdate)
	admin.Post("/categories/delete/:id", deps.AdminHandler.CategoryDelete)
	admin.Get("/products/:category_id", deps.AdminHandler.Products)
	admin.Get("/products/create/:category_id", deps.AdminHandler.ProductCreateForm)
	admin.Post("/products/create/:category_id", deps.AdminHandler.ProductCreate)
	admin.Get("/products/update/:id", deps.AdminHandler.ProductUpdateForm)
	admin.Post("/products/update/:id", deps.AdminHandler.ProductUpdate)
	admin.Post("/products/delete/:id", deps.AdminHandler.ProductDelete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

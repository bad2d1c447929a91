package handlers

import (
	"errors"

	"geekshop/internal/log"
	"geekshop/internal/services"
	"geekshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

const storefrontPageSize = 12

// Home lists all active products cheapest first, with the category menu.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := validate.Page(c.Query("page"))

	cats, err := h.Catalog.Categories(ctx)
	if err != nil {
		log.Error(c, "catalog.categories", err, nil)
		return fiber.ErrInternalServerError
	}
	products, err := h.Catalog.Products(ctx, page, storefrontPageSize)
	if err != nil {
		log.Error(c, "catalog.products", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "home", fiber.Map{
		"Categories": cats, "Products": products, "Page": page,
	})
}

func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	page := validate.Page(c.Query("page"))

	cat, err := h.Catalog.Category(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return notFoundPage(c, "Category not found")
	}
	if err != nil {
		log.Error(c, "catalog.category", err, map[string]any{"category": id})
		return fiber.ErrInternalServerError
	}

	cats, err := h.Catalog.Categories(ctx)
	if err != nil {
		log.Error(c, "catalog.categories", err, nil)
		return fiber.ErrInternalServerError
	}
	products, err := h.Catalog.ProductsByCategory(ctx, id, page, storefrontPageSize)
	if err != nil {
		log.Error(c, "catalog.category.products", err, map[string]any{"category": id})
		return fiber.ErrInternalServerError
	}
	return render(c, "category", fiber.Map{
		"Category": cat, "Categories": cats, "Products": products, "Page": page,
	})
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "This item is no longer available")
	}
	p, err := h.Catalog.Product(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return notFoundPage(c, "This item is no longer available")
	}
	if err != nil {
		log.Error(c, "catalog.product", err, map[string]any{"product": id})
		return fiber.ErrInternalServerError
	}
	cats, _ := h.Catalog.Categories(ctx)
	return render(c, "product", fiber.Map{"P": p, "Categories": cats})
}

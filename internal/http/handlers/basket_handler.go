package handlers

import (
	"bytes"
	"errors"

	"geekshop/internal/domain"
	applog "geekshop/internal/log"
	"geekshop/internal/services"
	"geekshop/internal/validate"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
)

type BasketHandler struct {
	Basket *services.BasketService
	Views  *html.Engine // for rendering the async basket fragment
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func (h *BasketHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	bv, err := h.Basket.View(u.ID)
	if err != nil {
		applog.Error(c, "basket.view", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "basket", fiber.Map{
		"Items": bv.Items, "TotalQuantity": bv.TotalQuantity, "TotalCost": bv.TotalCost,
	})
}

func (h *BasketHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	pid, ok := validate.ID(c.Params("product_id"))
	if !ok {
		return notFoundPage(c, "This item is no longer available")
	}
	if err := h.Basket.Add(u.ID, pid); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFoundPage(c, "This item is no longer available")
		}
		applog.Error(c, "basket.add", err, map[string]any{"product": pid})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "basket.add", map[string]any{"product": pid})

	back := c.Get("Referer")
	if back == "" {
		back = "/basket"
	}
	return c.Redirect(back)
}

// Edit sets a line's quantity (deleting it at zero) and answers with the
// re-rendered basket fragment for the async page update.
func (h *BasketHandler) Edit(c *fiber.Ctx) error {
	u := currentUser(c)
	lineID, ok := validate.ID(c.Params("line_id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "line not found"})
	}
	qty, ok := validate.Qty(c.Params("quantity"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quantity"})
	}

	items, err := h.Basket.SetQuantity(u.ID, lineID, qty)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "line not found"})
		}
		applog.Error(c, "basket.edit", err, map[string]any{"line": lineID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update basket"})
	}
	applog.Audit(c, "basket.edit", map[string]any{"line": lineID, "quantity": qty})

	var totalQty int
	var totalCost float64
	for _, it := range items {
		totalQty += it.Quantity
		totalCost += it.Cost
	}
	var buf bytes.Buffer
	if err := h.Views.Render(&buf, "basket_items", fiber.Map{
		"Items": items, "TotalQuantity": totalQty, "TotalCost": totalCost,
		"CSRFToken": c.Cookies("csrf_"),
	}); err != nil {
		applog.Error(c, "basket.edit.render", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not render basket"})
	}
	return c.JSON(fiber.Map{"result": buf.String()})
}

func (h *BasketHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	lineID, ok := validate.ID(c.Params("line_id"))
	if !ok {
		return notFoundPage(c, "Basket line not found")
	}
	if err := h.Basket.Remove(u.ID, lineID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFoundPage(c, "Basket line not found")
		}
		applog.Error(c, "basket.delete", err, map[string]any{"line": lineID})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "basket.delete", map[string]any{"line": lineID})

	back := c.Get("Referer")
	if back == "" {
		back = "/basket"
	}
	return c.Redirect(back)
}

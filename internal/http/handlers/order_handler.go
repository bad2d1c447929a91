package handlers

import (
	"errors"

	applog "geekshop/internal/log"
	"geekshop/internal/repos"
	"geekshop/internal/services"
	"geekshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Order  *services.OrderService
	Basket *services.BasketService
}

// parseOrderLines reads the aligned per-row form arrays of the order
// formset: line_id (empty for new rows), product_id, quantity, delete.
func parseOrderLines(c *fiber.Ctx) []repos.OrderLine {
	args := c.Request().PostArgs()
	ids := args.PeekMulti("line_id")
	pids := args.PeekMulti("product_id")
	qtys := args.PeekMulti("quantity")
	dels := args.PeekMulti("delete")

	n := len(pids)
	if len(ids) > n {
		n = len(ids)
	}
	at := func(vals [][]byte, i int) string {
		if i < len(vals) {
			return string(vals[i])
		}
		return ""
	}

	lines := make([]repos.OrderLine, 0, n)
	for i := 0; i < n; i++ {
		qty, _ := validate.Qty(at(qtys, i))
		lines = append(lines, repos.OrderLine{
			ID:        at(ids, i),
			ProductID: at(pids, i),
			Quantity:  qty,
			Delete:    at(dels, i) == "1" || at(dels, i) == "on",
		})
	}
	return lines
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Order.ListForUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.list", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

// CreateForm shows the new-order form pre-populated from the basket.
func (h *OrderHandler) CreateForm(c *fiber.Ctx) error {
	u := currentUser(c)
	seed, err := h.Order.Seed(u.ID)
	if err != nil {
		applog.Error(c, "orders.create.seed", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "order_form", fiber.Map{"Seed": seed, "Order": nil, "Items": nil})
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	lines := parseOrderLines(c)

	orderID, err := h.Order.Create(u.ID, lines)
	if errors.Is(err, services.ErrZeroTotal) {
		// zero-value order is discarded wholesale; nothing to show
		applog.Info(c, "orders.create.zero_total", nil)
		return c.Redirect("/orders")
	}
	if err != nil {
		applog.Error(c, "orders.create", err, nil)
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "orders.create", map[string]any{"order_id": orderID})
	return c.Redirect("/orders")
}

// loadOwned fetches the order and enforces ownership. Superusers may read
// any order; everyone else gets the not-found page for foreign ids.
func (h *OrderHandler) loadOwned(c *fiber.Ctx) (string, bool) {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return "", false
	}
	o, _, err := h.Order.Get(id)
	if err != nil {
		return "", false
	}
	if o.UserID != u.ID && !u.IsSuperuser {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return "", false
	}
	return id, true
}

func (h *OrderHandler) Read(c *fiber.Ctx) error {
	id, ok := h.loadOwned(c)
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	o, items, err := h.Order.Get(id)
	if err != nil {
		return notFoundPage(c, "Order not found")
	}
	return render(c, "order_read", fiber.Map{"Order": o, "Items": items})
}

// UpdateForm re-opens line editing for a FORMING order. Prices shown are
// refreshed from the products; the stored snapshot stays until resubmit.
func (h *OrderHandler) UpdateForm(c *fiber.Ctx) error {
	id, ok := h.loadOwned(c)
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	o, items, err := h.Order.Get(id)
	if err != nil {
		return notFoundPage(c, "Order not found")
	}
	for i := range items {
		items[i].Price = h.Order.ProductPrice(items[i].ProductID)
	}
	return render(c, "order_form", fiber.Map{"Order": o, "Items": items, "Seed": nil})
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, ok := h.loadOwned(c)
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	err := h.Order.Update(id, parseOrderLines(c))
	if errors.Is(err, services.ErrNotForming) {
		applog.Security(c, "orders.update.not_forming", map[string]any{"order_id": id})
		return notFoundPage(c, "This order can no longer be edited")
	}
	if errors.Is(err, services.ErrZeroTotal) {
		applog.Info(c, "orders.update.zero_total", map[string]any{"order_id": id})
		return c.Redirect("/orders")
	}
	if err != nil {
		applog.Error(c, "orders.update", err, map[string]any{"order_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "orders.update", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}

func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	id, ok := h.loadOwned(c)
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	err := h.Order.Complete(id)
	if errors.Is(err, services.ErrNotForming) {
		applog.Security(c, "orders.complete.not_forming", map[string]any{"order_id": id})
		return c.Redirect("/orders")
	}
	if err != nil {
		applog.Error(c, "orders.complete", err, map[string]any{"order_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "orders.complete", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := h.loadOwned(c)
	if !ok {
		return notFoundPage(c, "Order not found")
	}
	if err := h.Order.Delete(id); err != nil {
		applog.Error(c, "orders.delete", err, map[string]any{"order_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "orders.delete", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}

// ProductPrice answers the async price lookup used by the order form.
func (h *OrderHandler) ProductPrice(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.JSON(fiber.Map{"price": 0})
	}
	return c.JSON(fiber.Map{"price": h.Order.ProductPrice(id)})
}

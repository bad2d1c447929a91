package repos

import (
	"errors"

	"geekshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrZeroTotal means a submitted order came out with zero value; such an
// order is never persisted.
var ErrZeroTotal = errors.New("order total is zero")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderLine is one submitted row of the order form. ID is empty for new
// lines. Price is always snapshotted from the product inside the tx.
type OrderLine struct {
	ID        string
	ProductID string
	Quantity  int
	Delete    bool
}

// OrderSummary backs the order list page.
type OrderSummary struct {
	ID            string  `db:"id"`
	Status        string  `db:"status"`
	CreatedAt     string  `db:"created_at"`
	TotalQuantity int     `db:"total_quantity"`
	TotalCost     float64 `db:"total_cost"`
}

// OrderItemRow is a line joined with its product for rendering.
type OrderItemRow struct {
	ID          string  `db:"id"`
	ProductID   string  `db:"product_id"`
	ProductName string  `db:"product_name"`
	Quantity    int     `db:"quantity"`
	Price       float64 `db:"price"`
	Cost        float64 `db:"cost"`
}

func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
	  SELECT o.id, o.status, o.created_at,
	         COALESCE(SUM(oi.quantity), 0)            AS total_quantity,
	         COALESCE(SUM(oi.quantity * oi.price), 0) AS total_cost
	  FROM orders o
	  LEFT JOIN order_items oi ON oi.order_id = o.id
	  WHERE o.user_id = ?
	  GROUP BY o.id
	  ORDER BY datetime(o.created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) Get(orderID string) (domain.Order, []OrderItemRow, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
	  SELECT id, user_id, status, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
	  SELECT oi.id, oi.product_id, p.name AS product_name, oi.quantity, oi.price,
	         (oi.quantity * oi.price) AS cost
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

// CreateFromBasket writes the whole order in one transaction: FORMING
// header, the submitted lines (stock deducted per line, price snapshotted
// from the product), and deletion of the user's basket lines (stock
// returned per line). A zero-value order rolls everything back.
func (r *OrderRepo) CreateFromBasket(orderID, userID string, lines []OrderLine) (float64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, status) VALUES(?, ?, ?)
	`, orderID, userID, domain.OrderForming); err != nil {
		return 0, err
	}

	// Consume the basket: each line deleted returns its units to stock.
	var basket []domain.BasketItem
	if err := tx.Select(&basket, `
	  SELECT id, user_id, product_id, quantity, add_time FROM basket_items WHERE user_id = ?
	`, userID); err != nil {
		return 0, err
	}
	for _, b := range basket {
		if err := reserveStock(tx, b.ProductID, -b.Quantity); err != nil {
			return 0, err
		}
	}
	if _, err := tx.Exec(`DELETE FROM basket_items WHERE user_id = ?`, userID); err != nil {
		return 0, err
	}

	total := 0.0
	for _, ln := range lines {
		if ln.Delete || ln.ProductID == "" || ln.Quantity <= 0 {
			continue
		}
		var price float64
		if err := tx.Get(&price, `SELECT price FROM products WHERE id = ?`, ln.ProductID); err != nil {
			return 0, err
		}
		if err := reserveStock(tx, ln.ProductID, ln.Quantity); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, quantity, price)
		  VALUES(?, ?, ?, ?, ?)
		`, uuid.NewString(), orderID, ln.ProductID, ln.Quantity, price); err != nil {
			return 0, err
		}
		total += price * float64(ln.Quantity)
	}

	if total == 0 {
		// rollback via deferred Rollback: no order, no lines, stock untouched
		return 0, ErrZeroTotal
	}

	return total, tx.Commit()
}

// ReplaceItems applies an edited line set to a FORMING order in one
// transaction. Resubmitted lines have quantity delta-reconciled and price
// refreshed from the product; omitted or delete-flagged lines return their
// stock; new lines are inserted like on create. If the order ends up with
// zero value its header is deleted too.
func (r *OrderRepo) ReplaceItems(orderID string, lines []OrderLine) (float64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var existing []domain.OrderItem
	if err := tx.Select(&existing, `
	  SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ?
	`, orderID); err != nil {
		return 0, err
	}
	byID := make(map[string]domain.OrderItem, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	seen := make(map[string]bool, len(existing))
	for _, ln := range lines {
		if old, ok := byID[ln.ID]; ln.ID != "" && ok {
			seen[ln.ID] = true
			if ln.Delete || ln.Quantity <= 0 {
				if err := reserveStock(tx, old.ProductID, -old.Quantity); err != nil {
					return 0, err
				}
				if _, err := tx.Exec(`DELETE FROM order_items WHERE id = ?`, ln.ID); err != nil {
					return 0, err
				}
				continue
			}
			var price float64
			if err := tx.Get(&price, `SELECT price FROM products WHERE id = ?`, old.ProductID); err != nil {
				return 0, err
			}
			if err := reserveStock(tx, old.ProductID, ln.Quantity-old.Quantity); err != nil {
				return 0, err
			}
			if _, err := tx.Exec(`
			  UPDATE order_items SET quantity = ?, price = ? WHERE id = ?
			`, ln.Quantity, price, ln.ID); err != nil {
				return 0, err
			}
			continue
		}
		if ln.Delete || ln.ProductID == "" || ln.Quantity <= 0 {
			continue
		}
		var price float64
		if err := tx.Get(&price, `SELECT price FROM products WHERE id = ?`, ln.ProductID); err != nil {
			return 0, err
		}
		if err := reserveStock(tx, ln.ProductID, ln.Quantity); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, quantity, price)
		  VALUES(?, ?, ?, ?, ?)
		`, uuid.NewString(), orderID, ln.ProductID, ln.Quantity, price); err != nil {
			return 0, err
		}
	}

	// Lines missing from the submission are removed (formset semantics).
	for _, old := range existing {
		if seen[old.ID] {
			continue
		}
		if err := reserveStock(tx, old.ProductID, -old.Quantity); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`DELETE FROM order_items WHERE id = ?`, old.ID); err != nil {
			return 0, err
		}
	}

	var total float64
	if err := tx.Get(&total, `
	  SELECT COALESCE(SUM(quantity * price), 0) FROM order_items WHERE order_id = ?
	`, orderID); err != nil {
		return 0, err
	}
	if total == 0 {
		if _, err := tx.Exec(`DELETE FROM orders WHERE id = ?`, orderID); err != nil {
			return 0, err
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return 0, ErrZeroTotal
	}

	if _, err := tx.Exec(`
	  UPDATE orders SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, orderID); err != nil {
		return 0, err
	}

	return total, tx.Commit()
}

func (r *OrderRepo) UpdateStatus(orderID, status string) error {
	_, err := r.db.Exec(`
	  UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}

// Delete removes the order and its lines, returning every line's units to
// stock, all in one transaction.
func (r *OrderRepo) Delete(orderID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var items []domain.OrderItem
	if err := tx.Select(&items, `
	  SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ?
	`, orderID); err != nil {
		return err
	}
	for _, it := range items {
		if err := reserveStock(tx, it.ProductID, -it.Quantity); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

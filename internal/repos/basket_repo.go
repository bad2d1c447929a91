package repos

import (
	"database/sql"

	"geekshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BasketRepo struct{ db *sqlx.DB }

func NewBasketRepo(db *sqlx.DB) *BasketRepo { return &BasketRepo{db: db} }

// BasketLineRow is a basket line joined with its product for rendering.
type BasketLineRow struct {
	ID           string  `db:"id"`
	ProductID    string  `db:"product_id"`
	ProductName  string  `db:"product_name"`
	CategoryName string  `db:"category_name"`
	Quantity     int     `db:"quantity"`
	Price        float64 `db:"price"`
	Cost         float64 `db:"cost"`
}

// ItemsByUser lists the user's lines ordered by product category.
func (r *BasketRepo) ItemsByUser(userID string) ([]BasketLineRow, error) {
	rows := []BasketLineRow{}
	err := r.db.Select(&rows, `
	  SELECT b.id, b.product_id, p.name AS product_name, c.name AS category_name,
	         b.quantity, p.price, (b.quantity * p.price) AS cost
	  FROM basket_items b
	  JOIN products p ON p.id = b.product_id
	  JOIN categories c ON c.id = p.category_id
	  WHERE b.user_id = ?
	  ORDER BY c.name, p.name
	`, userID)
	return rows, err
}

func (r *BasketRepo) Get(lineID string) (domain.BasketItem, error) {
	var it domain.BasketItem
	err := r.db.Get(&it, `
	  SELECT id, user_id, product_id, quantity, add_time
	  FROM basket_items WHERE id = ?
	`, lineID)
	return it, err
}

// Add upserts the (user, product) line: +1 on an existing line, else a new
// line with quantity 1. The stock reservation runs in the same tx.
func (r *BasketRepo) Add(userID, productID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var lineID string
	err = tx.Get(&lineID, `
	  SELECT id FROM basket_items WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	switch err {
	case nil:
		if err := reserveStock(tx, productID, 1); err != nil {
			return err
		}
		if _, err := tx.Exec(`
		  UPDATE basket_items SET quantity = quantity + 1 WHERE id = ?
		`, lineID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		if err := reserveStock(tx, productID, 1); err != nil {
			return err
		}
		if _, err := tx.Exec(`
		  INSERT INTO basket_items(id, user_id, product_id, quantity)
		  VALUES(?, ?, ?, 1)
		`, uuid.NewString(), userID, productID); err != nil {
			return err
		}
	default:
		return err
	}

	return tx.Commit()
}

// SetQuantity updates a line to quantity, or deletes it when quantity <= 0,
// reconciling stock by the delta either way.
func (r *BasketRepo) SetQuantity(lineID string, quantity int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var line domain.BasketItem
	if err := tx.Get(&line, `
	  SELECT id, user_id, product_id, quantity, add_time FROM basket_items WHERE id = ?
	`, lineID); err != nil {
		return err
	}

	if quantity > 0 {
		if err := reserveStock(tx, line.ProductID, quantity-line.Quantity); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE basket_items SET quantity = ? WHERE id = ?`, quantity, lineID); err != nil {
			return err
		}
	} else {
		if err := reserveStock(tx, line.ProductID, -line.Quantity); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM basket_items WHERE id = ?`, lineID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a line and returns its units to stock.
func (r *BasketRepo) Delete(lineID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var line domain.BasketItem
	if err := tx.Get(&line, `
	  SELECT id, user_id, product_id, quantity, add_time FROM basket_items WHERE id = ?
	`, lineID); err != nil {
		return err
	}
	if err := reserveStock(tx, line.ProductID, -line.Quantity); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM basket_items WHERE id = ?`, lineID); err != nil {
		return err
	}

	return tx.Commit()
}

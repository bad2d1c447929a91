package repos

import "github.com/jmoiron/sqlx"

// reserveStock applies a stock delta to a product inside the caller's
// transaction. delta is the change in units held by basket/order lines:
// a new line passes +qty, an update passes new-old, a delete passes -qty.
// The product row mirrors stock not held by any live line, so held units
// are subtracted. Runs in the same tx as the line write; never call it
// outside one.
func reserveStock(tx *sqlx.Tx, productID string, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := tx.Exec(`
		UPDATE products
		SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, delta, productID)
	return err
}

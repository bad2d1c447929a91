package domain

// BasketItem is one (user, product) line; re-adding the same product
// increments Quantity instead of creating a second line.
type BasketItem struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	AddTime   string `db:"add_time"`
}

package domain

// Order status lifecycle. Line items may only change while the order is
// still FORMING; COMPLETE moves it to SENT_TO_PROCEED exactly once.
const (
	OrderForming       = "FORMING"
	OrderSentToProceed = "SENT_TO_PROCEED"
	OrderPaid          = "PAID"
	OrderProceeded     = "PROCEEDED"
	OrderReady         = "READY"
	OrderCanceled      = "CANCELED"
)

type Order struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Status    string `db:"status"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type OrderItem struct {
	ID        string  `db:"id"`
	OrderID   string  `db:"order_id"`
	ProductID string  `db:"product_id"`
	Quantity  int     `db:"quantity"`
	Price     float64 `db:"price"` // captured when the line is written, not live
}

package services

import (
	"database/sql"

	"geekshop/internal/domain"
	"geekshop/internal/repos"

	"github.com/google/uuid"
)

type OrderService struct {
	Orders  *repos.OrderRepo
	Baskets *repos.BasketRepo
	Prods   *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, baskets *repos.BasketRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Baskets: baskets, Prods: prods}
}

// SeedLine pre-populates the order-create form from a basket line.
type SeedLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64 // current product price, the snapshot-to-be
}

func (s *OrderService) ListForUser(userID string) ([]repos.OrderSummary, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) Get(orderID string) (domain.Order, []repos.OrderItemRow, error) {
	o, items, err := s.Orders.Get(orderID)
	if err == sql.ErrNoRows {
		return domain.Order{}, nil, ErrNotFound
	}
	return o, items, err
}

// Seed returns the user's basket lines shaped as order form rows.
func (s *OrderService) Seed(userID string) ([]SeedLine, error) {
	items, err := s.Baskets.ItemsByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]SeedLine, 0, len(items))
	for _, it := range items {
		out = append(out, SeedLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return out, nil
}

// Create forms a new order from the submitted lines and consumes the
// user's basket, atomically. Returns ErrZeroTotal (and persists nothing)
// when the submitted lines carry no value.
func (s *OrderService) Create(userID string, lines []repos.OrderLine) (string, error) {
	orderID := uuid.NewString()
	if _, err := s.Orders.CreateFromBasket(orderID, userID, lines); err != nil {
		return "", err
	}
	return orderID, nil
}

// Update replaces the line set of a FORMING order.
func (s *OrderService) Update(orderID string, lines []repos.OrderLine) error {
	o, _, err := s.Get(orderID)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderForming {
		return ErrNotForming
	}
	_, err = s.Orders.ReplaceItems(orderID, lines)
	return err
}

// Complete commits the forming order: FORMING -> SENT_TO_PROCEED, once.
func (s *OrderService) Complete(orderID string) error {
	o, _, err := s.Get(orderID)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderForming {
		return ErrNotForming
	}
	return s.Orders.UpdateStatus(orderID, domain.OrderSentToProceed)
}

func (s *OrderService) Delete(orderID string) error {
	if _, _, err := s.Get(orderID); err != nil {
		return err
	}
	return s.Orders.Delete(orderID)
}

// ProductPrice backs the async price endpoint: live price, or 0 for an
// unknown product.
func (s *OrderService) ProductPrice(productID string) float64 {
	price, err := s.Prods.Price(productID)
	if err != nil {
		return 0
	}
	return price
}

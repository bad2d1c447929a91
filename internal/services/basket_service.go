package services

import (
	"database/sql"

	"geekshop/internal/repos"
)

type BasketService struct {
	Baskets *repos.BasketRepo
	Prods   *repos.ProductRepo
}

func NewBasketService(baskets *repos.BasketRepo, prods *repos.ProductRepo) *BasketService {
	return &BasketService{Baskets: baskets, Prods: prods}
}

type BasketView struct {
	Items         []repos.BasketLineRow
	TotalQuantity int
	TotalCost     float64
}

// Add puts one unit of the product in the user's basket (upsert). The
// product must exist and be active.
func (s *BasketService) Add(userID, productID string) error {
	p, err := s.Prods.Get(productID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !p.IsActive {
		return ErrNotFound
	}
	return s.Baskets.Add(userID, productID)
}

// SetQuantity updates (or, at qty <= 0, deletes) the line and returns the
// fresh basket snapshot for the async UI update. The line must belong to
// the user.
func (s *BasketService) SetQuantity(userID, lineID string, quantity int) ([]repos.BasketLineRow, error) {
	line, err := s.Baskets.Get(lineID)
	if err == sql.ErrNoRows || (err == nil && line.UserID != userID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.Baskets.SetQuantity(lineID, quantity); err != nil {
		return nil, err
	}
	return s.Baskets.ItemsByUser(userID)
}

func (s *BasketService) Remove(userID, lineID string) error {
	line, err := s.Baskets.Get(lineID)
	if err == sql.ErrNoRows || (err == nil && line.UserID != userID) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.Baskets.Delete(lineID)
}

func (s *BasketService) View(userID string) (BasketView, error) {
	items, err := s.Baskets.ItemsByUser(userID)
	if err != nil {
		return BasketView{}, err
	}
	v := BasketView{Items: items}
	for _, it := range items {
		v.TotalQuantity += it.Quantity
		v.TotalCost += it.Cost
	}
	return v, nil
}

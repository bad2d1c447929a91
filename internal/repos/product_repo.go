package repos

import (
	"geekshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, category_id, name, description, price, quantity, is_active,
    created_at, COALESCE(updated_at,'') AS updated_at`

// ListActive returns storefront products (active product AND active
// category), cheapest first.
func (r *ProductRepo) ListActive(limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT p.id, p.category_id, p.name, p.description, p.price, p.quantity, p.is_active,
	         p.created_at, COALESCE(p.updated_at,'') AS updated_at
	  FROM products p
	  JOIN categories c ON c.id = p.category_id
	  WHERE p.is_active = 1 AND c.is_active = 1
	  ORDER BY p.price
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

func (r *ProductRepo) ListActiveByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT p.id, p.category_id, p.name, p.description, p.price, p.quantity, p.is_active,
	         p.created_at, COALESCE(p.updated_at,'') AS updated_at
	  FROM products p
	  JOIN categories c ON c.id = p.category_id
	  WHERE p.category_id = ? AND p.is_active = 1 AND c.is_active = 1
	  ORDER BY p.price
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

// ListByCategory is the admin view: inactive rows included, active first.
func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE category_id = ?
	  ORDER BY is_active DESC, name ASC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// Price returns the live price for the async price endpoint.
func (r *ProductRepo) Price(id string) (float64, error) {
	var price float64
	err := r.db.Get(&price, `SELECT price FROM products WHERE id = ?`, id)
	return price, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, category_id, name, description, price, quantity, is_active)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Quantity, p.IsActive)
	return err
}

func (r *ProductRepo) Update(p domain.Product) error {
	_, err := r.db.Exec(`
	  UPDATE products
	  SET category_id = ?, name = ?, description = ?, price = ?, quantity = ?, is_active = ?,
	      updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, p.CategoryID, p.Name, p.Description, p.Price, p.Quantity, p.IsActive, p.ID)
	return err
}

func (r *ProductRepo) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`
	  UPDATE products SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, active, id)
	return err
}

package repos

import (
	"geekshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, description, is_active, created_at, COALESCE(updated_at,'') AS updated_at`

// ListActive feeds the storefront category menu.
func (r *CategoryRepo) ListActive() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT `+categoryCols+`
	  FROM categories
	  WHERE is_active = 1
	  ORDER BY name
	`)
	return out, err
}

// List returns every category, active or not, for the admin console.
func (r *CategoryRepo) List(limit, offset int) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT `+categoryCols+`
	  FROM categories
	  ORDER BY name
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) Create(c domain.Category) error {
	_, err := r.db.Exec(`
	  INSERT INTO categories(id, name, description, is_active)
	  VALUES(?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.IsActive)
	return err
}

func (r *CategoryRepo) Update(c domain.Category) error {
	_, err := r.db.Exec(`
	  UPDATE categories
	  SET name = ?, description = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, c.Name, c.Description, c.IsActive, c.ID)
	return err
}

// SetActive flips the soft-delete flag. Rows are never removed while
// products still reference them.
func (r *CategoryRepo) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`
	  UPDATE categories SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, active, id)
	return err
}

package services

import (
	"geekshop/internal/domain"
	"geekshop/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminService owns the superuser CRUD screens. Each entity exposes an
// explicit field list; "delete" is SetActive with the flag flipped by the
// caller, never a row removal.
type AdminService struct {
	Users *repos.UserRepo
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewAdminService(users *repos.UserRepo, cats *repos.CategoryRepo, prods *repos.ProductRepo) *AdminService {
	return &AdminService{Users: users, Cats: cats, Prods: prods}
}

// ---------- users ----------

type AdminUserForm struct {
	Username    string
	Email       string
	Password    string // empty on update keeps the stored hash
	Age         int
	IsActive    bool
	IsSuperuser bool
}

func (s *AdminService) ListUsers(page, pageSize int) ([]domain.User, error) {
	return s.Users.List(pageSize, (page-1)*pageSize)
}

func (s *AdminService) GetUser(id string) (*domain.User, error) {
	return s.Users.ByID(id)
}

func (s *AdminService) CreateUser(f AdminUserForm) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), 12)
	if err != nil {
		return "", err
	}
	u := domain.User{
		ID:          uuid.NewString(),
		Username:    f.Username,
		Email:       f.Email,
		Hash:        string(hash),
		Age:         f.Age,
		IsActive:    f.IsActive,
		IsSuperuser: f.IsSuperuser,
	}
	return u.ID, s.Users.Create(u)
}

func (s *AdminService) UpdateUser(id string, f AdminUserForm) error {
	u := domain.User{
		ID:          id,
		Username:    f.Username,
		Email:       f.Email,
		Age:         f.Age,
		IsActive:    f.IsActive,
		IsSuperuser: f.IsSuperuser,
	}
	if f.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), 12)
		if err != nil {
			return err
		}
		u.Hash = string(hash)
	}
	return s.Users.AdminUpdate(u)
}

func (s *AdminService) SetUserActive(id string, active bool) error {
	return s.Users.SetActive(id, active)
}

// ---------- categories ----------

type CategoryForm struct {
	Name        string
	Description string
	IsActive    bool
}

func (s *AdminService) ListCategories(page, pageSize int) ([]domain.Category, error) {
	return s.Cats.List(pageSize, (page-1)*pageSize)
}

func (s *AdminService) GetCategory(id string) (domain.Category, error) {
	return s.Cats.Get(id)
}

func (s *AdminService) CreateCategory(f CategoryForm) (string, error) {
	c := domain.Category{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
	}
	return c.ID, s.Cats.Create(c)
}

func (s *AdminService) UpdateCategory(id string, f CategoryForm) error {
	return s.Cats.Update(domain.Category{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
	})
}

func (s *AdminService) SetCategoryActive(id string, active bool) error {
	return s.Cats.SetActive(id, active)
}

// ---------- products ----------

type ProductForm struct {
	CategoryID  string
	Name        string
	Description string
	Price       float64
	Quantity    int
	IsActive    bool
}

// ListProducts shows a category's products to the admin: inactive rows
// included, active first, then by name.
func (s *AdminService) ListProducts(categoryID string, page, pageSize int) ([]domain.Product, error) {
	return s.Prods.ListByCategory(categoryID, pageSize, (page-1)*pageSize)
}

func (s *AdminService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *AdminService) CreateProduct(f ProductForm) (string, error) {
	p := domain.Product{
		ID:          uuid.NewString(),
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Quantity:    f.Quantity,
		IsActive:    f.IsActive,
	}
	return p.ID, s.Prods.Create(p)
}

func (s *AdminService) UpdateProduct(id string, f ProductForm) error {
	return s.Prods.Update(domain.Product{
		ID:          id,
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Quantity:    f.Quantity,
		IsActive:    f.IsActive,
	})
}

func (s *AdminService) SetProductActive(id string, active bool) error {
	return s.Prods.SetActive(id, active)
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"geekshop/internal/cache"
	"geekshop/internal/domain"
	"geekshop/internal/repos"
)

// CatalogService serves the storefront read paths, optionally through the
// LOW_CACHE redis cache. Lists are cached whole and paginated in memory so
// every page shares one entry; entries expire by TTL only.
type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Cache *cache.Cache // nil disables caching
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, c *cache.Cache) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Cache: c}
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	if b, ok := s.Cache.Get(ctx, cache.KeyLinksMenu()); ok {
		var out []domain.Category
		if json.Unmarshal(b, &out) == nil {
			return out, nil
		}
	}
	out, err := s.Cats.ListActive()
	if err != nil {
		return nil, err
	}
	s.put(ctx, cache.KeyLinksMenu(), out)
	return out, nil
}

func (s *CatalogService) Category(ctx context.Context, id string) (domain.Category, error) {
	if b, ok := s.Cache.Get(ctx, cache.KeyCategory(id)); ok {
		var c domain.Category
		if json.Unmarshal(b, &c) == nil {
			return c, nil
		}
	}
	c, err := s.Cats.Get(id)
	if err == sql.ErrNoRows {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, err
	}
	if !c.IsActive {
		return domain.Category{}, ErrNotFound
	}
	s.put(ctx, cache.KeyCategory(id), c)
	return c, nil
}

// Products lists active products in active categories ordered by price.
func (s *CatalogService) Products(ctx context.Context, page, pageSize int) ([]domain.Product, error) {
	if b, ok := s.Cache.Get(ctx, cache.KeyProductsByPrice()); ok {
		var all []domain.Product
		if json.Unmarshal(b, &all) == nil {
			return paginate(all, page, pageSize), nil
		}
	}
	all, err := s.Prods.ListActive(-1, 0)
	if err != nil {
		return nil, err
	}
	s.put(ctx, cache.KeyProductsByPrice(), all)
	return paginate(all, page, pageSize), nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, catID string, page, pageSize int) ([]domain.Product, error) {
	if b, ok := s.Cache.Get(ctx, cache.KeyCategoryProducts(catID)); ok {
		var all []domain.Product
		if json.Unmarshal(b, &all) == nil {
			return paginate(all, page, pageSize), nil
		}
	}
	all, err := s.Prods.ListActiveByCategory(catID, -1, 0)
	if err != nil {
		return nil, err
	}
	s.put(ctx, cache.KeyCategoryProducts(catID), all)
	return paginate(all, page, pageSize), nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	if b, ok := s.Cache.Get(ctx, cache.KeyProduct(id)); ok {
		var p domain.Product
		if json.Unmarshal(b, &p) == nil {
			return p, nil
		}
	}
	p, err := s.Prods.Get(id)
	if err == sql.ErrNoRows {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	if !p.IsActive {
		return domain.Product{}, ErrNotFound
	}
	s.put(ctx, cache.KeyProduct(id), p)
	return p, nil
}

func (s *CatalogService) put(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	if b, err := json.Marshal(v); err == nil {
		s.Cache.Put(ctx, key, b)
	}
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package handlers

import (
	"geekshop/internal/cache"
	"geekshop/internal/config"
	"geekshop/internal/repos"
	"geekshop/internal/services"

	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	BasketHandler  *BasketHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, cc *cache.Cache, views *html.Engine) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	basketRepo := repos.NewBasketRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, cc)
	basketSvc := services.NewBasketService(basketRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, basketRepo, prodRepo)
	adminSvc := services.NewAdminService(auth.Users, catRepo, prodRepo)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		BasketHandler:  &BasketHandler{Basket: basketSvc, Views: views},
		OrderHandler:   &OrderHandler{Order: orderSvc, Basket: basketSvc},
		AdminHandler:   &AdminHandler{Admin: adminSvc},
	}
}

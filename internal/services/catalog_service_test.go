package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"geekshop/internal/repos"
	"geekshop/internal/services"
)

// The storefront hides everything inactive: products themselves, and
// whole categories together with their products.
func TestCatalogHidesInactive(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	catalog := services.NewCatalogService(catRepo, prodRepo, nil)

	cats, err := catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 4)

	// cheapest first
	products, err := catalog.Products(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "prod-lmp-001", products[0].ID)
	require.Equal(t, "prod-chr-001", products[1].ID)

	// a deactivated product disappears from the storefront
	require.NoError(t, prodRepo.SetActive("prod-lmp-001", false))
	_, err = catalog.Product(ctx, "prod-lmp-001")
	require.ErrorIs(t, err, services.ErrNotFound)

	// a deactivated category takes its menu entry and products with it
	require.NoError(t, catRepo.SetActive("cat-office", false))
	cats, err = catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)

	_, err = catalog.Category(ctx, "cat-office")
	require.ErrorIs(t, err, services.ErrNotFound)

	all, err := catalog.Products(ctx, 1, 50)
	require.NoError(t, err)
	for _, p := range all {
		require.NotEqual(t, "cat-office", p.CategoryID)
		require.NotEqual(t, "prod-lmp-001", p.ID)
	}
}

func TestCatalogPagination(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	catalog := services.NewCatalogService(
		repos.NewCategoryRepo(db), repos.NewProductRepo(db), nil)

	page1, err := catalog.Products(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)

	page2, err := catalog.Products(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	// no overlap between pages
	for _, a := range page1 {
		for _, b := range page2 {
			require.NotEqual(t, a.ID, b.ID)
		}
	}

	// a page past the end is empty, not an error
	page3, err := catalog.Products(ctx, 3, 3)
	require.NoError(t, err)
	require.Empty(t, page3)
}

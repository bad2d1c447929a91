package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geekshop/internal/repos"
	"geekshop/internal/services"
)

// Admin "delete" flips the active flag and never removes the row.
func TestAdminCategoryToggleKeepsRow(t *testing.T) {
	db := memdb(t)
	admin := services.NewAdminService(
		repos.NewUserRepo(db), repos.NewCategoryRepo(db), repos.NewProductRepo(db))

	id, err := admin.CreateCategory(services.CategoryForm{
		Name: "Outdoor", Description: "Garden furniture", IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, admin.SetCategoryActive(id, false))
	cat, err := admin.GetCategory(id)
	require.NoError(t, err)
	require.False(t, cat.IsActive)
	require.Equal(t, "Outdoor", cat.Name)

	require.NoError(t, admin.SetCategoryActive(id, true))
	cat, err = admin.GetCategory(id)
	require.NoError(t, err)
	require.True(t, cat.IsActive)
}

func TestAdminUserUpdateKeepsPasswordWhenBlank(t *testing.T) {
	db := memdb(t)
	admin := services.NewAdminService(
		repos.NewUserRepo(db), repos.NewCategoryRepo(db), repos.NewProductRepo(db))

	id, err := admin.CreateUser(services.AdminUserForm{
		Username: "clerk", Email: "clerk@shop.test", Password: "Cl3rkPass!", Age: 25, IsActive: true,
	})
	require.NoError(t, err)

	var before string
	require.NoError(t, db.Get(&before, `SELECT password_hash FROM users WHERE id = ?`, id))

	// blank password on update must not touch the stored hash
	require.NoError(t, admin.UpdateUser(id, services.AdminUserForm{
		Username: "clerk", Email: "clerk@shop.test", Password: "", Age: 26, IsActive: true,
	}))

	var after string
	require.NoError(t, db.Get(&after, `SELECT password_hash FROM users WHERE id = ?`, id))
	require.Equal(t, before, after)

	u, err := admin.GetUser(id)
	require.NoError(t, err)
	require.Equal(t, 26, u.Age)
}

// Inactive products stay visible on the admin list, sorted after the
// active ones.
func TestAdminProductListIncludesInactive(t *testing.T) {
	db := memdb(t)
	admin := services.NewAdminService(
		repos.NewUserRepo(db), repos.NewCategoryRepo(db), repos.NewProductRepo(db))

	require.NoError(t, admin.SetProductActive("prod-arm-001", false))

	products, err := admin.ListProducts("cat-home", 1, 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.True(t, products[0].IsActive)
	require.False(t, products[1].IsActive)
	require.Equal(t, "prod-arm-001", products[1].ID)
}

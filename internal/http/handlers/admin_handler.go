package handlers

import (
	applog "geekshop/internal/log"
	"geekshop/internal/services"
	"geekshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the /admin_staff console. Routes are mounted behind
// RequireSuperuser; "delete" everywhere flips the active flag.
type AdminHandler struct {
	Admin *services.AdminService
}

const adminPageSize = 10

// ---------- users ----------

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	users, err := h.Admin.ListUsers(page, adminPageSize)
	if err != nil {
		applog.Error(c, "admin.users.list", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "admin_users", fiber.Map{"Objects": users, "Page": page})
}

func (h *AdminHandler) UserCreateForm(c *fiber.Ctx) error {
	return render(c, "admin_user_form", fiber.Map{"Object": nil, "Err": ""})
}

func (h *AdminHandler) userForm(c *fiber.Ctx) (services.AdminUserForm, string) {
	username, okU := validate.Username(c.FormValue("username"))
	email, okE := validate.Email(c.FormValue("email"))
	age, okA := validate.Age(c.FormValue("age"))
	if !okU {
		return services.AdminUserForm{}, "invalid username"
	}
	if !okE {
		return services.AdminUserForm{}, "invalid e-mail"
	}
	if !okA {
		return services.AdminUserForm{}, "invalid age"
	}
	return services.AdminUserForm{
		Username:    username,
		Email:       email,
		Password:    c.FormValue("password"),
		Age:         age,
		IsActive:    c.FormValue("is_active") == "on",
		IsSuperuser: c.FormValue("is_superuser") == "on",
	}, ""
}

func (h *AdminHandler) UserCreate(c *fiber.Ctx) error {
	f, msg := h.userForm(c)
	if msg == "" && !validate.Password(f.Password) {
		msg = "password needs 8+ characters with upper, lower and digit"
	}
	if msg != "" {
		applog.Security(c, "admin.users.create.invalid", map[string]any{"reason": msg})
		return c.Status(400).Render("admin_user_form", fiber.Map{"Object": nil, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	id, err := h.Admin.CreateUser(f)
	if err != nil {
		applog.Error(c, "admin.users.create", err, nil)
		return c.Status(400).Render("admin_user_form", fiber.Map{"Object": nil, "Err": "could not create user", "CSRFToken": c.Cookies("csrf_")})
	}
	applog.Audit(c, "admin.users.create", map[string]any{"user_id": id})
	return c.Redirect("/admin_staff/users")
}

func (h *AdminHandler) UserUpdateForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "User not found")
	}
	u, err := h.Admin.GetUser(id)
	if err != nil {
		return notFoundPage(c, "User not found")
	}
	return render(c, "admin_user_form", fiber.Map{"Object": u, "Err": ""})
}

func (h *AdminHandler) UserUpdate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "User not found")
	}
	u, err := h.Admin.GetUser(id)
	if err != nil {
		return notFoundPage(c, "User not found")
	}
	f, msg := h.userForm(c)
	if msg == "" && f.Password != "" && !validate.Password(f.Password) {
		msg = "password needs 8+ characters with upper, lower and digit"
	}
	if msg != "" {
		return c.Status(400).Render("admin_user_form", fiber.Map{"Object": u, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	if err := h.Admin.UpdateUser(id, f); err != nil {
		applog.Error(c, "admin.users.update", err, map[string]any{"user_id": id})
		return c.Status(400).Render("admin_user_form", fiber.Map{"Object": u, "Err": "could not save user", "CSRFToken": c.Cookies("csrf_")})
	}
	applog.Audit(c, "admin.users.update", map[string]any{"user_id": id})
	return c.Redirect("/admin_staff/users")
}

// UserDelete toggles the account's active flag; the row is kept.
func (h *AdminHandler) UserDelete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "User not found")
	}
	u, err := h.Admin.GetUser(id)
	if err != nil {
		return notFoundPage(c, "User not found")
	}
	if err := h.Admin.SetUserActive(id, !u.IsActive); err != nil {
		applog.Error(c, "admin.users.toggle", err, map[string]any{"user_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.users.toggle", map[string]any{"user_id": id, "active": !u.IsActive})
	return c.Redirect("/admin_staff/users")
}

// ---------- categories ----------

func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	cats, err := h.Admin.ListCategories(page, adminPageSize)
	if err != nil {
		applog.Error(c, "admin.categories.list", err, nil)
		return fiber.ErrInternalServerError
	}
	return render(c, "admin_categories", fiber.Map{"Objects": cats, "Page": page})
}

func (h *AdminHandler) CategoryCreateForm(c *fiber.Ctx) error {
	return render(c, "admin_category_form", fiber.Map{"Object": nil, "Err": ""})
}

func (h *AdminHandler) categoryForm(c *fiber.Ctx) (services.CategoryForm, string) {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return services.CategoryForm{}, "invalid name"
	}
	return services.CategoryForm{
		Name:        name,
		Description: c.FormValue("description"),
		IsActive:    c.FormValue("is_active") == "on",
	}, ""
}

func (h *AdminHandler) CategoryCreate(c *fiber.Ctx) error {
	f, msg := h.categoryForm(c)
	if msg != "" {
		return c.Status(400).Render("admin_category_form", fiber.Map{"Object": nil, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	id, err := h.Admin.CreateCategory(f)
	if err != nil {
		applog.Error(c, "admin.categories.create", err, nil)
		return c.Status(400).Render("admin_category_form", fiber.Map{"Object": nil, "Err": "could not create category", "CSRFToken": c.Cookies("csrf_")})
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": id})
	return c.Redirect("/admin_staff/categories")
}

func (h *AdminHandler) CategoryUpdateForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	cat, err := h.Admin.GetCategory(id)
	if err != nil {
		return notFoundPage(c, "Category not found")
	}
	return render(c, "admin_category_form", fiber.Map{"Object": cat, "Err": ""})
}

func (h *AdminHandler) CategoryUpdate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	f, msg := h.categoryForm(c)
	if msg != "" {
		cat, _ := h.Admin.GetCategory(id)
		return c.Status(400).Render("admin_category_form", fiber.Map{"Object": cat, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	if err := h.Admin.UpdateCategory(id, f); err != nil {
		applog.Error(c, "admin.categories.update", err, map[string]any{"category_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": id})
	return c.Redirect("/admin_staff/categories")
}

func (h *AdminHandler) CategoryDelete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	cat, err := h.Admin.GetCategory(id)
	if err != nil {
		return notFoundPage(c, "Category not found")
	}
	if err := h.Admin.SetCategoryActive(id, !cat.IsActive); err != nil {
		applog.Error(c, "admin.categories.toggle", err, map[string]any{"category_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.categories.toggle", map[string]any{"category_id": id, "active": !cat.IsActive})
	return c.Redirect("/admin_staff/categories")
}

// ---------- products ----------

func (h *AdminHandler) Products(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("category_id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	cat, err := h.Admin.GetCategory(catID)
	if err != nil {
		return notFoundPage(c, "Category not found")
	}
	page := validate.Page(c.Query("page"))
	products, err := h.Admin.ListProducts(catID, page, adminPageSize)
	if err != nil {
		applog.Error(c, "admin.products.list", err, map[string]any{"category_id": catID})
		return fiber.ErrInternalServerError
	}
	return render(c, "admin_products", fiber.Map{"Category": cat, "Objects": products, "Page": page})
}

func (h *AdminHandler) ProductCreateForm(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("category_id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	cat, err := h.Admin.GetCategory(catID)
	if err != nil {
		return notFoundPage(c, "Category not found")
	}
	return render(c, "admin_product_form", fiber.Map{"Object": nil, "Category": cat, "Err": ""})
}

func (h *AdminHandler) productForm(c *fiber.Ctx, categoryID string) (services.ProductForm, string) {
	name, okN := validate.Name(c.FormValue("name"))
	price, okP := validate.Price(c.FormValue("price"))
	qty, okQ := validate.Qty(c.FormValue("quantity"))
	if !okN {
		return services.ProductForm{}, "invalid name"
	}
	if !okP {
		return services.ProductForm{}, "invalid price"
	}
	if !okQ || qty < 0 {
		return services.ProductForm{}, "invalid quantity"
	}
	if v := c.FormValue("category_id"); v != "" {
		if id, ok := validate.ID(v); ok {
			categoryID = id
		}
	}
	return services.ProductForm{
		CategoryID:  categoryID,
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		Quantity:    qty,
		IsActive:    c.FormValue("is_active") == "on",
	}, ""
}

func (h *AdminHandler) ProductCreate(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("category_id"))
	if !ok {
		return notFoundPage(c, "Category not found")
	}
	f, msg := h.productForm(c, catID)
	if msg != "" {
		cat, _ := h.Admin.GetCategory(catID)
		return c.Status(400).Render("admin_product_form", fiber.Map{"Object": nil, "Category": cat, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	id, err := h.Admin.CreateProduct(f)
	if err != nil {
		applog.Error(c, "admin.products.create", err, map[string]any{"category_id": catID})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": id})
	return c.Redirect("/admin_staff/products/" + f.CategoryID)
}

func (h *AdminHandler) ProductUpdateForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Product not found")
	}
	p, err := h.Admin.GetProduct(id)
	if err != nil {
		return notFoundPage(c, "Product not found")
	}
	cat, _ := h.Admin.GetCategory(p.CategoryID)
	return render(c, "admin_product_form", fiber.Map{"Object": p, "Category": cat, "Err": ""})
}

func (h *AdminHandler) ProductUpdate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Product not found")
	}
	p, err := h.Admin.GetProduct(id)
	if err != nil {
		return notFoundPage(c, "Product not found")
	}
	f, msg := h.productForm(c, p.CategoryID)
	if msg != "" {
		cat, _ := h.Admin.GetCategory(p.CategoryID)
		return c.Status(400).Render("admin_product_form", fiber.Map{"Object": p, "Category": cat, "Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	if err := h.Admin.UpdateProduct(id, f); err != nil {
		applog.Error(c, "admin.products.update", err, map[string]any{"product_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.Redirect("/admin_staff/products/" + f.CategoryID)
}

func (h *AdminHandler) ProductDelete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFoundPage(c, "Product not found")
	}
	p, err := h.Admin.GetProduct(id)
	if err != nil {
		return notFoundPage(c, "Product not found")
	}
	if err := h.Admin.SetProductActive(id, !p.IsActive); err != nil {
		applog.Error(c, "admin.products.toggle", err, map[string]any{"product_id": id})
		return fiber.ErrInternalServerError
	}
	applog.Audit(c, "admin.products.toggle", map[string]any{"product_id": id, "active": !p.IsActive})
	return c.Redirect("/admin_staff/products/" + p.CategoryID)
}

package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"storefront/internal/errors"
	"storefront/internal/service"
)

const (
	adminCategories   = "/admin/categories"
	adminProducts     = "/admin/products"
	adminUsers        = "/admin/users"
	adminTransactions = "/admin/transactions"
)

func invalidForm() error {
	return errors.NewValidationError("", "invalid form submission")
}

// CreateCategory adds a category.
func (h *WebHandler) CreateCategory(c echo.Context) error {
	var in service.CategoryInput
	if err := c.Bind(&in); err != nil {
		return failed(c, adminCategories, invalidForm())
	}

	category, err := h.svc.Catalog.CreateCategory(c.Request().Context(), in)
	if err != nil {
		return failed(c, adminCategories, err)
	}
	return done(c, adminCategories, fmt.Sprintf("Category %q created.", category.Name))
}

// UpdateCategory renames a category.
func (h *WebHandler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminCategories, err)
	}
	in := service.CategoryInput{Name: c.FormValue("name")}

	category, err := h.svc.Catalog.RenameCategory(c.Request().Context(), id, in)
	if err != nil {
		return failed(c, adminCategories, err)
	}
	return done(c, adminCategories, fmt.Sprintf("Category %q updated.", category.Name))
}

// DeleteCategory removes an empty category.
func (h *WebHandler) DeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminCategories, err)
	}

	if err := h.svc.Catalog.DeleteCategory(c.Request().Context(), id); err != nil {
		return failed(c, adminCategories, err)
	}
	return done(c, adminCategories, "Category deleted.")
}

// CreateProduct adds a product.
func (h *WebHandler) CreateProduct(c echo.Context) error {
	in, err := parseProductForm(c)
	if err != nil {
		return failed(c, adminProducts, err)
	}

	product, err := h.svc.Catalog.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return failed(c, adminProducts, err)
	}
	return done(c, adminProducts, fmt.Sprintf("Product %q created.", product.Name))
}

// UpdateProduct edits a product.
func (h *WebHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminProducts, err)
	}
	in, err := parseProductForm(c)
	if err != nil {
		return failed(c, adminProducts, err)
	}

	product, err := h.svc.Catalog.UpdateProduct(c.Request().Context(), id, in)
	if err != nil {
		return failed(c, adminProducts, err)
	}
	return done(c, adminProducts, fmt.Sprintf("Product %q updated.", product.Name))
}

// DeleteProduct removes an unreferenced product.
func (h *WebHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminProducts, err)
	}

	if err := h.svc.Catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return failed(c, adminProducts, err)
	}
	return done(c, adminProducts, "Product deleted.")
}

// SetUserAdmin grants or revokes the admin flag from the is_admin field.
func (h *WebHandler) SetUserAdmin(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminUsers, err)
	}

	user, err := h.svc.Users.SetAdmin(c.Request().Context(), identity(c).UserID(), id, formBool(c, "is_admin"))
	if err != nil {
		return failed(c, adminUsers, err)
	}
	if user.IsAdmin {
		return done(c, adminUsers, fmt.Sprintf("%s is now an admin.", user.Username))
	}
	return done(c, adminUsers, fmt.Sprintf("%s is no longer an admin.", user.Username))
}

// DeleteUser removes a user without purchase history.
func (h *WebHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminUsers, err)
	}

	if err := h.svc.Users.DeleteUser(c.Request().Context(), identity(c).UserID(), id); err != nil {
		return failed(c, adminUsers, err)
	}
	return done(c, adminUsers, "User deleted.")
}

// DeleteTransaction removes a transaction and its orders.
func (h *WebHandler) DeleteTransaction(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failed(c, adminTransactions, err)
	}

	if err := h.svc.Transactions.Delete(c.Request().Context(), id); err != nil {
		return failed(c, adminTransactions, err)
	}
	return done(c, adminTransactions, "Transaction deleted.")
}

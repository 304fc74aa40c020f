package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

// CatalogHandler serves read projections of categories and products.
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts godoc
// @Summary Search products
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param q query string false "Text in name or description"
// @Param category_id query int false "Category"
// @Param min_price query string false "Lowest price"
// @Param max_price query string false "Highest price"
// @Param in_stock query bool false "Only products in stock"
// @Param sort query string false "name, price_asc, price_desc or newest"
// @Success 200 {array} ProductView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return apiError(c, err)
	}

	products, err := h.catalog.SearchProducts(c.Request().Context(), filter)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newProductViews(products))
}

// parseProductFilter reads search criteria from the query string.
func parseProductFilter(c echo.Context) (model.ProductFilter, error) {
	filter := model.ProductFilter{
		Query: c.QueryParam("q"),
		Sort:  model.ProductSort(c.QueryParam("sort")),
	}

	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, errors.NewValidationError("category_id", "must be a positive integer")
		}
		filter.CategoryID = uint(id)
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errors.NewValidationError(p.name, "must be a number")
		}
		*p.dst = &d
	}
	if raw := c.QueryParam("in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.NewValidationError("in_stock", "must be true or false")
		}
		filter.InStockOnly = inStock
	}
	return filter, nil
}

// GetProduct godoc
// @Summary Get product by id
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} ProductView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apiError(c, err)
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newProductView(product))
}

// ListCategories godoc
// @Summary List categories with product counts
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CategoryView
// @Failure 401 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	summaries, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}

	views := make([]CategoryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, CategoryView{ID: s.ID, Name: s.Name, ProductCount: s.ProductCount})
	}
	return c.JSON(http.StatusOK, views)
}

// GetCategory godoc
// @Summary Get category with its products
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apiError(c, err)
	}

	category, products, err := h.catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	for i := range products {
		products[i].Category = category
	}
	return c.JSON(http.StatusOK, CategoryView{
		ID:           category.ID,
		Name:         category.Name,
		ProductCount: int64(len(products)),
		Products:     newProductViews(products),
	})
}

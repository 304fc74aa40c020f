package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// CartHandler serves the caller's cart.
type CartHandler struct {
	cart service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart godoc
// @Summary Current user's cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CartView
// @Failure 401 {object} errors.ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c echo.Context) error {
	cart, err := h.cart.View(c.Request().Context(), identity(c).UserID())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newCartView(cart))
}

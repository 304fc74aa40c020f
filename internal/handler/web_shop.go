package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CartAdd puts a product in the caller's cart.
func (h *WebHandler) CartAdd(c echo.Context) error {
	productID, err := formID(c, "product_id")
	if err != nil {
		return failed(c, "/cart", err)
	}
	qty, err := formInt(c, "quantity", 1)
	if err != nil {
		return failed(c, "/cart", err)
	}

	line, err := h.svc.Cart.Add(c.Request().Context(), identity(c).UserID(), productID, qty)
	if err != nil {
		return failed(c, "/cart", err)
	}
	return done(c, "/cart", fmt.Sprintf("Added %d x %s to your cart.", qty, line.Product.Name))
}

// CartUpdate sets the quantity of a cart line; zero or less removes it.
func (h *WebHandler) CartUpdate(c echo.Context) error {
	lineID, err := parseID(c, "id")
	if err != nil {
		return failed(c, "/cart", err)
	}
	qty, err := formInt(c, "quantity", 0)
	if err != nil {
		return failed(c, "/cart", err)
	}

	line, err := h.svc.Cart.Update(c.Request().Context(), identity(c).UserID(), lineID, qty)
	if err != nil {
		return failed(c, "/cart", err)
	}
	if line == nil {
		return done(c, "/cart", "Item removed from cart.")
	}
	return done(c, "/cart", "Cart updated.")
}

// CartRemove deletes a cart line.
func (h *WebHandler) CartRemove(c echo.Context) error {
	lineID, err := parseID(c, "id")
	if err != nil {
		return failed(c, "/cart", err)
	}

	if err := h.svc.Cart.Remove(c.Request().Context(), identity(c).UserID(), lineID); err != nil {
		return failed(c, "/cart", err)
	}
	return done(c, "/cart", "Item removed from cart.")
}

// Checkout purchases the whole cart and shows the new transaction.
func (h *WebHandler) Checkout(c echo.Context) error {
	txn, err := h.svc.Checkout.Checkout(c.Request().Context(), identity(c).UserID())
	if err != nil {
		return failedTo(c, "/cart", err)
	}
	setFlash(c, FlashSuccess, "Order placed. Thank you for your purchase!")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/transactions/%d", txn.ID))
}

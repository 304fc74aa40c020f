package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// TransactionHandler serves purchase records.
type TransactionHandler struct {
	transactions service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactions service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func summaries(list []model.TransactionSummary) []model.TransactionSummary {
	if list == nil {
		return []model.TransactionSummary{}
	}
	return list
}

// ListMine godoc
// @Summary Current user's transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.TransactionSummary
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/transactions [get]
func (h *TransactionHandler) ListMine(c echo.Context) error {
	list, err := h.transactions.ListForUser(c.Request().Context(), identity(c).UserID())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, summaries(list))
}

// GetMine godoc
// @Summary One of the current user's transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionView
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/transactions/{id} [get]
func (h *TransactionHandler) GetMine(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apiError(c, err)
	}

	txn, err := h.transactions.GetForUser(c.Request().Context(), identity(c).UserID(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newTransactionView(txn))
}

// List godoc
// @Summary All transactions, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.TransactionSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	list, err := h.transactions.List(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, summaries(list))
}

// Get godoc
// @Summary Transaction with its orders
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionView
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apiError(c, err)
	}

	txn, err := h.transactions.Get(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newTransactionView(txn))
}

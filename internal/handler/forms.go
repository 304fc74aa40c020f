package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

// formInt reads an integer form field, using def when the field is blank.
func formInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name, "must be a whole number")
	}
	return n, nil
}

// formID reads a required positive id form field.
func formID(c echo.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return 0, errors.NewValidationError(name, "is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// formBool reads a checkbox-style form field.
func formBool(c echo.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.FormValue(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// parseProductForm reads the product editor fields.
func parseProductForm(c echo.Context) (service.ProductInput, error) {
	in := service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}

	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		return in, errors.NewValidationError("price", "must be a number")
	}
	in.Price = price

	if in.Quantity, err = formInt(c, "quantity", 0); err != nil {
		return in, err
	}

	rawDate := strings.TrimSpace(c.FormValue("man_date"))
	if rawDate == "" {
		return in, errors.NewValidationError("man_date", "is required")
	}
	if in.ManufacturedOn, err = time.Parse(model.DateLayout, rawDate); err != nil {
		return in, errors.NewValidationError("man_date", "must be a date in YYYY-MM-DD format")
	}

	if in.CategoryID, err = formID(c, "category_id"); err != nil {
		return in, err
	}
	return in, nil
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartLineNotFound is returned when a cart line is not found.
	ErrCartLineNotFound = errors.New("cart item not found")
	// ErrTransactionNotFound is returned when a transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrCategoryExists is returned when a category name is already used.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryHasProducts is returned when deleting a category that still owns products.
	ErrCategoryHasProducts = errors.New("category still has products")
	// ErrProductInUse is returned when deleting a product referenced by carts or orders.
	ErrProductInUse = errors.New("product is referenced by carts or orders")
	// ErrUserHasTransactions is returned when deleting a user with purchase history.
	ErrUserHasTransactions = errors.New("user has transactions")

	// ErrOutOfStock is returned when a cart quantity exceeds the product stock.
	ErrOutOfStock = errors.New("not enough stock")
	// ErrInsufficientStock is returned when checkout finds a line exceeding live stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrUnauthorized is returned when a request needs an authenticated user.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned on ownership or role mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned when login or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return errors.New(text) }

// ValidationError describes malformed or missing input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError names the product whose stock could not cover a request.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
	// Checkout is set when raised by checkout rather than by a cart mutation.
	Checkout bool
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d of %q available, %d requested", e.Available, e.ProductName, e.Requested)
}

// Is matches ErrInsufficientStock for checkout failures and ErrOutOfStock for cart failures.
func (e *InsufficientStockError) Is(target error) bool {
	if e.Checkout {
		return target == ErrInsufficientStock
	}
	return target == ErrOutOfStock
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Field      string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
		Field: e.Field,
	}
}

// IsInternal reports whether the mapped error is an unexpected failure.
func (e *HTTPError) IsInternal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

type mapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching entry wins.
var mappings = []mapping{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
	{ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{ErrCartLineNotFound, http.StatusNotFound, "CART_ITEM_NOT_FOUND"},
	{ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},
	{ErrUsernameTaken, http.StatusConflict, "USERNAME_TAKEN"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrCategoryExists, http.StatusConflict, "CATEGORY_EXISTS"},
	{ErrCategoryHasProducts, http.StatusConflict, "CATEGORY_HAS_PRODUCTS"},
	{ErrProductInUse, http.StatusConflict, "PRODUCT_IN_USE"},
	{ErrUserHasTransactions, http.StatusConflict, "USER_HAS_TRANSACTIONS"},
	{ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
	{ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
	{ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpErr := NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_ERROR")
		httpErr.Field = verr.Field
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

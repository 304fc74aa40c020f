package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Transactions *handler.TransactionHandler
	Health       *handler.HealthHandler
	Web          *handler.WebHandler
}

// Security carries what the identity middleware needs.
type Security struct {
	JWT    *auth.JWTService
	Tokens auth.TokenStoreInterface
	Users  auth.UserLookup
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger zerolog.Logger, sec Security, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger(logger))

	e.Validator = NewCustomValidator()

	e.GET("/healthz", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Every request past this point carries an identity, anonymous when no
	// usable token was presented.
	identified := e.Group("", auth.TokenMiddleware(sec.JWT), auth.ResolveIdentity(sec.Users, sec.Tokens))

	registerAPI(identified.Group("/api"), cfg, h)
	registerWeb(identified, h.Web)
}

func registerAPI(api *echo.Group, cfg *config.Config, h Handlers) {
	authenticated := auth.Gate(auth.Require(auth.Authenticated), handler.RejectAPI)
	admin := auth.Gate(auth.Require(auth.Admin), handler.RejectAPI)

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login, loginLimiter(cfg))
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	secured := api.Group("", authenticated)
	secured.GET("/me", h.Auth.Me)
	secured.GET("/me/transactions", h.Transactions.ListMine)
	secured.GET("/me/transactions/:id", h.Transactions.GetMine)
	secured.GET("/products", h.Catalog.ListProducts)
	secured.GET("/products/:id", h.Catalog.GetProduct)
	secured.GET("/categories", h.Catalog.ListCategories)
	secured.GET("/categories/:id", h.Catalog.GetCategory)
	secured.GET("/cart", h.Cart.GetCart)

	admins := api.Group("", admin)
	admins.GET("/users", h.Users.ListUsers)
	admins.GET("/users/:id", h.Users.GetUser)
	admins.GET("/transactions", h.Transactions.List)
	admins.GET("/transactions/:id", h.Transactions.Get)
}

func registerWeb(g *echo.Group, web *handler.WebHandler) {
	authenticated := auth.Gate(auth.Require(auth.Authenticated), handler.RejectWeb)
	admin := auth.Gate(auth.Require(auth.Admin), handler.RejectWeb)

	g.POST("/register", web.Register)
	g.POST("/login", web.Login)

	shop := g.Group("", authenticated)
	shop.POST("/logout", web.Logout)
	shop.POST("/profile", web.UpdateProfile)
	shop.POST("/cart/add", web.CartAdd)
	shop.POST("/cart/:id/update", web.CartUpdate)
	shop.POST("/cart/:id/remove", web.CartRemove)
	shop.POST("/checkout", web.Checkout)

	back := g.Group("/admin", admin)
	back.POST("/categories", web.CreateCategory)
	back.POST("/categories/:id", web.UpdateCategory)
	back.POST("/categories/:id/delete", web.DeleteCategory)
	back.POST("/products", web.CreateProduct)
	back.POST("/products/:id", web.UpdateProduct)
	back.POST("/products/:id/delete", web.DeleteProduct)
	back.POST("/users/:id/admin", web.SetUserAdmin)
	back.POST("/users/:id/delete", web.DeleteUser)
	back.POST("/transactions/:id/delete", web.DeleteTransaction)
}

// loginLimiter throttles login attempts per client IP.
func loginLimiter(cfg *config.Config) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(cfg.LoginRateLimit),
		Burst: cfg.LoginRateBurst,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many login attempts, try again later",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator returns the validator used for request bodies.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: service.NewValidator()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return service.ValidationErrorFrom(cv.validator.Struct(i))
}

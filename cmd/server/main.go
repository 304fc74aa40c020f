package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "storefront/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

// @title Storefront API
// @version 1.0
// @description Online store with catalog, carts, checkout and an admin back office.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.DBConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			log.Fatal().Err(err).Msg("drop tables")
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	repos := repository.NewRepositories(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(0)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing checkout events")
	}
	defer publisher.Close()

	// Initialize services
	authService := service.NewAuthService(repos.Users, hasher, jwtService, tokenStore)
	userService := service.NewUserService(repos.Users, repos.Transactions, hasher, cacheClient)
	catalogService := service.NewCatalogService(repos.Categories, repos.Products, txManager, cacheClient)
	cartService := service.NewCartService(repos.Carts, txManager)
	checkoutService := service.NewCheckoutService(txManager, cacheClient, publisher)
	transactionService := service.NewTransactionService(repos.Transactions)

	created, err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("ensure default admin")
	}
	if created {
		log.Warn().Str("username", cfg.AdminUsername).Msg("created default admin account, change its password")
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, logger,
		router.Security{JWT: jwtService, Tokens: tokenStore, Users: userService},
		router.Handlers{
			Auth:         handler.NewAuthHandler(authService),
			Users:        handler.NewUserHandler(userService),
			Catalog:      handler.NewCatalogHandler(catalogService),
			Cart:         handler.NewCartHandler(cartService),
			Transactions: handler.NewTransactionHandler(transactionService),
			Health: handler.NewHealthHandler(map[string]handler.Pinger{
				"database": handler.PingFunc(func(ctx context.Context) error {
					sqlDB, err := gormDB.DB()
					if err != nil {
						return err
					}
					return sqlDB.PingContext(ctx)
				}),
				"cache": cacheClient,
			}),
			Web: handler.NewWebHandler(handler.WebServices{
				Auth:         authService,
				Users:        userService,
				Catalog:      catalogService,
				Cart:         cartService,
				Checkout:     checkoutService,
				Transactions: transactionService,
			}, cfg.CookieSecure, jwtService.AccessTTL()),
		},
	)

	log.Info().Str("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)).Msg("swagger documentation available")

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

// swaggerURL builds the swagger UI address; host may already carry a scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}

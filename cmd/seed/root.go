package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service"
)

var (
	// Global flags
	noMigrate bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Storefront maintenance commands",
	Long: `Maintenance commands for the storefront database.

Connection settings come from the same environment variables as the server
(MYSQL_DSN, REDIS_ADDR, ...).

Subcommands:
  migrate  - Create or update the schema
  admin    - Create an admin account or promote an existing user
  catalog  - Import categories and products from a YAML file`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noMigrate, "no-migrate", false, "Skip schema migration before running the command")
}

// env is what every subcommand works with.
type env struct {
	cfg   *config.Config
	db    *gorm.DB
	cache *cache.Client
	repos repository.Repositories
}

// connect loads configuration, opens the database and migrates it unless
// migrate is false.
func connect(migrate bool) (*env, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, "console")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.DBConnectRetries)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if migrate {
		if err := db.Migrate(gormDB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &env{
		cfg:   cfg,
		db:    gormDB,
		cache: cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB),
		repos: repository.NewRepositories(gormDB),
	}, nil
}

func (e *env) close() {
	_ = e.cache.Close()
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *env) catalogService() service.CatalogService {
	return service.NewCatalogService(e.repos.Categories, e.repos.Products, repository.NewTxManager(e.db), e.cache)
}

func (e *env) hasher() auth.PasswordHasher {
	return auth.NewBcryptHasher(0)
}

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/errors"
	"storefront/internal/repository"
	"storefront/internal/service"
)

var (
	// Admin flags
	adminUsername string
	adminEmail    string
	adminPassword string
	adminPromote  bool
)

// adminCmd creates an admin account
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create an admin account",
	Long: `Create an admin account, or grant the admin flag to an existing user.

Examples:
  seed admin --username root --email root@example.com --password s3cret
  seed admin --username alice --promote    # alice already exists`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect(!noMigrate)
		if err != nil {
			return err
		}
		defer e.close()

		hasher := e.hasher()
		users := service.NewUserService(e.repos.Users, e.repos.Transactions, hasher, e.cache)
		authService := service.NewAuthService(e.repos.Users, hasher, auth.NewJWTService(e.cfg.JWTSecret, 0, 0), auth.NewTokenStore(e.cache))

		return runAdmin(cmd.Context(), authService, users, e.repos.Users)
	},
}

func init() {
	adminCmd.Flags().StringVar(&adminUsername, "username", "", "Username of the admin (required)")
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "Email of a new admin")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "Password of a new admin")
	adminCmd.Flags().BoolVar(&adminPromote, "promote", false, "Promote the user when it already exists")
	_ = adminCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(adminCmd)
}

// runAdmin creates the account unless it exists, then grants the admin flag.
func runAdmin(ctx context.Context, authService service.AuthService, users service.UserService, repo repository.UserRepository) error {
	user, err := repo.FindByUsername(ctx, adminUsername)
	switch {
	case err == nil:
		if !adminPromote {
			return fmt.Errorf("user %q already exists, pass --promote to make it an admin", adminUsername)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = authService.Register(ctx, service.RegisterInput{
			Username: adminUsername,
			Email:    adminEmail,
			Password: adminPassword,
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", adminUsername, err)
		}
		log.Info().Uint("id", user.ID).Str("username", user.Username).Msg("user created")
	default:
		return fmt.Errorf("load %q: %w", adminUsername, err)
	}

	if user.IsAdmin {
		log.Info().Str("username", user.Username).Msg("user is already an admin")
		return nil
	}
	// Actor 0 is the command line, never a user.
	if _, err := users.SetAdmin(ctx, 0, user.ID, true); err != nil {
		return fmt.Errorf("promote %q: %w", adminUsername, err)
	}
	log.Info().Str("username", user.Username).Msg("admin flag granted")
	return nil
}

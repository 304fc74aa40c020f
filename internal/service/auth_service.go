package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/auth"
	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Name     string `json:"name" form:"name" validate:"max=64"`
}

// TokenPair is issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login accepts either the username or the email as login.
	Login(ctx context.Context, login, password string) (*TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the access token behind claims and, when given, the refresh token.
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	// EnsureAdmin creates the default admin when no admin exists and reports whether it did.
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

type authService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) AuthService {
	return &authService{
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, err
	}

	if err := checkUserAvailable(ctx, s.users, 0, in.Username, in.Email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateUser(err)
	}
	return user, nil
}

// checkUserAvailable reports a conflict when username or email belongs to a user other than self.
func checkUserAvailable(ctx context.Context, users repository.UserRepository, self uint, username, email string) error {
	existing, err := users.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != self:
		return errors.ErrUsernameTaken
	case err != nil && !isNotFound(err):
		return fmt.Errorf("check username: %w", err)
	}

	existing, err = users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != self:
		return errors.ErrEmailTaken
	case err != nil && !isNotFound(err):
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// duplicateUser maps a unique index violation lost to a concurrent writer.
func duplicateUser(err error) error {
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return err
	}
	if strings.Contains(err.Error(), "email") {
		return errors.ErrEmailTaken
	}
	return errors.ErrUsernameTaken
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, login, password string) (*TokenPair, *model.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if isNotFound(err) {
		return nil, nil, errors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, nil, errors.ErrInvalidCredentials
	}

	accessToken, _, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshTTL()); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
	}, user, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return nil, errors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if isNotFound(err) {
		return nil, errors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	accessToken, _, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims != nil {
		if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}

	if refreshToken == "" {
		return nil
	}
	refreshClaims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return errors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, refreshClaims.ID)
}

func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	hasAdmin, err := s.users.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if hasAdmin {
		return false, nil
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		existing.IsAdmin = true
		if err := s.users.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("promote admin: %w", err)
		}
		log.Info().Str("username", username).Msg("promoted existing user to admin")
		return true, nil
	}
	if !isNotFound(err) {
		return false, fmt.Errorf("find admin: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.User{
		Username:     username,
		Email:        email,
		Name:         "Administrator",
		PasswordHash: digest,
		IsAdmin:      true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", duplicateUser(err))
	}
	log.Info().Str("username", username).Msg("created default admin")
	return true, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfileInput carries a profile edit. An empty NewPassword keeps the password.
type ProfileInput struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,max=32"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Name            string `json:"name" form:"name" validate:"max=64"`
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"omitempty,min=6"`
}

// UserService exposes user domain operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*model.User, error)
	// SetAdmin grants or revokes the admin flag. Admins cannot revoke their own flag.
	SetAdmin(ctx context.Context, actorID, id uint, isAdmin bool) (*model.User, error)
	// DeleteUser removes a user without purchase history. Admins cannot delete themselves.
	DeleteUser(ctx context.Context, actorID, id uint) error
}

type userService struct {
	repo         repository.UserRepository
	transactions repository.TransactionRepository
	hasher       auth.PasswordHasher
	cache        *cache.Client
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(
	repo repository.UserRepository,
	transactions repository.TransactionRepository,
	hasher auth.PasswordHasher,
	cache *cache.Client,
) UserService {
	return &userService{repo: repo, transactions: transactions, hasher: hasher, cache: cache}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, cache.UserKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}

	s.cache.SetJSON(ctx, cache.UserKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}

	if err := checkUserAvailable(ctx, s.repo, user.ID, in.Username, in.Email); err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		if !s.hasher.Verify(user.PasswordHash, in.CurrentPassword) {
			return nil, errors.NewValidationError("current_password", "is incorrect")
		}
		digest, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = digest
	}

	user.Username = in.Username
	user.Email = in.Email
	user.Name = in.Name
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, duplicateUser(err)
	}

	_ = s.cache.Delete(ctx, cache.UserKey(id))
	return user, nil
}

func (s *userService) SetAdmin(ctx context.Context, actorID, id uint, isAdmin bool) (*model.User, error) {
	if actorID == id && !isAdmin {
		return nil, errors.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	if user.IsAdmin == isAdmin {
		return user, nil
	}

	user.IsAdmin = isAdmin
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, cache.UserKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return errors.ErrForbidden
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, errors.ErrUserNotFound)
	}

	count, err := s.transactions.CountByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		return errors.ErrUserHasTransactions
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return errors.ErrUserHasTransactions
		}
		return err
	}

	_ = s.cache.Delete(ctx, cache.UserKey(id))
	return nil
}

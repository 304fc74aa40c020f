package service

import (
	"context"

	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// TransactionService exposes purchase records.
type TransactionService interface {
	List(ctx context.Context) ([]model.TransactionSummary, error)
	ListForUser(ctx context.Context, userID uint) ([]model.TransactionSummary, error)
	Get(ctx context.Context, id uint) (*model.Transaction, error)
	// GetForUser returns a transaction only when userID owns it.
	GetForUser(ctx context.Context, userID, id uint) (*model.Transaction, error)
	Delete(ctx context.Context, id uint) error
}

type transactionService struct {
	repo repository.TransactionRepository
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

func (s *transactionService) List(ctx context.Context) ([]model.TransactionSummary, error) {
	return s.repo.ListSummaries(ctx)
}

func (s *transactionService) ListForUser(ctx context.Context, userID uint) ([]model.TransactionSummary, error) {
	return s.repo.ListSummariesByUser(ctx, userID)
}

func (s *transactionService) Get(ctx context.Context, id uint) (*model.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrTransactionNotFound)
	}
	return txn, nil
}

func (s *transactionService) GetForUser(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, errors.ErrForbidden
	}
	return txn, nil
}

func (s *transactionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

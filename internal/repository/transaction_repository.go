package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// TransactionRepository defines purchase record persistence operations.
type TransactionRepository interface {
	// Create inserts the transaction header and its orders.
	Create(ctx context.Context, transaction *model.Transaction) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, error)
	ListSummaries(ctx context.Context) ([]model.TransactionSummary, error)
	ListSummariesByUser(ctx context.Context, userID uint) ([]model.TransactionSummary, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	// Delete removes a transaction; its orders go with it.
	Delete(ctx context.Context, id uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction record with its orders.
func (r *transactionRepository) Create(ctx context.Context, transaction *model.Transaction) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(transaction).Error)
}

// FindByID finds a transaction with its user, orders and ordered products.
func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("orders.id") }).
		Preload("Orders.Product").
		First(&transaction, id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.id, t.user_id, u.username, t.created_at, " +
			"COUNT(o.id) AS order_count, COALESCE(SUM(o.price * o.quantity), 0) AS total_value").
		Joins("LEFT JOIN users u ON u.id = t.user_id").
		Joins("LEFT JOIN orders o ON o.transaction_id = t.id").
		Group("t.id, t.user_id, u.username, t.created_at").
		Order("t.created_at DESC, t.id DESC")
}

// ListSummaries lists every transaction, newest first.
func (r *transactionRepository) ListSummaries(ctx context.Context) ([]model.TransactionSummary, error) {
	var out []model.TransactionSummary
	if err := r.summaries(ctx).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListSummariesByUser lists one user's transactions, newest first.
func (r *transactionRepository) ListSummariesByUser(ctx context.Context, userID uint) ([]model.TransactionSummary, error) {
	var out []model.TransactionSummary
	if err := r.summaries(ctx).Where("t.user_id = ?", userID).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountByUser counts the transactions owned by a user.
func (r *transactionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a transaction and its orders.
func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&model.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Transaction{}, id).Error
	})
}

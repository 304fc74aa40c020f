package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repositories bundles the repositories taking part in one unit of work.
type Repositories struct {
	Users        UserRepository
	Categories   CategoryRepository
	Products     ProductRepository
	Carts        CartRepository
	Transactions TransactionRepository
}

// NewRepositories builds every repository on the same handle.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Products:     NewProductRepository(db),
		Carts:        NewCartRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithTransaction executes fn at REPEATABLE READ; a returned error rolls everything back.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
}

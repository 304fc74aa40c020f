package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/cache"
	"storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CheckoutService turns a cart into a transaction.
type CheckoutService interface {
	// Checkout validates every cart line against live stock and then, in the
	// same database transaction, records the purchase, decrements stock and
	// clears the purchased lines. Either all of it happens or none of it.
	Checkout(ctx context.Context, userID uint) (*model.Transaction, error)
}

type checkoutService struct {
	txManager repository.TxManager
	cache     *cache.Client
	publisher events.Publisher
	now       func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(txManager repository.TxManager, cache *cache.Client, publisher events.Publisher) CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &checkoutService{
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID uint) (*model.Transaction, error) {
	var txn *model.Transaction

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lines, err := repos.Carts.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if len(lines) == 0 {
			return errors.ErrEmptyCart
		}

		productIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			productIDs = append(productIDs, line.ProductID)
		}
		products, err := repos.Products.FindByIDsForUpdate(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		byID := make(map[uint]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		// Validation pass: nothing is written unless every line fits.
		for _, line := range lines {
			product, ok := byID[line.ProductID]
			if !ok {
				return errors.ErrProductNotFound
			}
			if !product.InStock(line.Quantity) {
				return stockError(product, line.Quantity)
			}
		}

		// Commit pass.
		t := &model.Transaction{
			UserID:    userID,
			CreatedAt: s.now(),
			Orders:    make([]model.Order, 0, len(lines)),
		}
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			product := byID[line.ProductID]
			t.Orders = append(t.Orders, model.Order{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
			lineIDs = append(lineIDs, line.ID)
		}
		if err := repos.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		for _, line := range lines {
			product := byID[line.ProductID]
			ok, err := repos.Products.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return stockError(product, line.Quantity)
			}
			product.Quantity -= line.Quantity
		}

		if err := repos.Carts.DeleteByIDs(ctx, lineIDs); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		for i := range t.Orders {
			t.Orders[i].Product = byID[t.Orders[i].ProductID]
		}
		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, txn)
	return txn, nil
}

// afterCommit runs side effects that must never undo a committed checkout.
func (s *checkoutService) afterCommit(ctx context.Context, txn *model.Transaction) {
	keys := make([]string, 0, len(txn.Orders))
	for _, o := range txn.Orders {
		keys = append(keys, cache.ProductKey(o.ProductID))
	}
	_ = s.cache.Delete(ctx, keys...)

	if err := s.publisher.PublishCheckout(ctx, events.NewCheckoutEvent(txn)); err != nil {
		log.Warn().Err(err).Uint("transaction_id", txn.ID).Msg("publish checkout event")
	}
}

func stockError(product *model.Product, requested int) error {
	return &errors.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Quantity,
		Checkout:    true,
	}
}

package service

import (
	"context"

	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CartService mutates and reads per-user carts.
type CartService interface {
	View(ctx context.Context, userID uint) (*model.Cart, error)
	// Add puts qty units of a product in the cart, merging with an existing line.
	Add(ctx context.Context, userID, productID uint, qty int) (*model.CartLine, error)
	// Update sets a line's quantity. A quantity of zero or less removes the
	// line and returns a nil line.
	Update(ctx context.Context, userID, lineID uint, qty int) (*model.CartLine, error)
	Remove(ctx context.Context, userID, lineID uint) error
}

type cartService struct {
	carts     repository.CartRepository
	txManager repository.TxManager
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, txManager repository.TxManager) CartService {
	return &cartService{carts: carts, txManager: txManager}
}

func (s *cartService) View(ctx context.Context, userID uint) (*model.Cart, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Cart{UserID: userID, Lines: lines}, nil
}

func (s *cartService) Add(ctx context.Context, userID, productID uint, qty int) (*model.CartLine, error) {
	if qty < 1 {
		return nil, errors.NewValidationError("quantity", "must be at least 1")
	}

	var result *model.CartLine
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// Lock order: cart line, then product.
		line, err := repos.Carts.FindByUserAndProductForUpdate(ctx, userID, productID)
		if err != nil && !isNotFound(err) {
			return err
		}

		product, err := repos.Products.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return notFound(err, errors.ErrProductNotFound)
		}

		// Only the requested quantity is checked here; checkout validates the
		// merged line against live stock.
		if !product.InStock(qty) {
			return &errors.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Quantity,
			}
		}

		if line != nil {
			merged := line.Quantity + qty
			if err := repos.Carts.UpdateQuantity(ctx, line.ID, merged); err != nil {
				return err
			}
			line.Quantity = merged
		} else {
			line = &model.CartLine{UserID: userID, ProductID: productID, Quantity: qty}
			if err := repos.Carts.Create(ctx, line); err != nil {
				return err
			}
		}
		line.Product = product
		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockOwnedLine locks a cart line and checks that userID owns it.
func lockOwnedLine(ctx context.Context, carts repository.CartRepository, userID, lineID uint) (*model.CartLine, error) {
	line, err := carts.FindByIDForUpdate(ctx, lineID)
	if err != nil {
		return nil, notFound(err, errors.ErrCartLineNotFound)
	}
	if line.UserID != userID {
		return nil, errors.ErrForbidden
	}
	return line, nil
}

func (s *cartService) Update(ctx context.Context, userID, lineID uint, qty int) (*model.CartLine, error) {
	var result *model.CartLine
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		line, err := lockOwnedLine(ctx, repos.Carts, userID, lineID)
		if err != nil {
			return err
		}

		if qty <= 0 {
			return repos.Carts.Delete(ctx, line.ID)
		}

		product, err := repos.Products.FindByIDForUpdate(ctx, line.ProductID)
		if err != nil {
			return notFound(err, errors.ErrProductNotFound)
		}
		if !product.InStock(qty) {
			return &errors.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Quantity,
			}
		}

		if err := repos.Carts.UpdateQuantity(ctx, line.ID, qty); err != nil {
			return err
		}
		line.Quantity = qty
		line.Product = product
		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cartService) Remove(ctx context.Context, userID, lineID uint) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		line, err := lockOwnedLine(ctx, repos.Carts, userID, lineID)
		if err != nil {
			return err
		}
		return repos.Carts.Delete(ctx, line.ID)
	})
}

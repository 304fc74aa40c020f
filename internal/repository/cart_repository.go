package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// CartRepository defines cart line persistence operations.
type CartRepository interface {
	Create(ctx context.Context, line *model.CartLine) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) error
	FindByID(ctx context.Context, id uint) (*model.CartLine, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.CartLine, error)
	// FindByUserAndProductForUpdate returns gorm.ErrRecordNotFound when the user has no line for the product.
	FindByUserAndProductForUpdate(ctx context.Context, userID, productID uint) (*model.CartLine, error)
	ListByUser(ctx context.Context, userID uint) ([]model.CartLine, error)
	ListByUserForUpdate(ctx context.Context, userID uint) ([]model.CartLine, error)
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// Create inserts a new cart line.
func (r *cartRepository) Create(ctx context.Context, line *model.CartLine) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error)
}

// UpdateQuantity sets the quantity of a cart line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes a cart line.
func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.CartLine{}, id).Error
}

// DeleteByIDs removes the given cart lines.
func (r *cartRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.CartLine{}).Error
}

// FindByID finds a cart line by ID with its product.
func (r *cartRepository) FindByID(ctx context.Context, id uint) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).Preload("Product").First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByIDForUpdate finds a cart line by ID with row-level lock for update.
func (r *cartRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByUserAndProductForUpdate locks the (user, product) line, or its index gap when absent.
func (r *cartRepository) FindByUserAndProductForUpdate(ctx context.Context, userID, productID uint) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// ListByUser lists a user's cart lines with products and categories.
func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := r.db.WithContext(ctx).
		Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ListByUserForUpdate locks and lists a user's cart lines.
func (r *cartRepository) ListByUserForUpdate(ctx context.Context, userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

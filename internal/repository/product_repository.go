package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	// FindByIDsForUpdate locks the rows in ascending id order.
	FindByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Product, error)
	FindByCategoryAndName(ctx context.Context, categoryID uint, name string) (*model.Product, error)
	Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]model.Product, error)
	// DecrementStock subtracts qty only when at least qty is on hand and
	// reports whether the row was changed.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	CountReferences(ctx context.Context, id uint) (cartLines int64, orders int64, err error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

// Update updates an existing product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error)
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Product{}, id).Error)
}

// FindByID finds a product by ID with its category.
func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate finds a product by ID with row-level lock for update.
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDsForUpdate finds products by ID with row-level locks for update.
func (r *productRepository) FindByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByCategoryAndName finds a product by name within a category.
func (r *productRepository) FindByCategoryAndName(ctx context.Context, categoryID uint, name string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND name = ?", categoryID, name).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Search lists products matching the filter with their categories.
func (r *productRepository) Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Preload("Category")

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}
	if filter.CategoryID != 0 {
		q = q.Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.MinPrice != nil {
		q = q.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.InStockOnly {
		q = q.Where("products.quantity > 0")
	}

	switch filter.Sort {
	case model.SortByPriceAsc:
		q = q.Order("products.price ASC").Order("products.id")
	case model.SortByPriceDesc:
		q = q.Order("products.price DESC").Order("products.id")
	case model.SortByNewest:
		q = q.Order("products.created_at DESC").Order("products.id DESC")
	default:
		q = q.Order("products.name").Order("products.id")
	}

	var products []model.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByCategory lists the products owned by a category.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uint) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock performs a guarded decrement of the product quantity.
func (r *productRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountReferences counts the cart lines and orders pointing at a product.
func (r *productRepository) CountReferences(ctx context.Context, id uint) (int64, int64, error) {
	var cartLines, orders int64
	if err := r.db.WithContext(ctx).Model(&model.CartLine{}).Where("product_id = ?", id).Count(&cartLines).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("product_id = ?", id).Count(&orders).Error; err != nil {
		return 0, 0, err
	}
	return cartLines, orders, nil
}

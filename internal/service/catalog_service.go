package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/cache"
	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const productCacheTTL = 2 * time.Minute

// CategoryInput carries a category name.
type CategoryInput struct {
	Name string `json:"name" form:"name" validate:"required,max=64"`
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Price          decimal.Decimal `json:"price" validate:"-"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity" validate:"gte=0"`
	ManufacturedOn time.Time       `json:"man_date" validate:"-"`
	CategoryID     uint            `json:"category_id" validate:"required"`
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return errors.NewValidationError("price", "must not be negative")
	}
	if in.ManufacturedOn.IsZero() {
		return errors.NewValidationError("man_date", "is required")
	}
	return nil
}

func (in *ProductInput) apply(p *model.Product) {
	p.Name = in.Name
	p.Price = in.Price.Round(2)
	p.Description = in.Description
	p.Quantity = in.Quantity
	p.ManufacturedOn = in.ManufacturedOn
	p.CategoryID = in.CategoryID
}

// CategorySeed is one category and its products in a bulk catalog import.
// CategoryID on the products is ignored.
type CategorySeed struct {
	Name     string
	Products []ProductInput
}

// ImportStats counts the rows touched by a catalog import.
type ImportStats struct {
	CategoriesCreated int
	ProductsCreated   int
	ProductsUpdated   int
}

// CatalogService manages categories and products.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.CategorySummary, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, []model.Product, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	RenameCategory(ctx context.Context, id uint, in CategoryInput) (*model.Category, error)
	// DeleteCategory removes a category that owns no products.
	DeleteCategory(ctx context.Context, id uint) error

	SearchProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error)
	// DeleteProduct removes a product referenced by no cart line and no order.
	DeleteProduct(ctx context.Context, id uint) error

	// ImportCatalog upserts categories by name and products by (category, name) in one transaction.
	ImportCatalog(ctx context.Context, seeds []CategorySeed) (ImportStats, error)
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	txManager  repository.TxManager
	cache      *cache.Client
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	txManager repository.TxManager,
	cache *cache.Client,
) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		txManager:  txManager,
		cache:      cache,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.CategorySummary, error) {
	return s.categories.ListWithCounts(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id uint) (*model.Category, []model.Product, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, errors.ErrCategoryNotFound)
	}
	products, err := s.products.ListByCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, 0, in.Name); err != nil {
		return nil, err
	}

	category := &model.Category{Name: in.Name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, duplicateCategory(err)
	}
	return category, nil
}

func (s *catalogService) RenameCategory(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrCategoryNotFound)
	}
	if err := s.checkCategoryName(ctx, id, in.Name); err != nil {
		return nil, err
	}

	category.Name = in.Name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, duplicateCategory(err)
	}

	// Cached products embed the category name.
	if products, err := s.products.ListByCategory(ctx, id); err == nil {
		s.invalidateProducts(ctx, products...)
	}
	return category, nil
}

func (s *catalogService) checkCategoryName(ctx context.Context, self uint, name string) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return errors.ErrCategoryExists
	case err != nil && !isNotFound(err):
		return fmt.Errorf("check category name: %w", err)
	}
	return nil
}

func duplicateCategory(err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return errors.ErrCategoryExists
	}
	return err
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return notFound(err, errors.ErrCategoryNotFound)
	}

	count, err := s.categories.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return errors.ErrCategoryHasProducts
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return errors.ErrCategoryHasProducts
		}
		return err
	}
	return nil
}

func (s *catalogService) SearchProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	if !filter.Sort.Valid() {
		return nil, errors.NewValidationError("sort", "must be one of: name price_asc price_desc newest")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, errors.NewValidationError("min_price", "must not exceed max_price")
	}
	return s.products.Search(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	var cached model.Product
	if s.cache.GetJSON(ctx, cache.ProductKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrProductNotFound)
	}

	s.cache.SetJSON(ctx, cache.ProductKey(id), product, productCacheTTL)
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return nil, notFound(err, errors.ErrCategoryNotFound)
	}

	product := &model.Product{}
	in.apply(product)
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	product.Category = category
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrProductNotFound)
	}
	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return nil, notFound(err, errors.ErrCategoryNotFound)
	}

	in.apply(product)
	product.Category = nil
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	product.Category = category

	s.invalidateProducts(ctx, *product)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return notFound(err, errors.ErrProductNotFound)
	}

	cartLines, orders, err := s.products.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count product references: %w", err)
	}
	if cartLines > 0 || orders > 0 {
		return errors.ErrProductInUse
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return errors.ErrProductInUse
		}
		return err
	}

	s.invalidateProducts(ctx, *product)
	return nil
}

func (s *catalogService) ImportCatalog(ctx context.Context, seeds []CategorySeed) (ImportStats, error) {
	var stats ImportStats
	var touched []model.Product

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, seed := range seeds {
			name := strings.TrimSpace(seed.Name)
			if err := Validate(CategoryInput{Name: name}); err != nil {
				return err
			}

			category, err := repos.Categories.FindByName(ctx, name)
			if isNotFound(err) {
				category = &model.Category{Name: name}
				if err := repos.Categories.Create(ctx, category); err != nil {
					return duplicateCategory(err)
				}
				stats.CategoriesCreated++
			} else if err != nil {
				return err
			}

			for _, in := range seed.Products {
				in.CategoryID = category.ID
				if err := in.normalize(); err != nil {
					return fmt.Errorf("%s/%s: %w", name, in.Name, err)
				}

				product, err := repos.Products.FindByCategoryAndName(ctx, category.ID, in.Name)
				switch {
				case isNotFound(err):
					product = &model.Product{}
					in.apply(product)
					if err := repos.Products.Create(ctx, product); err != nil {
						return err
					}
					stats.ProductsCreated++
				case err != nil:
					return err
				default:
					in.apply(product)
					if err := repos.Products.Update(ctx, product); err != nil {
						return err
					}
					stats.ProductsUpdated++
				}
				touched = append(touched, *product)
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	s.invalidateProducts(ctx, touched...)
	return stats, nil
}

func (s *catalogService) invalidateProducts(ctx context.Context, products ...model.Product) {
	keys := make([]string, 0, len(products))
	for _, p := range products {
		keys = append(keys, cache.ProductKey(p.ID))
	}
	_ = s.cache.Delete(ctx, keys...)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

func newCatalogFixture() (*MockCategoryRepository, *MockProductRepository, *fakeTxManager, CatalogService) {
	categories := new(MockCategoryRepository)
	products := new(MockProductRepository)
	tx := &fakeTxManager{repos: repository.Repositories{Categories: categories, Products: products}}
	return categories, products, tx, NewCatalogService(categories, products, tx, nil)
}

func TestCatalogService_DeleteCategory(t *testing.T) {
	tests := []struct {
		name     string
		products int64
		wantErr  error
	}{
		{"with products", 1, errors.ErrCategoryHasProducts},
		{"empty", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, _, _, svc := newCatalogFixture()
			categories.On("FindByID", mock.Anything, uint(2)).Return(&model.Category{ID: 2, Name: "Tea"}, nil)
			categories.On("CountProducts", mock.Anything, uint(2)).Return(tt.products, nil)
			categories.On("Delete", mock.Anything, uint(2)).Return(nil)

			err := svc.DeleteCategory(context.Background(), 2)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			categories.AssertCalled(t, "Delete", mock.Anything, uint(2))
		})
	}
}

func TestCatalogService_DeleteCategory_ForeignKeyRace(t *testing.T) {
	categories, _, _, svc := newCatalogFixture()
	categories.On("FindByID", mock.Anything, uint(2)).Return(&model.Category{ID: 2}, nil)
	categories.On("CountProducts", mock.Anything, uint(2)).Return(int64(0), nil)
	categories.On("Delete", mock.Anything, uint(2)).Return(repository.ErrForeignKey)

	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), 2), errors.ErrCategoryHasProducts)
}

func TestCatalogService_CreateCategory(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		categories, _, _, svc := newCatalogFixture()
		categories.On("FindByName", mock.Anything, "Tea").Return(&model.Category{ID: 1, Name: "Tea"}, nil)

		_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "  Tea "})
		assert.ErrorIs(t, err, errors.ErrCategoryExists)
	})

	t.Run("empty name", func(t *testing.T) {
		_, _, _, svc := newCatalogFixture()

		_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "   "})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("created", func(t *testing.T) {
		categories, _, _, svc := newCatalogFixture()
		categories.On("FindByName", mock.Anything, "Coffee").Return(nil, gorm.ErrRecordNotFound)
		categories.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool { return c.Name == "Coffee" })).Return(nil)

		category, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Coffee"})
		require.NoError(t, err)
		assert.Equal(t, "Coffee", category.Name)
	})
}

func TestCatalogService_CreateProduct(t *testing.T) {
	valid := func() ProductInput {
		return ProductInput{
			Name:           "Sencha",
			Price:          decimal.RequireFromString("4.5"),
			Quantity:       10,
			ManufacturedOn: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CategoryID:     2,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*ProductInput)
		setup     func(*MockCategoryRepository, *MockProductRepository)
		wantErr   error
		wantField string
	}{
		{
			name:   "created",
			mutate: func(*ProductInput) {},
			setup: func(c *MockCategoryRepository, p *MockProductRepository) {
				c.On("FindByID", mock.Anything, uint(2)).Return(&model.Category{ID: 2, Name: "Tea"}, nil)
				p.On("Create", mock.Anything, mock.MatchedBy(func(pr *model.Product) bool {
					return pr.Name == "Sencha" && pr.Price.Equal(decimal.RequireFromString("4.50"))
				})).Return(nil)
			},
		},
		{
			name:      "negative price",
			mutate:    func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) },
			setup:     func(*MockCategoryRepository, *MockProductRepository) {},
			wantErr:   errors.ErrValidation,
			wantField: "price",
		},
		{
			name:      "negative quantity",
			mutate:    func(in *ProductInput) { in.Quantity = -1 },
			setup:     func(*MockCategoryRepository, *MockProductRepository) {},
			wantErr:   errors.ErrValidation,
			wantField: "quantity",
		},
		{
			name:      "missing name",
			mutate:    func(in *ProductInput) { in.Name = "" },
			setup:     func(*MockCategoryRepository, *MockProductRepository) {},
			wantErr:   errors.ErrValidation,
			wantField: "name",
		},
		{
			name:      "missing date",
			mutate:    func(in *ProductInput) { in.ManufacturedOn = time.Time{} },
			setup:     func(*MockCategoryRepository, *MockProductRepository) {},
			wantErr:   errors.ErrValidation,
			wantField: "man_date",
		},
		{
			name:   "unknown category",
			mutate: func(*ProductInput) {},
			setup: func(c *MockCategoryRepository, p *MockProductRepository) {
				c.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: errors.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, products, _, svc := newCatalogFixture()
			tt.setup(categories, products)
			in := valid()
			tt.mutate(&in)

			product, err := svc.CreateProduct(context.Background(), in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantField != "" {
					var verr *errors.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantField, verr.Field)
				}
				products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Tea", product.Category.Name)
		})
	}
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	tests := []struct {
		name      string
		cartLines int64
		orders    int64
		wantErr   error
	}{
		{"in a cart", 1, 0, errors.ErrProductInUse},
		{"ordered before", 0, 3, errors.ErrProductInUse},
		{"unreferenced", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, products, _, svc := newCatalogFixture()
			products.On("FindByID", mock.Anything, uint(7)).Return(&model.Product{ID: 7}, nil)
			products.On("CountReferences", mock.Anything, uint(7)).Return(tt.cartLines, tt.orders, nil)
			products.On("Delete", mock.Anything, uint(7)).Return(nil)

			err := svc.DeleteProduct(context.Background(), 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCatalogService_SearchProducts(t *testing.T) {
	t.Run("passes filter through", func(t *testing.T) {
		_, products, _, svc := newCatalogFixture()
		products.On("Search", mock.Anything, model.ProductFilter{Query: "tea", Sort: model.SortByPriceAsc}).
			Return([]model.Product{{ID: 1}}, nil)

		got, err := svc.SearchProducts(context.Background(), model.ProductFilter{Query: " tea ", Sort: model.SortByPriceAsc})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, _, _, svc := newCatalogFixture()

		_, err := svc.SearchProducts(context.Background(), model.ProductFilter{Sort: "random"})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("inverted price range", func(t *testing.T) {
		_, _, _, svc := newCatalogFixture()
		lo, hi := decimal.NewFromInt(10), decimal.NewFromInt(5)

		_, err := svc.SearchProducts(context.Background(), model.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})
}

func TestCatalogService_ImportCatalog(t *testing.T) {
	categories, products, tx, svc := newCatalogFixture()
	made := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	categories.On("FindByName", mock.Anything, "Tea").Return(nil, gorm.ErrRecordNotFound)
	categories.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Category).ID = 4 }).
		Return(nil)
	products.On("FindByCategoryAndName", mock.Anything, uint(4), "Sencha").Return(nil, gorm.ErrRecordNotFound)
	products.On("FindByCategoryAndName", mock.Anything, uint(4), "Matcha").
		Return(&model.Product{ID: 9, Name: "Matcha", CategoryID: 4}, nil)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool { return p.CategoryID == 4 })).Return(nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool { return p.ID == 9 && p.Quantity == 3 })).Return(nil)

	stats, err := svc.ImportCatalog(context.Background(), []CategorySeed{{
		Name: "Tea",
		Products: []ProductInput{
			{Name: "Sencha", Price: decimal.NewFromInt(4), Quantity: 10, ManufacturedOn: made},
			{Name: "Matcha", Price: decimal.NewFromInt(12), Quantity: 3, ManufacturedOn: made},
		},
	}})

	require.NoError(t, err)
	assert.Equal(t, ImportStats{CategoriesCreated: 1, ProductsCreated: 1, ProductsUpdated: 1}, stats)
	assert.Equal(t, 1, tx.committed)
	products.AssertExpectations(t)
}

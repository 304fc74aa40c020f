package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// ProductView is the JSON projection of a product.
type ProductView struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price" swaggertype:"string"`
	Description  string          `json:"description"`
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int             `json:"quantity"`
	ManDate      string          `json:"man_date"`
}

func newProductView(p *model.Product) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
	}
	if p.Category != nil {
		v.CategoryName = p.Category.Name
	}
	if !p.ManufacturedOn.IsZero() {
		v.ManDate = p.ManufacturedOn.Format(model.DateLayout)
	}
	return v
}

func newProductViews(products []model.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, newProductView(&products[i]))
	}
	return views
}

// CategoryView is the JSON projection of a category.
type CategoryView struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	ProductCount int64         `json:"product_count"`
	Products     []ProductView `json:"products,omitempty"`
}

// OrderView is one line of a transaction.
type OrderView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	LineTotal   decimal.Decimal `json:"line_total" swaggertype:"string"`
}

// TransactionView is a transaction with its lines.
type TransactionView struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	Username   string          `json:"username"`
	Datetime   time.Time       `json:"datetime"`
	OrderCount int             `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value" swaggertype:"string"`
	Orders     []OrderView     `json:"orders"`
}

func newTransactionView(t *model.Transaction) TransactionView {
	v := TransactionView{
		ID:         t.ID,
		UserID:     t.UserID,
		Datetime:   t.CreatedAt,
		OrderCount: len(t.Orders),
		TotalValue: t.Total(),
		Orders:     make([]OrderView, 0, len(t.Orders)),
	}
	if t.User != nil {
		v.Username = t.User.Username
	}
	for i := range t.Orders {
		o := &t.Orders[i]
		ov := OrderView{
			ID:        o.ID,
			ProductID: o.ProductID,
			Quantity:  o.Quantity,
			Price:     o.Price,
			LineTotal: o.LineTotal(),
		}
		if o.Product != nil {
			ov.ProductName = o.Product.Name
		}
		v.Orders = append(v.Orders, ov)
	}
	return v
}

// CartLineView is one line of a cart.
type CartLineView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	LineTotal   decimal.Decimal `json:"line_total" swaggertype:"string"`
	InStock     bool            `json:"in_stock"`
}

// CartView is the JSON projection of a cart.
type CartView struct {
	Lines     []CartLineView  `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total" swaggertype:"string"`
}

func newCartView(cart *model.Cart) CartView {
	v := CartView{
		Lines:     make([]CartLineView, 0, len(cart.Lines)),
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
	for i := range cart.Lines {
		l := &cart.Lines[i]
		lv := CartLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		}
		if l.Product != nil {
			lv.ProductName = l.Product.Name
			lv.Price = l.Product.Price
			lv.InStock = l.Product.InStock(l.Quantity)
		}
		v.Lines = append(v.Lines, lv)
	}
	return v
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of a product manufacture date.
const DateLayout = "2006-01-02"

// Product is a sellable item. Quantity is the live stock and is only
// decremented by checkout.
type Product struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:255;not null;index"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Quantity       int             `json:"quantity" gorm:"not null;default:0"`
	ManufacturedOn time.Time       `json:"man_date" gorm:"type:date"`
	CategoryID     uint            `json:"category_id" gorm:"not null;index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// InStock reports whether qty units can be taken from the current stock.
func (p *Product) InStock(qty int) bool {
	return qty <= p.Quantity
}

// ProductFilter narrows a product search. Zero values disable a criterion.
type ProductFilter struct {
	Query       string
	CategoryID  uint
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	Sort        ProductSort
}

// ProductSort names a supported ordering for product searches.
type ProductSort string

const (
	SortByName      ProductSort = "name"
	SortByPriceAsc  ProductSort = "price_asc"
	SortByPriceDesc ProductSort = "price_desc"
	SortByNewest    ProductSort = "newest"
)

// Valid reports whether s is a known ordering; the empty value means default.
func (s ProductSort) Valid() bool {
	switch s {
	case "", SortByName, SortByPriceAsc, SortByPriceDesc, SortByNewest:
		return true
	}
	return false
}

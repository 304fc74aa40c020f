package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable purchase record grouping one or more orders.
// Deleting a transaction cascades to its orders.
type Transaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"datetime" gorm:"not null;index"`

	// Relations
	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// Total sums price times quantity over all orders.
func (t *Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Orders {
		total = total.Add(t.Orders[i].LineTotal())
	}
	return total
}

// Order is a purchased quantity of one product. Price is the unit price
// snapshotted at checkout and never follows later product price changes.
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	TransactionID uint            `json:"transaction_id" gorm:"not null;index"`
	ProductID     uint            `json:"product_id" gorm:"not null;index"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`

	// Relations
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// LineTotal is the snapshotted price times quantity.
func (o *Order) LineTotal() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// TransactionSummary is a transaction header with aggregated figures.
type TransactionSummary struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	Username   string          `json:"username"`
	CreatedAt  time.Time       `json:"datetime"`
	OrderCount int64           `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

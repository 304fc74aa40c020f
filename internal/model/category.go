package model

import "time"

// Category groups products. Names are unique.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategorySummary is a category with the number of products it owns.
type CategorySummary struct {
	Category
	ProductCount int64 `json:"product_count"`
}

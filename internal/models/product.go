package models

import "math"

// Product is a catalog entry. Inactive products stay out of the public
// storefront but remain visible through the admin API.
type Product struct {
	BaseModel

	Name        string  `gorm:"not null;index" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Image       string  `json:"image"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
	IsActive    bool    `gorm:"not null;index" json:"is_active"`
	Category    string  `gorm:"index" json:"category"`
	SKU         string  `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
}

// PriceCents normalises a price to fixed-precision cents. Price change
// detection compares cents on both sides so stored and submitted values
// never diverge on float representation alone.
func PriceCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

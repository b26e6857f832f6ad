package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the aggregate state of a product.
// Except for DISCONTINUED it is derived from the product's variants.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusOutOfStock   ProductStatus = "OUT_OF_STOCK"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// Valid reports whether s is a known product status
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Counted reports whether a product in this status contributes to category,
// brand, size and color product counts.
func (s ProductStatus) Counted() bool {
	return s != ProductStatusInactive && s != ProductStatusDiscontinued
}

// UncountedProductStatuses lists the statuses excluded from product counts
var UncountedProductStatuses = []ProductStatus{ProductStatusInactive, ProductStatusDiscontinued}

// VariantStatus is the state of a single sellable variant.
// INACTIVE doubles as the soft-delete marker.
type VariantStatus string

const (
	VariantStatusActive     VariantStatus = "ACTIVE"
	VariantStatusInactive   VariantStatus = "INACTIVE"
	VariantStatusOutOfStock VariantStatus = "OUT_OF_STOCK"
)

// Valid reports whether s is a known variant status
func (s VariantStatus) Valid() bool {
	switch s {
	case VariantStatusActive, VariantStatusInactive, VariantStatusOutOfStock:
		return true
	}
	return false
}

// Product represents the product master data. SKU is the product code used
// as the prefix of every variant SKU.
type Product struct {
	ID           uint          `json:"id" gorm:"primarykey"`
	Name         string        `json:"name" gorm:"type:varchar(200);not null"`
	Description  string        `json:"description" gorm:"type:text"`
	SKU          string        `json:"sku" gorm:"type:varchar(50);not null;uniqueIndex:uq_products_sku"`
	Status       ProductStatus `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE;index"`
	CategoryID   *uint         `json:"category_id" gorm:"index"`
	BrandID      *uint         `json:"brand_id" gorm:"index"`
	Gender       string        `json:"gender,omitempty" gorm:"type:varchar(20)"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty" gorm:"type:varchar(500)"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProductCategory is the many-to-many membership row between products and categories
type ProductCategory struct {
	ProductID  uint `json:"product_id" gorm:"primaryKey"`
	CategoryID uint `json:"category_id" gorm:"primaryKey;index"`
}

// ProductVariant is one product at one size and one color
type ProductVariant struct {
	ID        uint            `json:"id" gorm:"primarykey"`
	ProductID uint            `json:"product_id" gorm:"not null;uniqueIndex:uq_product_variants_identity,priority:1"`
	SizeID    uint            `json:"size_id" gorm:"not null;uniqueIndex:uq_product_variants_identity,priority:2;index"`
	ColorID   uint            `json:"color_id" gorm:"not null;uniqueIndex:uq_product_variants_identity,priority:3;index"`
	SKU       string          `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex:uq_product_variants_sku"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(18,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;default:0"`
	Status    VariantStatus   `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE;index"`
	ImagePath string          `json:"image_path,omitempty" gorm:"type:varchar(500)"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// VariantStats summarises the variants of a single product
type VariantStats struct {
	ProductID    uint            `json:"product_id"`
	VariantCount int64           `json:"variant_count"`
	TotalStock   int64           `json:"total_stock"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

package model

import "time"

// ReferenceStatus is the lifecycle state of sizes, colors, categories and brands
type ReferenceStatus string

const (
	ReferenceStatusActive       ReferenceStatus = "ACTIVE"
	ReferenceStatusInactive     ReferenceStatus = "INACTIVE"
	ReferenceStatusDiscontinued ReferenceStatus = "DISCONTINUED"
)

// Size is a selectable size. ProductCount is maintained by the catalog engine.
type Size struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(10);not null;uniqueIndex"`
	Status       ReferenceStatus `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	ProductCount int64           `json:"product_count" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Color is a selectable color. ProductCount is maintained by the catalog engine.
type Color struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(50);not null;uniqueIndex"`
	HexCode      string          `json:"hex_code,omitempty" gorm:"type:varchar(7)"`
	Status       ReferenceStatus `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	ProductCount int64           `json:"product_count" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Category groups products. ProductCount is maintained by the catalog engine.
type Category struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	Description  string          `json:"description,omitempty" gorm:"type:text"`
	ParentID     *uint           `json:"parent_id,omitempty" gorm:"index"`
	Status       ReferenceStatus `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	ProductCount int64           `json:"product_count" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Brand owns products. ProductCount is maintained by the catalog engine.
type Brand struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	LogoURL      string          `json:"logo_url,omitempty" gorm:"type:varchar(500)"`
	Status       ReferenceStatus `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	ProductCount int64           `json:"product_count" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CounterKind names an entity type that carries a denormalized ProductCount
type CounterKind string

const (
	CounterCategory CounterKind = "category"
	CounterBrand    CounterKind = "brand"
	CounterSize     CounterKind = "size"
	CounterColor    CounterKind = "color"
)

// CounterTarget identifies a single ProductCount field
type CounterTarget struct {
	Kind CounterKind
	ID   uint
}

// All lists every model managed by migrations
func All() []interface{} {
	return []interface{}{
		&Size{}, &Color{}, &Category{}, &Brand{},
		&Product{}, &ProductCategory{}, &ProductVariant{},
	}
}

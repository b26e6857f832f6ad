package catalog

import (
	"context"

	"catalog-service/internal/model"
)

// Store is the persistence collaborator of the catalog engine.
//
// Finders return an error wrapping ErrNotFound when the row does not exist.
// Writes that break a unique constraint return *UniqueViolationError naming
// one of the Constraint* constants. Reads never traverse relationships; every
// cross-entity lookup the engine needs is its own method.
type Store interface {
	// WithinTx runs fn inside a single transaction. Returning an error from fn
	// rolls back every write made through tx. Calling WithinTx on a Store that
	// is already transactional runs fn in the same transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	FindProductByID(ctx context.Context, id uint) (*model.Product, error)
	FindSizeByID(ctx context.Context, id uint) (*model.Size, error)
	FindColorByID(ctx context.Context, id uint) (*model.Color, error)
	FindCategoryByID(ctx context.Context, id uint) (*model.Category, error)
	FindBrandByID(ctx context.Context, id uint) (*model.Brand, error)
	FindVariantByID(ctx context.Context, id uint) (*model.ProductVariant, error)
	FindVariantByProductSizeColor(ctx context.Context, productID, sizeID, colorID uint) (*model.ProductVariant, error)
	FindVariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error)

	ListVariantsByProduct(ctx context.Context, productID uint) ([]model.ProductVariant, error)
	// ListProductIDs returns up to limit product IDs greater than afterID, ascending.
	ListProductIDs(ctx context.Context, afterID uint, limit int) ([]uint, error)
	ListCategoryIDsByProduct(ctx context.Context, productID uint) ([]uint, error)
	ListCounterOwnerIDs(ctx context.Context, kind model.CounterKind) ([]uint, error)

	// Save inserts when the ID is zero and updates otherwise; the assigned ID is written back.
	SaveProduct(ctx context.Context, product *model.Product) error
	SaveVariant(ctx context.Context, variant *model.ProductVariant) error
	SaveSize(ctx context.Context, size *model.Size) error
	SaveColor(ctx context.Context, color *model.Color) error
	SaveCategory(ctx context.Context, category *model.Category) error
	SaveBrand(ctx context.Context, brand *model.Brand) error
	ReplaceProductCategories(ctx context.Context, productID uint, categoryIDs []uint) error

	// CountVariantsByProduct counts variants of the product whose status is in
	// statuses, or all variants when statuses is empty.
	CountVariantsByProduct(ctx context.Context, productID uint, statuses ...model.VariantStatus) (int64, error)
	CountActiveVariantsByProduct(ctx context.Context, productID uint) (int64, error)
	SumActiveStockByProduct(ctx context.Context, productID uint) (int64, error)
	VariantStats(ctx context.Context, productID uint) (model.VariantStats, error)

	CountDistinctActiveProductsByCategory(ctx context.Context, categoryID uint) (int64, error)
	CountDistinctActiveProductsByBrand(ctx context.Context, brandID uint) (int64, error)
	CountDistinctActiveProductsBySize(ctx context.Context, sizeID uint) (int64, error)
	CountDistinctActiveProductsByColor(ctx context.Context, colorID uint) (int64, error)

	// UpdateProductCount writes count to the target's ProductCount only when it
	// differs from the stored value, reporting whether a write happened.
	UpdateProductCount(ctx context.Context, target model.CounterTarget, count int64) (bool, error)
}

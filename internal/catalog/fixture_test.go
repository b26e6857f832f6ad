package catalog_test

import (
	"context"
	"testing"

	"catalog-service/internal/blob"
	"catalog-service/internal/catalog"
	"catalog-service/internal/events"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	ctx    context.Context
	store  *repository.MemoryStore
	svc    *catalog.Service
	events *events.Recorder
	blobs  *blob.MemoryStore

	product  *model.Product
	category *model.Category
	brand    *model.Brand
	sizes    map[string]*model.Size
	colors   map[string]*model.Color
}

// newFixture seeds sizes M, L, XL, colors "Đỏ", "Do", "Xanh Dương", one
// brand, one category and product TS01 (ACTIVE, no variants).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, nil)
}

// newFixtureWithStore lets a test wrap the memory store before the service sees it
func newFixtureWithStore(t *testing.T, wrap func(catalog.Store) catalog.Store) *fixture {
	t.Helper()

	f := &fixture{
		ctx:    context.Background(),
		store:  repository.NewMemoryStore(),
		events: &events.Recorder{},
		blobs:  blob.NewMemoryStore(),
		sizes:  map[string]*model.Size{},
		colors: map[string]*model.Color{},
	}

	var store catalog.Store = f.store
	if wrap != nil {
		store = wrap(f.store)
	}
	svc, err := catalog.NewService(catalog.ServiceDeps{
		Store:        store,
		Blobs:        f.blobs,
		Dispatcher:   f.events,
		Logger:       zaptest.NewLogger(t),
		BulkPageSize: 2,
	})
	require.NoError(t, err)
	f.svc = svc

	for _, name := range []string{"M", "L", "XL"} {
		size := &model.Size{Name: name, Status: model.ReferenceStatusActive}
		require.NoError(t, f.store.SaveSize(f.ctx, size))
		f.sizes[name] = size
	}
	for _, name := range []string{"Đỏ", "Do", "Xanh Dương"} {
		color := &model.Color{Name: name, Status: model.ReferenceStatusActive}
		require.NoError(t, f.store.SaveColor(f.ctx, color))
		f.colors[name] = color
	}
	f.category = &model.Category{Name: "Shirts", Status: model.ReferenceStatusActive}
	require.NoError(t, f.store.SaveCategory(f.ctx, f.category))
	f.brand = &model.Brand{Name: "Acme", Status: model.ReferenceStatusActive}
	require.NoError(t, f.store.SaveBrand(f.ctx, f.brand))

	f.product = f.createProduct(t, "T-Shirt", "TS01")
	return f
}

func (f *fixture) createProduct(t *testing.T, name, code string) *model.Product {
	t.Helper()
	product, err := f.svc.CreateProduct(f.ctx, catalog.ProductInput{
		Name:       name,
		SKU:        code,
		CategoryID: &f.category.ID,
		BrandID:    &f.brand.ID,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) variantInput(productID uint, size, color string, stock int) catalog.CreateVariantInput {
	return catalog.CreateVariantInput{
		ProductID: productID,
		SizeID:    f.sizes[size].ID,
		ColorID:   f.colors[color].ID,
		Price:     decimal.NewFromInt(100),
		Stock:     stock,
	}
}

func (f *fixture) createVariant(t *testing.T, productID uint, size, color string, stock int) *model.ProductVariant {
	t.Helper()
	variant, err := f.svc.CreateVariant(f.ctx, f.variantInput(productID, size, color, stock))
	require.NoError(t, err)
	return variant
}

func (f *fixture) productStatus(t *testing.T, productID uint) model.ProductStatus {
	t.Helper()
	product, err := f.store.FindProductByID(f.ctx, productID)
	require.NoError(t, err)
	return product.Status
}

func (f *fixture) variantCount(t *testing.T, productID uint) int64 {
	t.Helper()
	n, err := f.store.CountVariantsByProduct(f.ctx, productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) sizeCount(t *testing.T, name string) int64 {
	t.Helper()
	size, err := f.store.FindSizeByID(f.ctx, f.sizes[name].ID)
	require.NoError(t, err)
	return size.ProductCount
}

func (f *fixture) colorCount(t *testing.T, name string) int64 {
	t.Helper()
	color, err := f.store.FindColorByID(f.ctx, f.colors[name].ID)
	require.NoError(t, err)
	return color.ProductCount
}

func (f *fixture) brandCount(t *testing.T) int64 {
	t.Helper()
	brand, err := f.store.FindBrandByID(f.ctx, f.brand.ID)
	require.NoError(t, err)
	return brand.ProductCount
}

func (f *fixture) categoryCount(t *testing.T, id uint) int64 {
	t.Helper()
	category, err := f.store.FindCategoryByID(f.ctx, id)
	require.NoError(t, err)
	return category.ProductCount
}

func eventTypes(recorded []model.Event) []string {
	types := make([]string, 0, len(recorded))
	for _, e := range recorded {
		types = append(types, e.Type())
	}
	return types
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

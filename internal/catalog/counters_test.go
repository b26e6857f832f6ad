package catalog_test

import (
	"testing"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"github.com/stretchr/testify/require"
)

func TestCounters_SizeAndColorCountDistinctProducts(t *testing.T) {
	f := newFixture(t)
	other := f.createProduct(t, "Polo", "PL01")

	a := f.createVariant(t, f.product.ID, "M", "Đỏ", 3)
	require.EqualValues(t, 1, f.sizeCount(t, "M"))
	require.EqualValues(t, 1, f.colorCount(t, "Đỏ"))

	f.createVariant(t, f.product.ID, "L", "Đỏ", 3)
	require.EqualValues(t, 1, f.colorCount(t, "Đỏ"), "same product counts once")
	require.EqualValues(t, 1, f.sizeCount(t, "L"))

	f.createVariant(t, other.ID, "M", "Xanh Dương", 3)
	require.EqualValues(t, 2, f.sizeCount(t, "M"))

	require.NoError(t, f.svc.DeleteVariant(f.ctx, a.ID))
	require.EqualValues(t, 1, f.sizeCount(t, "M"))
	require.EqualValues(t, 1, f.colorCount(t, "Đỏ"), "L variant still carries the color")
}

func TestCounters_OnlyActiveVariantsCountForSizes(t *testing.T) {
	f := newFixture(t)
	in := f.variantInput(f.product.ID, "XL", "Do", 3)
	in.Status = model.VariantStatusOutOfStock
	_, err := f.svc.CreateVariant(f.ctx, in)
	require.NoError(t, err)

	require.Zero(t, f.sizeCount(t, "XL"))
	require.Zero(t, f.colorCount(t, "Do"))
	// the product is OUT_OF_STOCK, which still counts for its brand and category
	require.Equal(t, model.ProductStatusOutOfStock, f.productStatus(t, f.product.ID))
	require.EqualValues(t, 1, f.brandCount(t))
	require.EqualValues(t, 1, f.categoryCount(t, f.category.ID))
}

func TestCounters_FollowProductStatus(t *testing.T) {
	f := newFixture(t)
	require.EqualValues(t, 1, f.brandCount(t))
	require.EqualValues(t, 1, f.categoryCount(t, f.category.ID))

	v := f.createVariant(t, f.product.ID, "M", "Đỏ", 3)
	require.NoError(t, f.svc.DeleteVariant(f.ctx, v.ID))

	require.Equal(t, model.ProductStatusInactive, f.productStatus(t, f.product.ID))
	require.Zero(t, f.brandCount(t))
	require.Zero(t, f.categoryCount(t, f.category.ID))
	require.Zero(t, f.sizeCount(t, "M"))
}

func TestCounters_MembershipCategories(t *testing.T) {
	f := newFixture(t)
	sale := &model.Category{Name: "Sale", Status: model.ReferenceStatusActive}
	require.NoError(t, f.store.SaveCategory(f.ctx, sale))

	product, err := f.svc.CreateProduct(f.ctx, catalog.ProductInput{
		Name:        "Cap",
		SKU:         "CP01",
		CategoryID:  &f.category.ID,
		CategoryIDs: []uint{f.category.ID, sale.ID},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, f.categoryCount(t, f.category.ID), "primary and membership count once per product")
	require.EqualValues(t, 1, f.categoryCount(t, sale.ID))

	_, err = f.svc.UpdateProduct(f.ctx, product.ID, catalog.ProductInput{
		Name: "Cap",
		SKU:  "CP01",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, f.categoryCount(t, f.category.ID))
	require.Zero(t, f.categoryCount(t, sale.ID))
}

func TestCounters_UpdateProductMovesBrand(t *testing.T) {
	f := newFixture(t)
	other := &model.Brand{Name: "Globex", Status: model.ReferenceStatusActive}
	require.NoError(t, f.store.SaveBrand(f.ctx, other))

	_, err := f.svc.UpdateProduct(f.ctx, f.product.ID, catalog.ProductInput{
		Name:       "T-Shirt",
		SKU:        "TS01",
		CategoryID: &f.category.ID,
		BrandID:    &other.ID,
	})
	require.NoError(t, err)

	require.Zero(t, f.brandCount(t))
	brand, err := f.store.FindBrandByID(f.ctx, other.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, brand.ProductCount)
}

func TestCounterMaintainer_RefreshWritesOnlyChanges(t *testing.T) {
	f := newFixture(t)
	v := f.createVariant(t, f.product.ID, "M", "Đỏ", 3)
	m := catalog.NewCounterMaintainer(nopLogger())

	changes, err := m.RefreshCountersForVariant(f.ctx, f.store, v.ID)
	require.NoError(t, err)
	require.Empty(t, changes)

	_, err = f.store.UpdateProductCount(f.ctx, model.CounterTarget{Kind: model.CounterSize, ID: v.SizeID}, 42)
	require.NoError(t, err)

	changes, err = m.RefreshCountersForVariant(f.ctx, f.store, v.ID)
	require.NoError(t, err)
	require.Equal(t, []catalog.CounterChange{{
		Target: model.CounterTarget{Kind: model.CounterSize, ID: v.SizeID},
		Count:  1,
	}}, changes)

	_, err = m.RefreshCountersForVariant(f.ctx, f.store, 999)
	require.True(t, catalog.IsVariantNotFoundError(err))
}

func TestRefreshAllCounters(t *testing.T) {
	f := newFixture(t)
	f.createVariant(t, f.product.ID, "M", "Đỏ", 3)

	for _, target := range []model.CounterTarget{
		{Kind: model.CounterSize, ID: f.sizes["M"].ID},
		{Kind: model.CounterSize, ID: f.sizes["XL"].ID},
		{Kind: model.CounterBrand, ID: f.brand.ID},
	} {
		_, err := f.store.UpdateProductCount(f.ctx, target, 7)
		require.NoError(t, err)
	}

	result, err := f.svc.RefreshAllCounters(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 3, result.Changed)
	require.Equal(t, 3+3+1+1, result.Processed)
	require.EqualValues(t, 1, f.sizeCount(t, "M"))
	require.Zero(t, f.sizeCount(t, "XL"))
	require.EqualValues(t, 1, f.brandCount(t))

	again, err := f.svc.RefreshAllCounters(f.ctx)
	require.NoError(t, err)
	require.Zero(t, again.Changed)
}

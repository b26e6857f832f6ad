package repository

import (
	"context"
	"errors"
	"testing"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedVariant(t *testing.T, s catalog.Store, productID, sizeID, colorID uint, sku string) *model.ProductVariant {
	t.Helper()
	v := &model.ProductVariant{
		ProductID: productID,
		SizeID:    sizeID,
		ColorID:   colorID,
		SKU:       sku,
		Price:     decimal.NewFromInt(10),
		Stock:     1,
		Status:    model.VariantStatusActive,
	}
	require.NoError(t, s.SaveVariant(context.Background(), v))
	return v
}

func TestMemoryStore_WithinTx(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("WithinTx_CommitsOnSuccess", func(t *testing.T) {
		err := s.WithinTx(ctx, func(tx catalog.Store) error {
			return tx.SaveProduct(ctx, &model.Product{Name: "A", SKU: "A1", Status: model.ProductStatusActive})
		})
		require.NoError(t, err)

		ids, err := s.ListProductIDs(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, ids, 1)
	})

	t.Run("WithinTx_RollsBackOnError", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx catalog.Store) error {
			require.NoError(t, tx.SaveProduct(ctx, &model.Product{Name: "B", SKU: "B1"}))
			// writes are visible inside the transaction
			ids, err := tx.ListProductIDs(ctx, 0, 10)
			require.NoError(t, err)
			require.Len(t, ids, 2)
			return boom
		})
		require.ErrorIs(t, err, boom)

		ids, err := s.ListProductIDs(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, ids, 1)
	})

	t.Run("WithinTx_NestedCallJoinsTransaction", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx catalog.Store) error {
			require.NoError(t, tx.WithinTx(ctx, func(inner catalog.Store) error {
				return inner.SaveProduct(ctx, &model.Product{Name: "C", SKU: "C1"})
			}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		ids, err := s.ListProductIDs(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, ids, 1)
	})

	t.Run("WithinTx_CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := s.WithinTx(canceled, func(tx catalog.Store) error { return nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryStore_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	v := seedVariant(t, s, 1, 1, 1, "SKU-1")

	var unique *catalog.UniqueViolationError

	err := s.SaveVariant(ctx, &model.ProductVariant{ProductID: 1, SizeID: 2, ColorID: 1, SKU: "SKU-1"})
	require.ErrorAs(t, err, &unique)
	require.Equal(t, catalog.ConstraintVariantSKU, unique.Constraint)

	err = s.SaveVariant(ctx, &model.ProductVariant{ProductID: 1, SizeID: 1, ColorID: 1, SKU: "SKU-2"})
	require.ErrorAs(t, err, &unique)
	require.Equal(t, catalog.ConstraintVariantIdentity, unique.Constraint)

	// updating a row does not conflict with itself
	v.Stock = 5
	require.NoError(t, s.SaveVariant(ctx, v))

	require.NoError(t, s.SaveProduct(ctx, &model.Product{Name: "A", SKU: "P1"}))
	err = s.SaveProduct(ctx, &model.Product{Name: "B", SKU: "P1"})
	require.ErrorAs(t, err, &unique)
	require.Equal(t, catalog.ConstraintProductSKU, unique.Constraint)
}

func TestMemoryStore_FindersReturnNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.FindProductByID(ctx, 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = s.FindVariantBySKU(ctx, "nope")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = s.FindVariantByProductSizeColor(ctx, 1, 2, 3)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	brand := uint(3)
	p := &model.Product{Name: "A", SKU: "A1", BrandID: &brand}
	require.NoError(t, s.SaveProduct(ctx, p))

	loaded, err := s.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	*loaded.BrandID = 99
	loaded.Name = "changed"

	again, err := s.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "A", again.Name)
	require.EqualValues(t, 3, *again.BrandID)
}

func TestMemoryStore_UpdateProductCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	size := &model.Size{Name: "M"}
	require.NoError(t, s.SaveSize(ctx, size))
	target := model.CounterTarget{Kind: model.CounterSize, ID: size.ID}

	changed, err := s.UpdateProductCount(ctx, target, 2)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = s.UpdateProductCount(ctx, target, 2)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = s.UpdateProductCount(ctx, model.CounterTarget{Kind: model.CounterSize, ID: 42}, 2)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = s.UpdateProductCount(ctx, model.CounterTarget{Kind: "shelf", ID: 1}, 2)
	require.Error(t, err)
}

func TestMemoryStore_Counts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	category := uint(7)
	brand := uint(8)

	active := &model.Product{Name: "A", SKU: "A1", Status: model.ProductStatusActive, CategoryID: &category, BrandID: &brand}
	oos := &model.Product{Name: "B", SKU: "B1", Status: model.ProductStatusOutOfStock, BrandID: &brand}
	retired := &model.Product{Name: "C", SKU: "C1", Status: model.ProductStatusDiscontinued, CategoryID: &category, BrandID: &brand}
	for _, p := range []*model.Product{active, oos, retired} {
		require.NoError(t, s.SaveProduct(ctx, p))
	}
	require.NoError(t, s.ReplaceProductCategories(ctx, oos.ID, []uint{category, category, 0}))

	ids, err := s.ListCategoryIDsByProduct(ctx, oos.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{category}, ids)

	n, err := s.CountDistinctActiveProductsByCategory(ctx, category)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = s.CountDistinctActiveProductsByBrand(ctx, brand)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	seedVariant(t, s, active.ID, 1, 1, "A1-1")
	seedVariant(t, s, active.ID, 1, 2, "A1-2")
	seedVariant(t, s, retired.ID, 1, 1, "C1-1")
	gone := seedVariant(t, s, oos.ID, 1, 1, "B1-1")
	gone.Status = model.VariantStatusInactive
	require.NoError(t, s.SaveVariant(ctx, gone))

	n, err = s.CountDistinctActiveProductsBySize(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.CountDistinctActiveProductsByColor(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.CountVariantsByProduct(ctx, oos.ID, model.VariantStatusInactive)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	sum, err := s.SumActiveStockByProduct(ctx, active.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, sum)
}

func TestMemoryStore_ListProductIDsPages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, code := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, s.SaveProduct(ctx, &model.Product{Name: code, SKU: code}))
	}

	page, err := s.ListProductIDs(ctx, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 2}, page)

	page, err = s.ListProductIDs(ctx, 4, 2)
	require.NoError(t, err)
	require.Equal(t, []uint{5}, page)

	page, err = s.ListProductIDs(ctx, 5, 2)
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestMemoryStore_FailNext(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")
	s.FailNext("SaveProduct", boom)

	require.ErrorIs(t, s.SaveProduct(ctx, &model.Product{Name: "A", SKU: "A"}), boom)
	require.NoError(t, s.SaveProduct(ctx, &model.Product{Name: "A", SKU: "A"}))
}

package catalog_test

import (
	"strings"
	"testing"

	"catalog-service/internal/catalog"

	"github.com/stretchr/testify/require"
)

func TestGenerateSKU(t *testing.T) {
	require.Equal(t, "TS01-DO-XL", catalog.GenerateSKU("TS01", "Đỏ", "XL"))
	require.Equal(t, "TS01-XANHDUONG-M", catalog.GenerateSKU("TS01", "Xanh Dương", "m"))
	require.Equal(t, catalog.GenerateSKU("TS01", "Đỏ", "XL"), catalog.GenerateSKU("TS01", "Đỏ", "XL"))
}

func TestSKUGenerator_Resolve(t *testing.T) {
	f := newFixture(t)
	var gen catalog.SKUGenerator
	existing := f.createVariant(t, f.product.ID, "M", "Đỏ", 5)
	require.Equal(t, "TS01-DO-M", existing.SKU)

	t.Run("Resolve_FreeCandidate", func(t *testing.T) {
		sku, err := gen.Resolve(f.ctx, f.store, "", "TS01", "Đỏ", "L", 0)
		require.NoError(t, err)
		require.Equal(t, "TS01-DO-L", sku)
	})

	t.Run("Resolve_UsesTrimmedOverride", func(t *testing.T) {
		sku, err := gen.Resolve(f.ctx, f.store, "  CUSTOM-1 ", "TS01", "Đỏ", "L", 0)
		require.NoError(t, err)
		require.Equal(t, "CUSTOM-1", sku)
	})

	t.Run("Resolve_RejectsCollision", func(t *testing.T) {
		_, err := gen.Resolve(f.ctx, f.store, "", "TS01", "Do", "M", 0)
		require.True(t, catalog.IsDuplicateSkuError(err))
		require.True(t, catalog.IsConflict(err))
	})

	t.Run("Resolve_IgnoresExcludedVariant", func(t *testing.T) {
		sku, err := gen.Resolve(f.ctx, f.store, "", "TS01", "Đỏ", "M", existing.ID)
		require.NoError(t, err)
		require.Equal(t, existing.SKU, sku)
	})

	t.Run("Resolve_RejectsOverlongSKU", func(t *testing.T) {
		_, err := gen.Resolve(f.ctx, f.store, strings.Repeat("A", 101), "TS01", "Đỏ", "M", 0)
		require.True(t, catalog.IsInvalidFieldError(err))
	})
}

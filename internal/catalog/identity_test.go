package catalog_test

import (
	"testing"

	"catalog-service/internal/catalog"

	"github.com/stretchr/testify/require"
)

func TestVariantIdentity_ValidateCreate(t *testing.T) {
	f := newFixture(t)
	var identity catalog.VariantIdentity
	size, color := f.sizes["M"].ID, f.colors["Đỏ"].ID

	t.Run("ValidateCreate_ChecksProductFirst", func(t *testing.T) {
		_, err := identity.ValidateCreate(f.ctx, f.store, 999, 999, 999)
		require.True(t, catalog.IsProductNotFoundError(err))
	})

	t.Run("ValidateCreate_MissingSize", func(t *testing.T) {
		_, err := identity.ValidateCreate(f.ctx, f.store, f.product.ID, 999, 999)
		require.True(t, catalog.IsSizeNotFoundError(err))
	})

	t.Run("ValidateCreate_MissingColor", func(t *testing.T) {
		_, err := identity.ValidateCreate(f.ctx, f.store, f.product.ID, size, 999)
		require.True(t, catalog.IsColorNotFoundError(err))
		require.True(t, catalog.IsNotFound(err))
	})

	t.Run("ValidateCreate_ReturnsRefs", func(t *testing.T) {
		refs, err := identity.ValidateCreate(f.ctx, f.store, f.product.ID, size, color)
		require.NoError(t, err)
		require.Equal(t, "TS01", refs.Product.SKU)
		require.Equal(t, "M", refs.Size.Name)
		require.Equal(t, "Đỏ", refs.Color.Name)
	})

	t.Run("ValidateCreate_SlotTaken", func(t *testing.T) {
		f.createVariant(t, f.product.ID, "M", "Đỏ", 1)
		_, err := identity.ValidateCreate(f.ctx, f.store, f.product.ID, size, color)
		require.True(t, catalog.IsDuplicateVariantError(err))
	})

	t.Run("ValidateCreate_SoftDeletedVariantKeepsSlot", func(t *testing.T) {
		v := f.createVariant(t, f.product.ID, "L", "Đỏ", 1)
		require.NoError(t, f.svc.DeleteVariant(f.ctx, v.ID))

		_, err := identity.ValidateCreate(f.ctx, f.store, f.product.ID, f.sizes["L"].ID, color)
		require.True(t, catalog.IsDuplicateVariantError(err))
	})
}

func TestVariantIdentity_ValidateRekey(t *testing.T) {
	f := newFixture(t)
	var identity catalog.VariantIdentity
	a := f.createVariant(t, f.product.ID, "M", "Đỏ", 1)
	f.createVariant(t, f.product.ID, "L", "Đỏ", 1)

	t.Run("ValidateRekey_UnknownVariant", func(t *testing.T) {
		_, err := identity.ValidateRekey(f.ctx, f.store, 999, f.sizes["M"].ID, f.colors["Đỏ"].ID)
		require.True(t, catalog.IsVariantNotFoundError(err))
	})

	t.Run("ValidateRekey_OwnSlotIsFree", func(t *testing.T) {
		_, err := identity.ValidateRekey(f.ctx, f.store, a.ID, a.SizeID, a.ColorID)
		require.NoError(t, err)
	})

	t.Run("ValidateRekey_OccupiedSlot", func(t *testing.T) {
		_, err := identity.ValidateRekey(f.ctx, f.store, a.ID, f.sizes["L"].ID, a.ColorID)
		require.True(t, catalog.IsDuplicateVariantError(err))
	})

	t.Run("ValidateRekey_MissingSize", func(t *testing.T) {
		_, err := identity.ValidateRekey(f.ctx, f.store, a.ID, 999, a.ColorID)
		require.True(t, catalog.IsSizeNotFoundError(err))
	})
}

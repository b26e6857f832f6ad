package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/model"
)

// VariantRefs holds the entities a variant points at, loaded during validation
// so later steps (SKU derivation) do not read them again.
type VariantRefs struct {
	Product *model.Product
	Size    *model.Size
	Color   *model.Color
}

// VariantIdentity enforces that every variant references existing entities
// and that (product, size, color) is unique.
type VariantIdentity struct{}

// ValidateCreate checks, in order: product, size and color exist, and no
// variant already occupies the slot.
func (VariantIdentity) ValidateCreate(ctx context.Context, store Store, productID, sizeID, colorID uint) (VariantRefs, error) {
	refs, err := loadRefs(ctx, store, productID, sizeID, colorID)
	if err != nil {
		return VariantRefs{}, err
	}
	if err := checkSlot(ctx, store, productID, sizeID, colorID, 0); err != nil {
		return VariantRefs{}, err
	}
	return refs, nil
}

// ValidateRekey runs the same checks for moving an existing variant to a new
// size/color; the variant itself does not count as a duplicate.
func (VariantIdentity) ValidateRekey(ctx context.Context, store Store, variantID, newSizeID, newColorID uint) (VariantRefs, error) {
	variant, err := store.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return VariantRefs{}, NewVariantNotFoundError(variantID)
		}
		return VariantRefs{}, fmt.Errorf("failed to load variant %d: %w", variantID, err)
	}

	refs, err := loadRefs(ctx, store, variant.ProductID, newSizeID, newColorID)
	if err != nil {
		return VariantRefs{}, err
	}
	if err := checkSlot(ctx, store, variant.ProductID, newSizeID, newColorID, variantID); err != nil {
		return VariantRefs{}, err
	}
	return refs, nil
}

func loadRefs(ctx context.Context, store Store, productID, sizeID, colorID uint) (VariantRefs, error) {
	var refs VariantRefs
	var err error

	if refs.Product, err = store.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return VariantRefs{}, NewProductNotFoundError(productID)
		}
		return VariantRefs{}, fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	if refs.Size, err = store.FindSizeByID(ctx, sizeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return VariantRefs{}, NewSizeNotFoundError(sizeID)
		}
		return VariantRefs{}, fmt.Errorf("failed to load size %d: %w", sizeID, err)
	}
	if refs.Color, err = store.FindColorByID(ctx, colorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return VariantRefs{}, NewColorNotFoundError(colorID)
		}
		return VariantRefs{}, fmt.Errorf("failed to load color %d: %w", colorID, err)
	}
	return refs, nil
}

// checkSlot does not filter on status: an INACTIVE variant keeps its slot.
func checkSlot(ctx context.Context, store Store, productID, sizeID, colorID, selfID uint) error {
	existing, err := store.FindVariantByProductSizeColor(ctx, productID, sizeID, colorID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check variant slot: %w", err)
	case existing.ID == selfID:
		return nil
	default:
		return NewDuplicateVariantError(productID, sizeID, colorID)
	}
}

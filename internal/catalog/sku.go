package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GenerateSKU derives the candidate SKU of a variant from its product code,
// color name and size name.
func GenerateSKU(productCode, colorName, sizeName string) string {
	return productCode + "-" + Normalize(colorName) + "-" + Normalize(sizeName)
}

// SKUGenerator checks candidate SKUs against the store. Collisions are
// rejected, never suffixed.
type SKUGenerator struct{}

// Resolve returns the SKU to assign: the trimmed override when the caller
// supplied one, the derived SKU otherwise. A SKU already held by another
// variant (excludeVariantID aside) fails with DuplicateSkuError.
func (SKUGenerator) Resolve(ctx context.Context, store Store, override, productCode, colorName, sizeName string, excludeVariantID uint) (string, error) {
	sku := strings.TrimSpace(override)
	if sku == "" {
		sku = GenerateSKU(productCode, colorName, sizeName)
	}
	if len(sku) > 100 {
		return "", NewInvalidFieldError("sku", "must not exceed 100 characters", sku)
	}

	existing, err := store.FindVariantBySKU(ctx, sku)
	switch {
	case errors.Is(err, ErrNotFound):
		return sku, nil
	case err != nil:
		return "", fmt.Errorf("failed to check sku %s: %w", sku, err)
	case existing.ID == excludeVariantID:
		return sku, nil
	default:
		return "", NewDuplicateSkuError(sku)
	}
}

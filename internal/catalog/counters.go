package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"go.uber.org/zap"
)

// CounterChange records a ProductCount that was rewritten
type CounterChange struct {
	Target model.CounterTarget
	Count  int64
}

// CounterMaintainer recomputes the denormalized ProductCount fields from
// source rows. Counts are never incremented in place.
type CounterMaintainer struct {
	log *zap.Logger
}

// NewCounterMaintainer builds the counter maintainer
func NewCounterMaintainer(log *zap.Logger) CounterMaintainer {
	return CounterMaintainer{log: log}
}

// RefreshCountersForVariant refreshes the size and color counters of a variant
func (m CounterMaintainer) RefreshCountersForVariant(ctx context.Context, store Store, variantID uint) ([]CounterChange, error) {
	variant, err := store.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewVariantNotFoundError(variantID)
		}
		return nil, fmt.Errorf("failed to load variant %d: %w", variantID, err)
	}
	return m.Refresh(ctx, store, VariantCounterTargets(variant)...)
}

// RefreshCountersForProduct refreshes every counter the product can
// contribute to: its brand, its categories and the sizes and colors of its
// variants.
func (m CounterMaintainer) RefreshCountersForProduct(ctx context.Context, store Store, productID uint) ([]CounterChange, error) {
	targets, err := m.ProductCounterTargets(ctx, store, productID)
	if err != nil {
		return nil, err
	}
	return m.Refresh(ctx, store, targets...)
}

// VariantCounterTargets lists the counters a variant contributes to
func VariantCounterTargets(v *model.ProductVariant) []model.CounterTarget {
	return []model.CounterTarget{
		{Kind: model.CounterSize, ID: v.SizeID},
		{Kind: model.CounterColor, ID: v.ColorID},
	}
}

// ProductCounterTargets lists the counters a product currently contributes to
func (m CounterMaintainer) ProductCounterTargets(ctx context.Context, store Store, productID uint) ([]model.CounterTarget, error) {
	product, err := store.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewProductNotFoundError(productID)
		}
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	var targets []model.CounterTarget
	if product.BrandID != nil {
		targets = append(targets, model.CounterTarget{Kind: model.CounterBrand, ID: *product.BrandID})
	}
	if product.CategoryID != nil {
		targets = append(targets, model.CounterTarget{Kind: model.CounterCategory, ID: *product.CategoryID})
	}

	categoryIDs, err := store.ListCategoryIDsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of product %d: %w", productID, err)
	}
	for _, id := range categoryIDs {
		targets = append(targets, model.CounterTarget{Kind: model.CounterCategory, ID: id})
	}

	variants, err := store.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants of product %d: %w", productID, err)
	}
	for i := range variants {
		targets = append(targets, VariantCounterTargets(&variants[i])...)
	}
	return targets, nil
}

// Refresh recomputes each distinct target once and writes back the counts
// that changed.
func (m CounterMaintainer) Refresh(ctx context.Context, store Store, targets ...model.CounterTarget) ([]CounterChange, error) {
	defer prometheus.TrackDBOperation("refresh_counters")(time.Now())

	seen := make(map[model.CounterTarget]struct{}, len(targets))
	var changes []CounterChange
	for _, target := range targets {
		if target.ID == 0 {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}

		count, err := countFor(ctx, store, target)
		if err != nil {
			return nil, err
		}
		changed, err := store.UpdateProductCount(ctx, target, count)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s %d product count: %w", target.Kind, target.ID, err)
		}
		if !changed {
			continue
		}

		changes = append(changes, CounterChange{Target: target, Count: count})
		prometheus.RecordCounterWrite(string(target.Kind))
		m.log.Debug("Product count updated",
			zap.String("kind", string(target.Kind)),
			zap.Uint("id", target.ID),
			zap.Int64("count", count))
	}
	return changes, nil
}

func countFor(ctx context.Context, store Store, target model.CounterTarget) (int64, error) {
	var (
		count int64
		err   error
	)
	switch target.Kind {
	case model.CounterCategory:
		count, err = store.CountDistinctActiveProductsByCategory(ctx, target.ID)
	case model.CounterBrand:
		count, err = store.CountDistinctActiveProductsByBrand(ctx, target.ID)
	case model.CounterSize:
		count, err = store.CountDistinctActiveProductsBySize(ctx, target.ID)
	case model.CounterColor:
		count, err = store.CountDistinctActiveProductsByColor(ctx, target.ID)
	default:
		return 0, fmt.Errorf("unknown counter kind %q", target.Kind)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count products for %s %d: %w", target.Kind, target.ID, err)
	}
	return count, nil
}

// BulkCounterResult summarises a RefreshAll run
type BulkCounterResult struct {
	Processed int             `json:"processed"`
	Changed   int             `json:"changed"`
	Changes   []CounterChange `json:"-"`
}

// RefreshAll recomputes every category, brand, size and color counter, one
// transaction per counter. Like RecomputeAll it is safe to repeat after a failure.
func (m CounterMaintainer) RefreshAll(ctx context.Context, store Store) (BulkCounterResult, error) {
	var result BulkCounterResult
	kinds := []model.CounterKind{model.CounterCategory, model.CounterBrand, model.CounterSize, model.CounterColor}
	for _, kind := range kinds {
		ids, err := store.ListCounterOwnerIDs(ctx, kind)
		if err != nil {
			return result, fmt.Errorf("failed to list %s ids: %w", kind, err)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			var changes []CounterChange
			err := store.WithinTx(ctx, func(tx Store) error {
				var err error
				changes, err = m.Refresh(ctx, tx, model.CounterTarget{Kind: kind, ID: id})
				return err
			})
			if err != nil {
				return result, err
			}
			result.Processed++
			result.Changed += len(changes)
			result.Changes = append(result.Changes, changes...)
		}
	}
	return result, nil
}

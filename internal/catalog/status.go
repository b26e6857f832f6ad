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

// StatusOutcome reports what a status recomputation did to one product
type StatusOutcome struct {
	ProductID uint
	Previous  model.ProductStatus
	Current   model.ProductStatus
	Changed   bool
	// Note is ErrProductHasNoVariants when the product was left untouched for
	// having no variants; it is informational only.
	Note error
}

// StatusCascade derives a product's status from its variants
type StatusCascade struct {
	log *zap.Logger
}

// NewStatusCascade builds the cascade engine
func NewStatusCascade(log *zap.Logger) StatusCascade {
	return StatusCascade{log: log}
}

// VariantCounts is the input of the status derivation rule
type VariantCounts struct {
	Total       int64
	Inactive    int64
	Active      int64
	ActiveStock int64
}

// DeriveProductStatus applies the cascade rule. ok is false when the product
// has no variants and its status must be left as is.
//
// A product whose variants are all OUT_OF_STOCK, or a mix of OUT_OF_STOCK and
// INACTIVE, has nothing sellable but is not retired, so it is OUT_OF_STOCK.
func DeriveProductStatus(c VariantCounts) (status model.ProductStatus, ok bool) {
	switch {
	case c.Total == 0:
		return "", false
	case c.Inactive == c.Total:
		return model.ProductStatusInactive, true
	case c.Active > 0 && c.ActiveStock > 0:
		return model.ProductStatusActive, true
	default:
		return model.ProductStatusOutOfStock, true
	}
}

// RecomputeProductStatus recomputes and persists the status of one product
// from the variants visible to store. DISCONTINUED products are skipped.
func (c StatusCascade) RecomputeProductStatus(ctx context.Context, store Store, productID uint) (StatusOutcome, error) {
	defer prometheus.TrackDBOperation("recompute_product_status")(time.Now())

	product, err := store.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusOutcome{}, NewProductNotFoundError(productID)
		}
		return StatusOutcome{}, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	outcome := StatusOutcome{ProductID: productID, Previous: product.Status, Current: product.Status}
	if product.Status == model.ProductStatusDiscontinued {
		return outcome, nil
	}

	counts, err := c.countVariants(ctx, store, productID)
	if err != nil {
		return StatusOutcome{}, err
	}

	next, ok := DeriveProductStatus(counts)
	if !ok {
		outcome.Note = ErrProductHasNoVariants
		c.log.Debug("Product has no variants, status left unchanged",
			zap.Uint("product_id", productID),
			zap.String("status", string(product.Status)))
		return outcome, nil
	}
	if next == product.Status {
		return outcome, nil
	}

	product.Status = next
	if err := store.SaveProduct(ctx, product); err != nil {
		return StatusOutcome{}, fmt.Errorf("failed to save status of product %d: %w", productID, err)
	}

	outcome.Current = next
	outcome.Changed = true
	prometheus.RecordStatusTransition(string(outcome.Previous), string(next))
	c.log.Info("Product status recomputed",
		zap.Uint("product_id", productID),
		zap.String("from", string(outcome.Previous)),
		zap.String("to", string(next)))
	return outcome, nil
}

func (c StatusCascade) countVariants(ctx context.Context, store Store, productID uint) (VariantCounts, error) {
	var counts VariantCounts
	var err error

	if counts.Total, err = store.CountVariantsByProduct(ctx, productID); err != nil {
		return counts, fmt.Errorf("failed to count variants of product %d: %w", productID, err)
	}
	if counts.Total == 0 {
		return counts, nil
	}
	if counts.Inactive, err = store.CountVariantsByProduct(ctx, productID, model.VariantStatusInactive); err != nil {
		return counts, fmt.Errorf("failed to count inactive variants of product %d: %w", productID, err)
	}
	if counts.Active, err = store.CountActiveVariantsByProduct(ctx, productID); err != nil {
		return counts, fmt.Errorf("failed to count active variants of product %d: %w", productID, err)
	}
	if counts.Active > 0 {
		if counts.ActiveStock, err = store.SumActiveStockByProduct(ctx, productID); err != nil {
			return counts, fmt.Errorf("failed to sum active stock of product %d: %w", productID, err)
		}
	}
	return counts, nil
}

// BulkStatusResult summarises a RecomputeAll run
type BulkStatusResult struct {
	Processed int             `json:"processed"`
	Changed   int             `json:"changed"`
	Changes   []StatusOutcome `json:"-"`
	LastID    uint            `json:"last_id"`
}

// RecomputeAll walks every product in ID order, recomputing each inside its
// own transaction. onChange, when set, runs in that same transaction for each
// product whose status changed. On failure the products already processed
// stay updated, LastID tells how far the run got, and the whole run can
// simply be repeated.
func (c StatusCascade) RecomputeAll(ctx context.Context, store Store, pageSize int, onChange func(ctx context.Context, tx Store, outcome StatusOutcome) error) (BulkStatusResult, error) {
	if pageSize <= 0 {
		pageSize = 200
	}

	var result BulkStatusResult
	afterID := uint(0)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ids, err := store.ListProductIDs(ctx, afterID, pageSize)
		if err != nil {
			return result, fmt.Errorf("failed to list products after %d: %w", afterID, err)
		}
		if len(ids) == 0 {
			return result, nil
		}

		for _, id := range ids {
			var outcome StatusOutcome
			err := store.WithinTx(ctx, func(tx Store) error {
				var err error
				if outcome, err = c.RecomputeProductStatus(ctx, tx, id); err != nil {
					return err
				}
				if outcome.Changed && onChange != nil {
					return onChange(ctx, tx, outcome)
				}
				return nil
			})
			if err != nil {
				return result, fmt.Errorf("failed to recompute status of product %d: %w", id, err)
			}
			result.Processed++
			result.LastID = id
			if outcome.Changed {
				result.Changed++
				result.Changes = append(result.Changes, outcome)
			}
		}
		afterID = ids[len(ids)-1]
	}
}

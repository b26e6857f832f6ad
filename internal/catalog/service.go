package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventDispatcher publishes catalog events once a mutation has committed
type EventDispatcher interface {
	Dispatch(ctx context.Context, event model.Event) error
}

// BlobStore holds binary assets such as variant images
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ServiceDeps bundles the collaborators of the catalog service
type ServiceDeps struct {
	Store      Store
	Blobs      BlobStore
	Dispatcher EventDispatcher
	Logger     *zap.Logger
	// BulkPageSize is the number of products loaded per page by repair runs
	BulkPageSize int
}

// Service orchestrates every catalog mutation: identity checks, SKU
// assignment, persistence, status cascade and counter refresh run in one
// transaction per operation.
type Service struct {
	store      Store
	blobs      BlobStore
	dispatcher EventDispatcher
	log        *zap.Logger
	pageSize   int

	identity VariantIdentity
	skus     SKUGenerator
	cascade  StatusCascade
	counters CounterMaintainer
}

// NewService constructs the catalog service
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("catalog service: store is required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      deps.Store,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
		log:        log,
		pageSize:   deps.BulkPageSize,
		cascade:    NewStatusCascade(log),
		counters:   NewCounterMaintainer(log),
	}, nil
}

// CreateVariantInput describes a new variant. SKU is optional; when blank it
// is derived from the product code, color and size.
type CreateVariantInput struct {
	ProductID uint
	SizeID    uint
	ColorID   uint
	SKU       string
	Price     decimal.Decimal
	Stock     int
	Status    model.VariantStatus
}

// UpdateVariantInput carries the fields to change; nil fields are kept
type UpdateVariantInput struct {
	SizeID  *uint
	ColorID *uint
	Price   *decimal.Decimal
	Stock   *int
	Status  *model.VariantStatus
}

// ProductInput describes the editable fields of a product
type ProductInput struct {
	Name        string
	Description string
	SKU         string
	CategoryID  *uint
	CategoryIDs []uint
	BrandID     *uint
	Gender      string
	// Status is only read on create; an empty value means ACTIVE
	Status model.ProductStatus
}

// ImageUpload is a variant image to store
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// changeSet collects the events of one operation until it commits
type changeSet struct {
	events []model.Event
}

func (c *changeSet) add(e model.Event) {
	c.events = append(c.events, e)
}

func (c *changeSet) status(o StatusOutcome) {
	if o.Changed {
		c.add(model.ProductStatusChanged{ProductID: o.ProductID, From: o.Previous, To: o.Current})
	}
}

func (c *changeSet) counters(changes []CounterChange) {
	for _, ch := range changes {
		c.add(model.ProductCountChanged{Kind: ch.Target.Kind, ID: ch.Target.ID, Count: ch.Count})
	}
}

// mutate runs fn in a transaction and dispatches its events after commit
func (s *Service) mutate(ctx context.Context, op string, fn func(tx Store, changes *changeSet) error) error {
	var changes changeSet
	err := s.store.WithinTx(ctx, func(tx Store) error {
		changes = changeSet{}
		return fn(tx, &changes)
	})
	if err != nil {
		prometheus.RecordCatalogOperation(op, "error")
		return err
	}
	prometheus.RecordCatalogOperation(op, "ok")
	s.dispatch(ctx, changes.events)
	return nil
}

// dispatch failures are logged only: the operation has already committed
func (s *Service) dispatch(ctx context.Context, events []model.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, e := range events {
		if err := s.dispatcher.Dispatch(ctx, e); err != nil {
			s.log.Warn("Failed to dispatch catalog event",
				zap.String("event", e.Type()),
				zap.Error(err))
		}
	}
}

func validateVariantValues(price *decimal.Decimal, stock *int, status *model.VariantStatus) error {
	if stock != nil && *stock < 0 {
		return NewInvalidStockValueError(*stock)
	}
	if price != nil && !price.IsPositive() {
		return NewInvalidFieldError("price", "must be greater than 0", price.String())
	}
	if status != nil && !status.Valid() {
		return NewInvalidFieldError("status", "unknown variant status", string(*status))
	}
	return nil
}

// CreateVariant validates, assigns a SKU to and persists a new variant, then
// recomputes its product's status and the affected counters.
func (s *Service) CreateVariant(ctx context.Context, in CreateVariantInput) (*model.ProductVariant, error) {
	if in.Status == "" {
		in.Status = model.VariantStatusActive
	}
	if err := validateVariantValues(&in.Price, &in.Stock, &in.Status); err != nil {
		return nil, err
	}

	var created *model.ProductVariant
	err := s.mutate(ctx, "create_variant", func(tx Store, changes *changeSet) error {
		refs, err := s.identity.ValidateCreate(ctx, tx, in.ProductID, in.SizeID, in.ColorID)
		if err != nil {
			return err
		}
		sku, err := s.skus.Resolve(ctx, tx, in.SKU, refs.Product.SKU, refs.Color.Name, refs.Size.Name, 0)
		if err != nil {
			return s.skuConflict(err)
		}

		variant := &model.ProductVariant{
			ProductID: in.ProductID,
			SizeID:    in.SizeID,
			ColorID:   in.ColorID,
			SKU:       sku,
			Price:     in.Price,
			Stock:     in.Stock,
			Status:    in.Status,
		}
		if err := s.saveVariant(ctx, tx, variant); err != nil {
			return err
		}
		changes.add(model.VariantCreated{VariantID: variant.ID, ProductID: variant.ProductID, SKU: variant.SKU})

		if err := s.cascadeAndRefresh(ctx, tx, variant.ProductID, VariantCounterTargets(variant), changes); err != nil {
			return err
		}
		created = variant
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Variant created",
		zap.Uint("variant_id", created.ID),
		zap.Uint("product_id", created.ProductID),
		zap.String("sku", created.SKU))
	return created, nil
}

// UpdateVariant applies in to the variant. Moving it to another size or
// color re-validates the slot and regenerates the SKU; otherwise the stored
// SKU is kept verbatim.
func (s *Service) UpdateVariant(ctx context.Context, variantID uint, in UpdateVariantInput) (*model.ProductVariant, error) {
	if err := validateVariantValues(in.Price, in.Stock, in.Status); err != nil {
		return nil, err
	}

	var updated *model.ProductVariant
	err := s.mutate(ctx, "update_variant", func(tx Store, changes *changeSet) error {
		variant, err := s.findVariant(ctx, tx, variantID)
		if err != nil {
			return err
		}
		previous := *variant
		targets := VariantCounterTargets(&previous)

		sizeID, colorID := variant.SizeID, variant.ColorID
		if in.SizeID != nil {
			sizeID = *in.SizeID
		}
		if in.ColorID != nil {
			colorID = *in.ColorID
		}
		if sizeID != variant.SizeID || colorID != variant.ColorID {
			refs, err := s.identity.ValidateRekey(ctx, tx, variantID, sizeID, colorID)
			if err != nil {
				return err
			}
			sku, err := s.skus.Resolve(ctx, tx, "", refs.Product.SKU, refs.Color.Name, refs.Size.Name, variantID)
			if err != nil {
				return s.skuConflict(err)
			}
			variant.SizeID, variant.ColorID, variant.SKU = sizeID, colorID, sku
		}
		if in.Price != nil {
			variant.Price = *in.Price
		}
		if in.Stock != nil {
			variant.Stock = *in.Stock
		}
		if in.Status != nil {
			variant.Status = *in.Status
		}

		if err := s.saveVariant(ctx, tx, variant); err != nil {
			return err
		}
		changes.add(model.VariantUpdated{
			VariantID: variant.ID,
			ProductID: variant.ProductID,
			OldSKU:    previous.SKU,
			NewSKU:    variant.SKU,
		})

		targets = append(targets, VariantCounterTargets(variant)...)
		if err := s.cascadeAndRefresh(ctx, tx, variant.ProductID, targets, changes); err != nil {
			return err
		}
		updated = variant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVariant soft-deletes a variant by marking it INACTIVE
func (s *Service) DeleteVariant(ctx context.Context, variantID uint) error {
	return s.mutate(ctx, "delete_variant", func(tx Store, changes *changeSet) error {
		variant, err := s.findVariant(ctx, tx, variantID)
		if err != nil {
			return err
		}
		if variant.Status != model.VariantStatusInactive {
			variant.Status = model.VariantStatusInactive
			if err := s.saveVariant(ctx, tx, variant); err != nil {
				return err
			}
			changes.add(model.VariantDeleted{VariantID: variant.ID, ProductID: variant.ProductID, SKU: variant.SKU})
		}
		return s.cascadeAndRefresh(ctx, tx, variant.ProductID, VariantCounterTargets(variant), changes)
	})
}

// cascadeAndRefresh recomputes the product status and refreshes targets.
// A status flip changes whether the product is counted anywhere, so every
// counter of the product is refreshed in that case.
func (s *Service) cascadeAndRefresh(ctx context.Context, tx Store, productID uint, targets []model.CounterTarget, changes *changeSet) error {
	outcome, err := s.cascade.RecomputeProductStatus(ctx, tx, productID)
	if err != nil {
		return err
	}
	changes.status(outcome)

	if outcome.Changed {
		productTargets, err := s.counters.ProductCounterTargets(ctx, tx, productID)
		if err != nil {
			return err
		}
		targets = append(targets, productTargets...)
	}
	refreshed, err := s.counters.Refresh(ctx, tx, targets...)
	if err != nil {
		return err
	}
	changes.counters(refreshed)
	return nil
}

func (s *Service) findVariant(ctx context.Context, tx Store, variantID uint) (*model.ProductVariant, error) {
	variant, err := tx.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewVariantNotFoundError(variantID)
		}
		return nil, fmt.Errorf("failed to load variant %d: %w", variantID, err)
	}
	return variant, nil
}

// saveVariant translates storage-level unique violations, which is how a
// lost race with a concurrent insert surfaces.
func (s *Service) saveVariant(ctx context.Context, tx Store, variant *model.ProductVariant) error {
	err := tx.SaveVariant(ctx, variant)
	if err == nil {
		return nil
	}
	var unique *UniqueViolationError
	if errors.As(err, &unique) {
		switch unique.Constraint {
		case ConstraintVariantSKU:
			return s.skuConflict(NewDuplicateSkuError(variant.SKU))
		case ConstraintVariantIdentity:
			return NewDuplicateVariantError(variant.ProductID, variant.SizeID, variant.ColorID)
		}
	}
	return fmt.Errorf("failed to save variant: %w", err)
}

func (s *Service) skuConflict(err error) error {
	if IsDuplicateSkuError(err) {
		prometheus.RecordSKUConflict()
	}
	return err
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewInvalidFieldError("name", "cannot be empty", in.Name)
	}
	if len(in.Name) > 200 {
		return NewInvalidFieldError("name", "must not exceed 200 characters", in.Name)
	}
	code := strings.TrimSpace(in.SKU)
	if code == "" {
		return NewInvalidFieldError("sku", "cannot be empty", in.SKU)
	}
	if len(code) > 50 {
		return NewInvalidFieldError("sku", "must not exceed 50 characters", in.SKU)
	}
	return nil
}

func (s *Service) checkProductRefs(ctx context.Context, tx Store, in ProductInput) error {
	if in.BrandID != nil {
		if _, err := tx.FindBrandByID(ctx, *in.BrandID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return NewBrandNotFoundError(*in.BrandID)
			}
			return fmt.Errorf("failed to load brand %d: %w", *in.BrandID, err)
		}
	}
	ids := in.CategoryIDs
	if in.CategoryID != nil {
		ids = append([]uint{*in.CategoryID}, ids...)
	}
	for _, id := range ids {
		if _, err := tx.FindCategoryByID(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return NewCategoryNotFoundError(id)
			}
			return fmt.Errorf("failed to load category %d: %w", id, err)
		}
	}
	return nil
}

func applyProductInput(p *model.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.SKU = strings.TrimSpace(in.SKU)
	p.CategoryID = in.CategoryID
	p.BrandID = in.BrandID
	p.Gender = in.Gender
}

func (s *Service) saveProduct(ctx context.Context, tx Store, product *model.Product) error {
	if err := tx.SaveProduct(ctx, product); err != nil {
		var unique *UniqueViolationError
		if errors.As(err, &unique) && unique.Constraint == ConstraintProductSKU {
			return fmt.Errorf("product code %s already in use: %w", product.SKU, err)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// CreateProduct persists a new product and refreshes the counters it joins
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.ProductStatusActive
	}
	if !in.Status.Valid() {
		return nil, NewInvalidFieldError("status", "unknown product status", string(in.Status))
	}

	var created *model.Product
	err := s.mutate(ctx, "create_product", func(tx Store, changes *changeSet) error {
		if err := s.checkProductRefs(ctx, tx, in); err != nil {
			return err
		}
		product := &model.Product{Status: in.Status}
		applyProductInput(product, in)
		if err := s.saveProduct(ctx, tx, product); err != nil {
			return err
		}
		if err := tx.ReplaceProductCategories(ctx, product.ID, in.CategoryIDs); err != nil {
			return fmt.Errorf("failed to save categories of product %d: %w", product.ID, err)
		}

		refreshed, err := s.counters.RefreshCountersForProduct(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		changes.counters(refreshed)
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Product created",
		zap.Uint("product_id", created.ID),
		zap.String("sku", created.SKU))
	return created, nil
}

// UpdateProduct replaces the editable fields of a product. Counters of both
// the old and the new brand/categories are refreshed. Status is not touched;
// use SetProductStatus.
func (s *Service) UpdateProduct(ctx context.Context, productID uint, in ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.mutate(ctx, "update_product", func(tx Store, changes *changeSet) error {
		product, err := s.findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := s.checkProductRefs(ctx, tx, in); err != nil {
			return err
		}
		before, err := s.counters.ProductCounterTargets(ctx, tx, productID)
		if err != nil {
			return err
		}

		applyProductInput(product, in)
		if err := s.saveProduct(ctx, tx, product); err != nil {
			return err
		}
		if err := tx.ReplaceProductCategories(ctx, productID, in.CategoryIDs); err != nil {
			return fmt.Errorf("failed to save categories of product %d: %w", productID, err)
		}

		after, err := s.counters.ProductCounterTargets(ctx, tx, productID)
		if err != nil {
			return err
		}
		refreshed, err := s.counters.Refresh(ctx, tx, append(before, after...)...)
		if err != nil {
			return err
		}
		changes.counters(refreshed)
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetProductStatus is the explicit administrative override of a product's
// status. ACTIVE and OUT_OF_STOCK are re-derived from the variants straight
// away; INACTIVE and DISCONTINUED are stored as given.
func (s *Service) SetProductStatus(ctx context.Context, productID uint, status model.ProductStatus) (*model.Product, error) {
	if !status.Valid() {
		return nil, NewInvalidFieldError("status", "unknown product status", string(status))
	}

	var result *model.Product
	err := s.mutate(ctx, "set_product_status", func(tx Store, changes *changeSet) error {
		product, err := s.findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		previous := product.Status
		if previous != status {
			product.Status = status
			if err := s.saveProduct(ctx, tx, product); err != nil {
				return err
			}
		}

		final := status
		if status == model.ProductStatusActive || status == model.ProductStatusOutOfStock {
			outcome, err := s.cascade.RecomputeProductStatus(ctx, tx, productID)
			if err != nil {
				return err
			}
			final = outcome.Current
		}
		if final != previous {
			changes.add(model.ProductStatusChanged{ProductID: productID, From: previous, To: final})
		}

		refreshed, err := s.counters.RefreshCountersForProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		changes.counters(refreshed)

		result, err = s.findProduct(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteProduct soft-deletes a product together with its variants. A
// DISCONTINUED product keeps that status.
func (s *Service) DeleteProduct(ctx context.Context, productID uint) error {
	return s.mutate(ctx, "delete_product", func(tx Store, changes *changeSet) error {
		product, err := s.findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		variants, err := tx.ListVariantsByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to list variants of product %d: %w", productID, err)
		}
		for i := range variants {
			v := &variants[i]
			if v.Status == model.VariantStatusInactive {
				continue
			}
			v.Status = model.VariantStatusInactive
			if err := s.saveVariant(ctx, tx, v); err != nil {
				return err
			}
			changes.add(model.VariantDeleted{VariantID: v.ID, ProductID: productID, SKU: v.SKU})
		}

		if product.Status != model.ProductStatusInactive && product.Status != model.ProductStatusDiscontinued {
			changes.add(model.ProductStatusChanged{ProductID: productID, From: product.Status, To: model.ProductStatusInactive})
			product.Status = model.ProductStatusInactive
			if err := s.saveProduct(ctx, tx, product); err != nil {
				return err
			}
		}

		refreshed, err := s.counters.RefreshCountersForProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		changes.counters(refreshed)
		return nil
	})
}

func (s *Service) findProduct(ctx context.Context, tx Store, productID uint) (*model.Product, error) {
	product, err := tx.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewProductNotFoundError(productID)
		}
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	return product, nil
}

// RecomputeProductStatus recomputes one product's status in its own transaction
func (s *Service) RecomputeProductStatus(ctx context.Context, productID uint) (StatusOutcome, error) {
	var outcome StatusOutcome
	err := s.mutate(ctx, "recompute_product_status", func(tx Store, changes *changeSet) error {
		var err error
		if outcome, err = s.cascade.RecomputeProductStatus(ctx, tx, productID); err != nil {
			return err
		}
		changes.status(outcome)
		if !outcome.Changed {
			return nil
		}
		refreshed, err := s.counters.RefreshCountersForProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		changes.counters(refreshed)
		return nil
	})
	return outcome, err
}

// RecomputeAllProductStatuses repairs the status of every product; see StatusCascade.RecomputeAll
func (s *Service) RecomputeAllProductStatuses(ctx context.Context) (BulkStatusResult, error) {
	result, err := s.cascade.RecomputeAll(ctx, s.store, s.pageSize, func(ctx context.Context, tx Store, o StatusOutcome) error {
		_, err := s.counters.RefreshCountersForProduct(ctx, tx, o.ProductID)
		return err
	})

	var changes changeSet
	for _, o := range result.Changes {
		changes.status(o)
	}
	s.dispatch(ctx, changes.events)

	s.log.Info("Product status repair finished",
		zap.Int("processed", result.Processed),
		zap.Int("changed", result.Changed),
		zap.Uint("last_id", result.LastID),
		zap.Error(err))
	return result, err
}

// RefreshAllCounters repairs every denormalized product count
func (s *Service) RefreshAllCounters(ctx context.Context) (BulkCounterResult, error) {
	result, err := s.counters.RefreshAll(ctx, s.store)

	var changes changeSet
	changes.counters(result.Changes)
	s.dispatch(ctx, changes.events)

	s.log.Info("Counter repair finished",
		zap.Int("processed", result.Processed),
		zap.Int("changed", result.Changed),
		zap.Error(err))
	return result, err
}

// FindVariantBySKU looks a variant up by its SKU
func (s *Service) FindVariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	variant, err := s.store.FindVariantBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &VariantNotFoundError{SKU: sku}
		}
		return nil, fmt.Errorf("failed to load variant %s: %w", sku, err)
	}
	return variant, nil
}

// VariantStats returns the variant count, total stock and average price of a product
func (s *Service) VariantStats(ctx context.Context, productID uint) (model.VariantStats, error) {
	if _, err := s.findProduct(ctx, s.store, productID); err != nil {
		return model.VariantStats{}, err
	}
	stats, err := s.store.VariantStats(ctx, productID)
	if err != nil {
		return model.VariantStats{}, fmt.Errorf("failed to compute variant stats of product %d: %w", productID, err)
	}
	return stats, nil
}

const maxImageSize = 5 << 20

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageKey builds the blob key of a variant image
func ImageKey(productID uint, ext string) string {
	return fmt.Sprintf("variants/%d/%s%s", productID, uuid.NewString(), ext)
}

// AttachVariantImage uploads img and points the variant at it. The new blob
// is removed again when the database write fails; the replaced one is removed
// only after commit.
func (s *Service) AttachVariantImage(ctx context.Context, variantID uint, img ImageUpload) (*model.ProductVariant, error) {
	if s.blobs == nil {
		return nil, errors.New("image storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	contentType, ok := imageExtensions[ext]
	if !ok {
		return nil, NewInvalidFieldError("image", "unsupported file extension", img.Filename)
	}
	if img.Size <= 0 || img.Size > maxImageSize {
		return nil, NewInvalidFieldError("image", "size must be between 1 byte and 5MB", strconv.FormatInt(img.Size, 10))
	}
	if img.ContentType != "" {
		contentType = img.ContentType
	}

	variant, err := s.findVariant(ctx, s.store, variantID)
	if err != nil {
		return nil, err
	}

	key := ImageKey(variant.ProductID, ext)
	if err := s.blobs.Put(ctx, key, img.Body, img.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload image of variant %d: %w", variantID, err)
	}

	var replaced string
	var updated *model.ProductVariant
	err = s.mutate(ctx, "attach_variant_image", func(tx Store, changes *changeSet) error {
		v, err := s.findVariant(ctx, tx, variantID)
		if err != nil {
			return err
		}
		replaced = v.ImagePath
		v.ImagePath = key
		if err := s.saveVariant(ctx, tx, v); err != nil {
			return err
		}
		changes.add(model.VariantUpdated{VariantID: v.ID, ProductID: v.ProductID, OldSKU: v.SKU, NewSKU: v.SKU})
		updated = v
		return nil
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Warn("Failed to remove orphaned image",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return nil, err
	}

	if replaced != "" && replaced != key {
		if err := s.blobs.Delete(ctx, replaced); err != nil {
			s.log.Warn("Failed to remove replaced image",
				zap.String("key", replaced),
				zap.Error(err))
		}
	}
	return updated, nil
}

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Store when the requested row does not exist.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrProductHasNoVariants marks a status recomputation that left the product untouched
	// because it has no variants. It is informational and never returned as a failure.
	ErrProductHasNoVariants = errors.New("catalog: product has no variants")
)

// ProductNotFoundError is returned when a referenced product does not exist
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%d", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// SizeNotFoundError is returned when a referenced size does not exist
type SizeNotFoundError struct {
	SizeID uint
}

func (e *SizeNotFoundError) Error() string {
	return fmt.Sprintf("size not found: id=%d", e.SizeID)
}

// Is allows proper error type checking with errors.Is()
func (e *SizeNotFoundError) Is(target error) bool {
	_, ok := target.(*SizeNotFoundError)
	return ok
}

// ColorNotFoundError is returned when a referenced color does not exist
type ColorNotFoundError struct {
	ColorID uint
}

func (e *ColorNotFoundError) Error() string {
	return fmt.Sprintf("color not found: id=%d", e.ColorID)
}

// Is allows proper error type checking with errors.Is()
func (e *ColorNotFoundError) Is(target error) bool {
	_, ok := target.(*ColorNotFoundError)
	return ok
}

// VariantNotFoundError is returned when a referenced variant does not exist
type VariantNotFoundError struct {
	VariantID uint
	SKU       string
}

func (e *VariantNotFoundError) Error() string {
	if e.SKU != "" {
		return fmt.Sprintf("variant not found: sku=%s", e.SKU)
	}
	return fmt.Sprintf("variant not found: id=%d", e.VariantID)
}

// Is allows proper error type checking with errors.Is()
func (e *VariantNotFoundError) Is(target error) bool {
	_, ok := target.(*VariantNotFoundError)
	return ok
}

// CategoryNotFoundError is returned when a product references a missing category
type CategoryNotFoundError struct {
	CategoryID uint
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category not found: id=%d", e.CategoryID)
}

// Is allows proper error type checking with errors.Is()
func (e *CategoryNotFoundError) Is(target error) bool {
	_, ok := target.(*CategoryNotFoundError)
	return ok
}

// BrandNotFoundError is returned when a product references a missing brand
type BrandNotFoundError struct {
	BrandID uint
}

func (e *BrandNotFoundError) Error() string {
	return fmt.Sprintf("brand not found: id=%d", e.BrandID)
}

// Is allows proper error type checking with errors.Is()
func (e *BrandNotFoundError) Is(target error) bool {
	_, ok := target.(*BrandNotFoundError)
	return ok
}

// DuplicateVariantError is returned when a variant already occupies the
// (product, size, color) slot. Soft-deleted variants still occupy their slot.
type DuplicateVariantError struct {
	ProductID uint
	SizeID    uint
	ColorID   uint
}

func (e *DuplicateVariantError) Error() string {
	return fmt.Sprintf("duplicate variant: product=%d size=%d color=%d already exists",
		e.ProductID, e.SizeID, e.ColorID)
}

// Is allows proper error type checking with errors.Is()
func (e *DuplicateVariantError) Is(target error) bool {
	_, ok := target.(*DuplicateVariantError)
	return ok
}

// DuplicateSkuError is returned when a variant SKU is already taken
type DuplicateSkuError struct {
	SKU string
}

func (e *DuplicateSkuError) Error() string {
	return fmt.Sprintf("duplicate sku: %s already exists", e.SKU)
}

// Is allows proper error type checking with errors.Is()
func (e *DuplicateSkuError) Is(target error) bool {
	_, ok := target.(*DuplicateSkuError)
	return ok
}

// InvalidStockValueError is returned for negative stock
type InvalidStockValueError struct {
	Stock int
}

func (e *InvalidStockValueError) Error() string {
	return fmt.Sprintf("invalid stock value: %d (must be non-negative)", e.Stock)
}

// Is allows proper error type checking with errors.Is()
func (e *InvalidStockValueError) Is(target error) bool {
	_, ok := target.(*InvalidStockValueError)
	return ok
}

// InvalidFieldError is returned when an input field fails validation
type InvalidFieldError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *InvalidFieldError) Is(target error) bool {
	_, ok := target.(*InvalidFieldError)
	return ok
}

// UniqueViolationError is returned by a Store when a write breaks a
// storage-level unique constraint.
type UniqueViolationError struct {
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint violated: %s", e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error {
	return e.Err
}

// Unique constraint names shared by every Store implementation
const (
	ConstraintVariantSKU      = "uq_product_variants_sku"
	ConstraintVariantIdentity = "uq_product_variants_identity"
	ConstraintProductSKU      = "uq_products_sku"
)

// Helper functions for creating errors with context

func NewProductNotFoundError(productID uint) error {
	return &ProductNotFoundError{ProductID: productID}
}

func NewSizeNotFoundError(sizeID uint) error {
	return &SizeNotFoundError{SizeID: sizeID}
}

func NewColorNotFoundError(colorID uint) error {
	return &ColorNotFoundError{ColorID: colorID}
}

func NewVariantNotFoundError(variantID uint) error {
	return &VariantNotFoundError{VariantID: variantID}
}

func NewCategoryNotFoundError(categoryID uint) error {
	return &CategoryNotFoundError{CategoryID: categoryID}
}

func NewBrandNotFoundError(brandID uint) error {
	return &BrandNotFoundError{BrandID: brandID}
}

func NewDuplicateVariantError(productID, sizeID, colorID uint) error {
	return &DuplicateVariantError{ProductID: productID, SizeID: sizeID, ColorID: colorID}
}

func NewDuplicateSkuError(sku string) error {
	return &DuplicateSkuError{SKU: sku}
}

func NewInvalidStockValueError(stock int) error {
	return &InvalidStockValueError{Stock: stock}
}

func NewInvalidFieldError(field, reason string, value interface{}) error {
	return &InvalidFieldError{Field: field, Reason: reason, Value: value}
}

// Type assertion helpers for use with errors.As()

func IsProductNotFoundError(err error) bool {
	var e *ProductNotFoundError
	return errors.As(err, &e)
}

func IsSizeNotFoundError(err error) bool {
	var e *SizeNotFoundError
	return errors.As(err, &e)
}

func IsColorNotFoundError(err error) bool {
	var e *ColorNotFoundError
	return errors.As(err, &e)
}

func IsVariantNotFoundError(err error) bool {
	var e *VariantNotFoundError
	return errors.As(err, &e)
}

func IsDuplicateVariantError(err error) bool {
	var e *DuplicateVariantError
	return errors.As(err, &e)
}

func IsDuplicateSkuError(err error) bool {
	var e *DuplicateSkuError
	return errors.As(err, &e)
}

func IsInvalidStockValueError(err error) bool {
	var e *InvalidStockValueError
	return errors.As(err, &e)
}

func IsInvalidFieldError(err error) bool {
	var e *InvalidFieldError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is any of the catalog's not-found errors
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var (
		categoryErr *CategoryNotFoundError
		brandErr    *BrandNotFoundError
	)
	return IsProductNotFoundError(err) || IsSizeNotFoundError(err) || IsColorNotFoundError(err) ||
		IsVariantNotFoundError(err) || errors.As(err, &categoryErr) || errors.As(err, &brandErr)
}

// IsConflict reports whether err is a uniqueness conflict
func IsConflict(err error) bool {
	var unique *UniqueViolationError
	return IsDuplicateVariantError(err) || IsDuplicateSkuError(err) || errors.As(err, &unique)
}

// IsInvalidInput reports whether err was caused by invalid caller input
func IsInvalidInput(err error) bool {
	return IsInvalidStockValueError(err) || IsInvalidFieldError(err)
}

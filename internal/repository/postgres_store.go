package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE of unique_violation
const pgUniqueViolation = "23505"

// PostgresStore implements catalog.Store on top of gorm and PostgreSQL
type PostgresStore struct {
	db   *gorm.DB
	inTx bool
}

var _ catalog.Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open gorm connection
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresStore{db: tx, inTx: true})
	})
}

func (s *PostgresStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translateError maps driver errors onto the catalog error contract
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", catalog.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &catalog.UniqueViolationError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

func first(db *gorm.DB, dest interface{}, conds ...interface{}) error {
	return translateError(db.First(dest, conds...).Error)
}

func (s *PostgresStore) FindProductByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := first(s.conn(ctx), &product, id); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *PostgresStore) FindSizeByID(ctx context.Context, id uint) (*model.Size, error) {
	var size model.Size
	if err := first(s.conn(ctx), &size, id); err != nil {
		return nil, err
	}
	return &size, nil
}

func (s *PostgresStore) FindColorByID(ctx context.Context, id uint) (*model.Color, error) {
	var color model.Color
	if err := first(s.conn(ctx), &color, id); err != nil {
		return nil, err
	}
	return &color, nil
}

func (s *PostgresStore) FindCategoryByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := first(s.conn(ctx), &category, id); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *PostgresStore) FindBrandByID(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := first(s.conn(ctx), &brand, id); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *PostgresStore) FindVariantByID(ctx context.Context, id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := first(s.conn(ctx), &variant, id); err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *PostgresStore) FindVariantByProductSizeColor(ctx context.Context, productID, sizeID, colorID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := first(s.conn(ctx).Where("product_id = ? AND size_id = ? AND color_id = ?", productID, sizeID, colorID), &variant)
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *PostgresStore) FindVariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := first(s.conn(ctx).Where("sku = ?", sku), &variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *PostgresStore) ListVariantsByProduct(ctx context.Context, productID uint) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := s.conn(ctx).Where("product_id = ?", productID).Order("id").Find(&variants).Error
	return variants, translateError(err)
}

func (s *PostgresStore) ListProductIDs(ctx context.Context, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&model.Product{}).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (s *PostgresStore) ListCategoryIDsByProduct(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&model.ProductCategory{}).
		Where("product_id = ?", productID).
		Order("category_id").
		Pluck("category_id", &ids).Error
	return ids, translateError(err)
}

func (s *PostgresStore) ListCounterOwnerIDs(ctx context.Context, kind model.CounterKind) ([]uint, error) {
	owner, err := counterModel(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = s.conn(ctx).Model(owner).Order("id").Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (s *PostgresStore) SaveProduct(ctx context.Context, product *model.Product) error {
	return translateError(s.conn(ctx).Save(product).Error)
}

func (s *PostgresStore) SaveVariant(ctx context.Context, variant *model.ProductVariant) error {
	return translateError(s.conn(ctx).Save(variant).Error)
}

func (s *PostgresStore) SaveSize(ctx context.Context, size *model.Size) error {
	return translateError(s.conn(ctx).Save(size).Error)
}

func (s *PostgresStore) SaveColor(ctx context.Context, color *model.Color) error {
	return translateError(s.conn(ctx).Save(color).Error)
}

func (s *PostgresStore) SaveCategory(ctx context.Context, category *model.Category) error {
	return translateError(s.conn(ctx).Save(category).Error)
}

func (s *PostgresStore) SaveBrand(ctx context.Context, brand *model.Brand) error {
	return translateError(s.conn(ctx).Save(brand).Error)
}

func (s *PostgresStore) ReplaceProductCategories(ctx context.Context, productID uint, categoryIDs []uint) error {
	db := s.conn(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&model.ProductCategory{}).Error; err != nil {
		return translateError(err)
	}
	rows := make([]model.ProductCategory, 0, len(categoryIDs))
	for _, id := range uniqueIDs(categoryIDs) {
		rows = append(rows, model.ProductCategory{ProductID: productID, CategoryID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return translateError(db.Create(&rows).Error)
}

func (s *PostgresStore) CountVariantsByProduct(ctx context.Context, productID uint, statuses ...model.VariantStatus) (int64, error) {
	q := s.conn(ctx).Model(&model.ProductVariant{}).Where("product_id = ?", productID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", variantStatusStrings(statuses))
	}
	var count int64
	err := q.Count(&count).Error
	return count, translateError(err)
}

func (s *PostgresStore) CountActiveVariantsByProduct(ctx context.Context, productID uint) (int64, error) {
	return s.CountVariantsByProduct(ctx, productID, model.VariantStatusActive)
}

func (s *PostgresStore) SumActiveStockByProduct(ctx context.Context, productID uint) (int64, error) {
	var sum int64
	err := s.conn(ctx).Model(&model.ProductVariant{}).
		Select("COALESCE(SUM(stock), 0)").
		Where("product_id = ? AND status = ?", productID, string(model.VariantStatusActive)).
		Scan(&sum).Error
	return sum, translateError(err)
}

func (s *PostgresStore) VariantStats(ctx context.Context, productID uint) (model.VariantStats, error) {
	var row struct {
		VariantCount int64
		TotalStock   int64
		AveragePrice decimal.NullDecimal
	}
	err := s.conn(ctx).Model(&model.ProductVariant{}).
		Select("COUNT(*) AS variant_count, COALESCE(SUM(stock), 0) AS total_stock, AVG(price) AS average_price").
		Where("product_id = ? AND status <> ?", productID, string(model.VariantStatusInactive)).
		Scan(&row).Error
	if err != nil {
		return model.VariantStats{}, translateError(err)
	}
	stats := model.VariantStats{
		ProductID:    productID,
		VariantCount: row.VariantCount,
		TotalStock:   row.TotalStock,
		AveragePrice: decimal.Zero,
	}
	if row.AveragePrice.Valid {
		stats.AveragePrice = row.AveragePrice.Decimal.Round(2)
	}
	return stats, nil
}

func (s *PostgresStore) CountDistinctActiveProductsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Raw(`
		SELECT COUNT(DISTINCT p.id)
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		WHERE (p.category_id = ? OR pc.category_id = ?)
		  AND p.status NOT IN ?`,
		categoryID, categoryID, uncountedStatuses()).
		Scan(&count).Error
	return count, translateError(err)
}

func (s *PostgresStore) CountDistinctActiveProductsByBrand(ctx context.Context, brandID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&model.Product{}).
		Where("brand_id = ? AND status NOT IN ?", brandID, uncountedStatuses()).
		Count(&count).Error
	return count, translateError(err)
}

func (s *PostgresStore) CountDistinctActiveProductsBySize(ctx context.Context, sizeID uint) (int64, error) {
	return s.countProductsByVariantColumn(ctx, "size_id", sizeID)
}

func (s *PostgresStore) CountDistinctActiveProductsByColor(ctx context.Context, colorID uint) (int64, error) {
	return s.countProductsByVariantColumn(ctx, "color_id", colorID)
}

// column is one of the two fixed identifiers above, never caller input
func (s *PostgresStore) countProductsByVariantColumn(ctx context.Context, column string, id uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Raw(`
		SELECT COUNT(DISTINCT v.product_id)
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.`+column+` = ?
		  AND v.status = ?
		  AND p.status NOT IN ?`,
		id, string(model.VariantStatusActive), uncountedStatuses()).
		Scan(&count).Error
	return count, translateError(err)
}

func (s *PostgresStore) UpdateProductCount(ctx context.Context, target model.CounterTarget, count int64) (bool, error) {
	owner, err := counterModel(target.Kind)
	if err != nil {
		return false, err
	}
	res := s.conn(ctx).Model(owner).
		Where("id = ? AND product_count <> ?", target.ID, count).
		Update("product_count", count)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func counterModel(kind model.CounterKind) (interface{}, error) {
	switch kind {
	case model.CounterCategory:
		return &model.Category{}, nil
	case model.CounterBrand:
		return &model.Brand{}, nil
	case model.CounterSize:
		return &model.Size{}, nil
	case model.CounterColor:
		return &model.Color{}, nil
	}
	return nil, fmt.Errorf("unknown counter kind %q", kind)
}

func uncountedStatuses() []string {
	out := make([]string, len(model.UncountedProductStatuses))
	for i, s := range model.UncountedProductStatuses {
		out[i] = string(s)
	}
	return out
}

func variantStatusStrings(statuses []model.VariantStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

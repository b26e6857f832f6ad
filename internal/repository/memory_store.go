package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

// MemoryStore implements catalog.Store in process memory. Transactions are
// serialized: WithinTx holds the store lock, works on a copy of the state and
// swaps it in only when fn succeeds. Calls made outside a transaction lock
// per call.
type MemoryStore struct {
	root *memoryRoot
	tx   *memState
}

var _ catalog.Store = (*MemoryStore)(nil)

type memoryRoot struct {
	mu     sync.Mutex
	state  *memState
	faults map[string]error
}

type memState struct {
	lastID            map[string]uint
	products          map[uint]model.Product
	variants          map[uint]model.ProductVariant
	sizes             map[uint]model.Size
	colors            map[uint]model.Color
	categories        map[uint]model.Category
	brands            map[uint]model.Brand
	productCategories map[uint][]uint
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: &memoryRoot{
		state: &memState{
			lastID:            map[string]uint{},
			products:          map[uint]model.Product{},
			variants:          map[uint]model.ProductVariant{},
			sizes:             map[uint]model.Size{},
			colors:            map[uint]model.Color{},
			categories:        map[uint]model.Category{},
			brands:            map[uint]model.Brand{},
			productCategories: map[uint][]uint{},
		},
		faults: map[string]error{},
	}}
}

// FailNext makes the next call of the named Store method fail with err
func (s *MemoryStore) FailNext(method string, err error) {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	s.root.faults[method] = err
}

func (s *MemoryStore) fault(method string) error {
	err, ok := s.root.faults[method]
	if !ok {
		return nil
	}
	delete(s.root.faults, method)
	return err
}

func (st *memState) clone() *memState {
	c := &memState{
		lastID:            make(map[string]uint, len(st.lastID)),
		products:          make(map[uint]model.Product, len(st.products)),
		variants:          make(map[uint]model.ProductVariant, len(st.variants)),
		sizes:             make(map[uint]model.Size, len(st.sizes)),
		colors:            make(map[uint]model.Color, len(st.colors)),
		categories:        make(map[uint]model.Category, len(st.categories)),
		brands:            make(map[uint]model.Brand, len(st.brands)),
		productCategories: make(map[uint][]uint, len(st.productCategories)),
	}
	for k, v := range st.lastID {
		c.lastID[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.variants {
		c.variants[k] = v
	}
	for k, v := range st.sizes {
		c.sizes[k] = v
	}
	for k, v := range st.colors {
		c.colors[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.brands {
		c.brands[k] = v
	}
	for k, v := range st.productCategories {
		c.productCategories[k] = append([]uint(nil), v...)
	}
	return c
}

func (st *memState) nextID(table string, id uint) uint {
	if id == 0 {
		id = st.lastID[table] + 1
	}
	if id > st.lastID[table] {
		st.lastID[table] = id
	}
	return id
}

// acquire returns the state the call operates on and the matching release
func (s *MemoryStore) acquire() (*memState, func()) {
	if s.tx != nil {
		return s.tx, func() {}
	}
	s.root.mu.Lock()
	return s.root.state, s.root.mu.Unlock
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	work := s.root.state.clone()
	if err := fn(&MemoryStore{root: s.root, tx: work}); err != nil {
		return err
	}
	s.root.state = work
	return nil
}

func notFound(entity string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", catalog.ErrNotFound, entity, id)
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyProduct(p model.Product) *model.Product {
	p.CategoryID = copyUint(p.CategoryID)
	p.BrandID = copyUint(p.BrandID)
	return &p
}

func (s *MemoryStore) FindProductByID(ctx context.Context, id uint) (*model.Product, error) {
	st, release := s.acquire()
	defer release()
	p, ok := st.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return copyProduct(p), nil
}

func (s *MemoryStore) FindSizeByID(ctx context.Context, id uint) (*model.Size, error) {
	st, release := s.acquire()
	defer release()
	v, ok := st.sizes[id]
	if !ok {
		return nil, notFound("size", id)
	}
	return &v, nil
}

func (s *MemoryStore) FindColorByID(ctx context.Context, id uint) (*model.Color, error) {
	st, release := s.acquire()
	defer release()
	v, ok := st.colors[id]
	if !ok {
		return nil, notFound("color", id)
	}
	return &v, nil
}

func (s *MemoryStore) FindCategoryByID(ctx context.Context, id uint) (*model.Category, error) {
	st, release := s.acquire()
	defer release()
	v, ok := st.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	v.ParentID = copyUint(v.ParentID)
	return &v, nil
}

func (s *MemoryStore) FindBrandByID(ctx context.Context, id uint) (*model.Brand, error) {
	st, release := s.acquire()
	defer release()
	v, ok := st.brands[id]
	if !ok {
		return nil, notFound("brand", id)
	}
	return &v, nil
}

func (s *MemoryStore) FindVariantByID(ctx context.Context, id uint) (*model.ProductVariant, error) {
	st, release := s.acquire()
	defer release()
	v, ok := st.variants[id]
	if !ok {
		return nil, notFound("variant", id)
	}
	return &v, nil
}

func (s *MemoryStore) FindVariantByProductSizeColor(ctx context.Context, productID, sizeID, colorID uint) (*model.ProductVariant, error) {
	st, release := s.acquire()
	defer release()
	for _, v := range st.variants {
		if v.ProductID == productID && v.SizeID == sizeID && v.ColorID == colorID {
			return &v, nil
		}
	}
	return nil, notFound("variant", fmt.Sprintf("%d/%d/%d", productID, sizeID, colorID))
}

func (s *MemoryStore) FindVariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	st, release := s.acquire()
	defer release()
	for _, v := range st.variants {
		if v.SKU == sku {
			return &v, nil
		}
	}
	return nil, notFound("variant", sku)
}

func (s *MemoryStore) ListVariantsByProduct(ctx context.Context, productID uint) ([]model.ProductVariant, error) {
	st, release := s.acquire()
	defer release()
	var out []model.ProductVariant
	for _, v := range st.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListProductIDs(ctx context.Context, afterID uint, limit int) ([]uint, error) {
	st, release := s.acquire()
	defer release()
	var ids []uint
	for id := range st.products {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	ids = sortIDs(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *MemoryStore) ListCategoryIDsByProduct(ctx context.Context, productID uint) ([]uint, error) {
	st, release := s.acquire()
	defer release()
	return sortIDs(append([]uint(nil), st.productCategories[productID]...)), nil
}

func (s *MemoryStore) ListCounterOwnerIDs(ctx context.Context, kind model.CounterKind) ([]uint, error) {
	st, release := s.acquire()
	defer release()
	var ids []uint
	switch kind {
	case model.CounterCategory:
		for id := range st.categories {
			ids = append(ids, id)
		}
	case model.CounterBrand:
		for id := range st.brands {
			ids = append(ids, id)
		}
	case model.CounterSize:
		for id := range st.sizes {
			ids = append(ids, id)
		}
	case model.CounterColor:
		for id := range st.colors {
			ids = append(ids, id)
		}
	default:
		return nil, fmt.Errorf("unknown counter kind %q", kind)
	}
	return sortIDs(ids), nil
}

func (s *MemoryStore) SaveProduct(ctx context.Context, product *model.Product) error {
	st, release := s.acquire()
	defer release()
	if err := s.fault("SaveProduct"); err != nil {
		return err
	}
	for id, p := range st.products {
		if id != product.ID && p.SKU == product.SKU {
			return &catalog.UniqueViolationError{Constraint: catalog.ConstraintProductSKU}
		}
	}

	now := time.Now()
	if existing, ok := st.products[product.ID]; ok && product.ID != 0 {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.ID = st.nextID("products", product.ID)
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	st.products[product.ID] = *copyProduct(*product)
	return nil
}

func (s *MemoryStore) SaveVariant(ctx context.Context, variant *model.ProductVariant) error {
	st, release := s.acquire()
	defer release()
	if err := s.fault("SaveVariant"); err != nil {
		return err
	}
	for id, v := range st.variants {
		if id == variant.ID {
			continue
		}
		if v.SKU == variant.SKU {
			return &catalog.UniqueViolationError{Constraint: catalog.ConstraintVariantSKU}
		}
		if v.ProductID == variant.ProductID && v.SizeID == variant.SizeID && v.ColorID == variant.ColorID {
			return &catalog.UniqueViolationError{Constraint: catalog.ConstraintVariantIdentity}
		}
	}

	now := time.Now()
	if existing, ok := st.variants[variant.ID]; ok && variant.ID != 0 {
		variant.CreatedAt = existing.CreatedAt
	} else {
		variant.ID = st.nextID("product_variants", variant.ID)
		variant.CreatedAt = now
	}
	variant.UpdatedAt = now
	st.variants[variant.ID] = *variant
	return nil
}

func (s *MemoryStore) SaveSize(ctx context.Context, size *model.Size) error {
	st, release := s.acquire()
	defer release()
	now := time.Now()
	if _, ok := st.sizes[size.ID]; !ok || size.ID == 0 {
		size.ID = st.nextID("sizes", size.ID)
		size.CreatedAt = now
	}
	size.UpdatedAt = now
	st.sizes[size.ID] = *size
	return nil
}

func (s *MemoryStore) SaveColor(ctx context.Context, color *model.Color) error {
	st, release := s.acquire()
	defer release()
	now := time.Now()
	if _, ok := st.colors[color.ID]; !ok || color.ID == 0 {
		color.ID = st.nextID("colors", color.ID)
		color.CreatedAt = now
	}
	color.UpdatedAt = now
	st.colors[color.ID] = *color
	return nil
}

func (s *MemoryStore) SaveCategory(ctx context.Context, category *model.Category) error {
	st, release := s.acquire()
	defer release()
	now := time.Now()
	if _, ok := st.categories[category.ID]; !ok || category.ID == 0 {
		category.ID = st.nextID("categories", category.ID)
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	stored := *category
	stored.ParentID = copyUint(category.ParentID)
	st.categories[category.ID] = stored
	return nil
}

func (s *MemoryStore) SaveBrand(ctx context.Context, brand *model.Brand) error {
	st, release := s.acquire()
	defer release()
	now := time.Now()
	if _, ok := st.brands[brand.ID]; !ok || brand.ID == 0 {
		brand.ID = st.nextID("brands", brand.ID)
		brand.CreatedAt = now
	}
	brand.UpdatedAt = now
	st.brands[brand.ID] = *brand
	return nil
}

func (s *MemoryStore) ReplaceProductCategories(ctx context.Context, productID uint, categoryIDs []uint) error {
	st, release := s.acquire()
	defer release()
	ids := uniqueIDs(categoryIDs)
	if len(ids) == 0 {
		delete(st.productCategories, productID)
		return nil
	}
	st.productCategories[productID] = ids
	return nil
}

func (s *MemoryStore) CountVariantsByProduct(ctx context.Context, productID uint, statuses ...model.VariantStatus) (int64, error) {
	st, release := s.acquire()
	defer release()
	var count int64
	for _, v := range st.variants {
		if v.ProductID == productID && statusIn(v.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountActiveVariantsByProduct(ctx context.Context, productID uint) (int64, error) {
	return s.CountVariantsByProduct(ctx, productID, model.VariantStatusActive)
}

func (s *MemoryStore) SumActiveStockByProduct(ctx context.Context, productID uint) (int64, error) {
	st, release := s.acquire()
	defer release()
	var sum int64
	for _, v := range st.variants {
		if v.ProductID == productID && v.Status == model.VariantStatusActive {
			sum += int64(v.Stock)
		}
	}
	return sum, nil
}

func (s *MemoryStore) VariantStats(ctx context.Context, productID uint) (model.VariantStats, error) {
	st, release := s.acquire()
	defer release()
	stats := model.VariantStats{ProductID: productID, AveragePrice: decimal.Zero}
	total := decimal.Zero
	for _, v := range st.variants {
		if v.ProductID != productID || v.Status == model.VariantStatusInactive {
			continue
		}
		stats.VariantCount++
		stats.TotalStock += int64(v.Stock)
		total = total.Add(v.Price)
	}
	if stats.VariantCount > 0 {
		stats.AveragePrice = total.Div(decimal.NewFromInt(stats.VariantCount)).Round(2)
	}
	return stats, nil
}

func (s *MemoryStore) CountDistinctActiveProductsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	st, release := s.acquire()
	defer release()
	var count int64
	for id, p := range st.products {
		if !p.Status.Counted() {
			continue
		}
		if (p.CategoryID != nil && *p.CategoryID == categoryID) || containsID(st.productCategories[id], categoryID) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountDistinctActiveProductsByBrand(ctx context.Context, brandID uint) (int64, error) {
	st, release := s.acquire()
	defer release()
	var count int64
	for _, p := range st.products {
		if p.Status.Counted() && p.BrandID != nil && *p.BrandID == brandID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountDistinctActiveProductsBySize(ctx context.Context, sizeID uint) (int64, error) {
	return s.countProductsByVariant(func(v model.ProductVariant) bool { return v.SizeID == sizeID }), nil
}

func (s *MemoryStore) CountDistinctActiveProductsByColor(ctx context.Context, colorID uint) (int64, error) {
	return s.countProductsByVariant(func(v model.ProductVariant) bool { return v.ColorID == colorID }), nil
}

func (s *MemoryStore) countProductsByVariant(match func(model.ProductVariant) bool) int64 {
	st, release := s.acquire()
	defer release()
	products := map[uint]struct{}{}
	for _, v := range st.variants {
		if v.Status != model.VariantStatusActive || !match(v) {
			continue
		}
		if p, ok := st.products[v.ProductID]; ok && p.Status.Counted() {
			products[v.ProductID] = struct{}{}
		}
	}
	return int64(len(products))
}

func (s *MemoryStore) UpdateProductCount(ctx context.Context, target model.CounterTarget, count int64) (bool, error) {
	st, release := s.acquire()
	defer release()
	if err := s.fault("UpdateProductCount"); err != nil {
		return false, err
	}
	switch target.Kind {
	case model.CounterCategory:
		v, ok := st.categories[target.ID]
		if !ok || v.ProductCount == count {
			return false, nil
		}
		v.ProductCount = count
		st.categories[target.ID] = v
	case model.CounterBrand:
		v, ok := st.brands[target.ID]
		if !ok || v.ProductCount == count {
			return false, nil
		}
		v.ProductCount = count
		st.brands[target.ID] = v
	case model.CounterSize:
		v, ok := st.sizes[target.ID]
		if !ok || v.ProductCount == count {
			return false, nil
		}
		v.ProductCount = count
		st.sizes[target.ID] = v
	case model.CounterColor:
		v, ok := st.colors[target.ID]
		if !ok || v.ProductCount == count {
			return false, nil
		}
		v.ProductCount = count
		st.colors[target.ID] = v
	default:
		return false, fmt.Errorf("unknown counter kind %q", target.Kind)
	}
	return true, nil
}

func statusIn(status model.VariantStatus, statuses []model.VariantStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sortIDs(ids []uint) []uint {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

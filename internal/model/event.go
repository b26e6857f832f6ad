package model

// Event is a catalog change published after a mutation commits
type Event interface {
	Type() string
}

type VariantCreated struct {
	VariantID uint   `json:"variant_id"`
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku"`
}

func (e VariantCreated) Type() string {
	return "VariantCreated"
}

type VariantUpdated struct {
	VariantID uint   `json:"variant_id"`
	ProductID uint   `json:"product_id"`
	OldSKU    string `json:"old_sku"`
	NewSKU    string `json:"new_sku"`
}

func (e VariantUpdated) Type() string {
	return "VariantUpdated"
}

type VariantDeleted struct {
	VariantID uint   `json:"variant_id"`
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku"`
}

func (e VariantDeleted) Type() string {
	return "VariantDeleted"
}

type ProductStatusChanged struct {
	ProductID uint          `json:"product_id"`
	From      ProductStatus `json:"from"`
	To        ProductStatus `json:"to"`
}

func (e ProductStatusChanged) Type() string {
	return "ProductStatusChanged"
}

type ProductCountChanged struct {
	Kind  CounterKind `json:"kind"`
	ID    uint        `json:"id"`
	Count int64       `json:"count"`
}

func (e ProductCountChanged) Type() string {
	return "ProductCountChanged"
}

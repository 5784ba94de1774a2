package model

import (
	"github.com/shopspring/decimal"
)

// Option is a named product dimension. Value order determines title composition and variant order.
type Option struct {
	Name     string   `json:"name"`
	Values   []string `json:"values"`
	Required bool     `json:"required"`
}

type VariantInventory struct {
	Quantity int `json:"quantity"`
}

// Variant is one purchasable combination of option values.
type Variant struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Selection      map[string]string `json:"selection"`
	Price          decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compare_at_price,omitempty"`
	Inventory      VariantInventory  `json:"inventory"`
	SKU            string            `json:"sku"`
	Available      bool              `json:"available"`
	IsDefault      bool              `json:"is_default"`
	Position       int               `json:"position"`
}

type InventoryAggregate struct {
	Quantity int  `json:"quantity"`
	InStock  bool `json:"in_stock"`
}

// Product is both the editable draft and the record exchanged with the catalog service.
type Product struct {
	ID             string             `json:"id,omitempty"`
	MerchantID     string             `json:"merchant_id,omitempty"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	ProductType    string             `json:"product_type"`
	Price          decimal.Decimal    `json:"price"`
	CompareAtPrice *decimal.Decimal   `json:"compare_at_price,omitempty"`
	Options        []Option           `json:"options"`
	Variants       []Variant          `json:"variants"`
	Tags           []string           `json:"tags"`
	Images         []string           `json:"images"`
	Inventory      InventoryAggregate `json:"inventory"`
	SingleQuantity int                `json:"single_quantity"` // stock when the product has no variants
	SizingGuide    *SizingGuide       `json:"sizing_guide,omitempty"`
}

// Clone returns a deep copy so reducers never mutate a caller's snapshot.
func (p Product) Clone() Product {
	out := p
	if p.CompareAtPrice != nil {
		c := *p.CompareAtPrice
		out.CompareAtPrice = &c
	}
	out.Options = make([]Option, len(p.Options))
	for i, o := range p.Options {
		o.Values = append([]string(nil), o.Values...)
		out.Options[i] = o
	}
	out.Variants = make([]Variant, len(p.Variants))
	for i, v := range p.Variants {
		out.Variants[i] = v.Clone()
	}
	out.Tags = append([]string(nil), p.Tags...)
	out.Images = append([]string(nil), p.Images...)
	if p.SizingGuide != nil {
		g := p.SizingGuide.Clone()
		out.SizingGuide = &g
	}
	return out
}

func (v Variant) Clone() Variant {
	out := v
	if v.Selection != nil {
		out.Selection = make(map[string]string, len(v.Selection))
		for k, val := range v.Selection {
			out.Selection[k] = val
		}
	}
	if v.CompareAtPrice != nil {
		c := *v.CompareAtPrice
		out.CompareAtPrice = &c
	}
	return out
}

// VariantByID returns the index of the variant with id, or -1.
func (p *Product) VariantByID(id string) int {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return i
		}
	}
	return -1
}

package draft

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/shopspring/decimal"
)

type EditType string

const (
	SetTitle            EditType = "set_title"
	SetDescription      EditType = "set_description"
	SetProductType      EditType = "set_product_type"
	SetPrice            EditType = "set_price"
	SetOptions          EditType = "set_options"
	SetVariantPrice     EditType = "set_variant_price"
	SetVariantQuantity  EditType = "set_variant_quantity"
	SetVariantSKU       EditType = "set_variant_sku"
	SetVariantAvailable EditType = "set_variant_available"
	SetDefaultVariant   EditType = "set_default_variant"
	SetSingleQuantity   EditType = "set_single_quantity"
	SetTags             EditType = "set_tags"
	SetImages           EditType = "set_images"
	AddImage            EditType = "add_image"
	SetSizingCategory   EditType = "set_sizing_category"
	SetSizeFit          EditType = "set_size_fit"
	SetMeasurementUnit  EditType = "set_measurement_unit"
	SetMeasurement      EditType = "set_measurement"
)

// Edit is one seller action against a draft. Only the fields relevant to Type are read.
type Edit struct {
	Type           EditType         `json:"type"`
	Value          string           `json:"value,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Options        []model.Option   `json:"options,omitempty"`
	VariantID      string           `json:"variant_id,omitempty"`
	Quantity       *int             `json:"quantity,omitempty"`
	Available      *bool            `json:"available,omitempty"`
	Values         []string         `json:"values,omitempty"`
	Size           string           `json:"size,omitempty"`
	Column         string           `json:"column,omitempty"`
	Measurement    *float64         `json:"measurement,omitempty"`
}

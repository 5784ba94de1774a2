package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/draft"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type CreateItemInput struct {
	MerchantID string
	// SourceProductID seeds the draft from a published catalog product (duplicate/edit flow).
	SourceProductID string
	Product         *model.Product
}

type EditItemInput struct {
	ID         string
	MerchantID string
	Edits      []draft.Edit
}

type DiscardItemInput struct {
	ID         string
	MerchantID string
	Reason     string
}

type UploadMediaInput struct {
	ItemID      string
	MerchantID  string
	Filename    string
	ContentType string
	Data        []byte
}

type BulkSizingInput struct {
	MerchantID      string
	ProductIDs      []string
	Category        string
	SizeFit         string
	MeasurementUnit model.MeasurementUnit
	SizeChart       model.SizeChart
}

// CatalogEditInput edits a product that is already live in the catalog.
type CatalogEditInput struct {
	MerchantID string
	ProductID  string
	Edits      []draft.Edit
}

package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
)

type ItemFilters struct {
	MerchantID      string
	Status          model.QueueStatus
	IncludeTerminal bool
	SearchQuery     string // title search
	Page            int
	PageSize        int
}

// ItemResult pairs a queue item with the structured issues behind its error strings.
type ItemResult struct {
	Item   *model.QueueItem
	Issues []validation.Issue
}

type CatalogListing struct {
	Products []model.Product
	Pages    int
	Partial  bool
	Error    string
}

type BulkSizingResult struct {
	SizingGuide model.SizingGuide
	Sizes       []string
	Updated     int
}

// CatalogProductResult carries the edited product. Saved is false when issues blocked the update.
type CatalogProductResult struct {
	Product model.Product
	Issues  []validation.Issue
	Saved   bool
}

package queue

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*dto.ItemResult, error)
	GetItem(ctx context.Context, merchantID, id string) (*dto.ItemResult, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.QueueItem, int, error)
	EditItem(ctx context.Context, input *dto.EditItemInput) (*dto.ItemResult, error)
	Revalidate(ctx context.Context, merchantID, id string) (*dto.ItemResult, error)

	// Lifecycle
	PublishItem(ctx context.Context, merchantID, id string) (*model.QueueItem, error)
	DiscardItem(ctx context.Context, input *dto.DiscardItemInput) (*model.QueueItem, error)

	UploadMedia(ctx context.Context, input *dto.UploadMediaInput) (*dto.ItemResult, error)
	BulkUpdateSizing(ctx context.Context, input *dto.BulkSizingInput) (*dto.BulkSizingResult, error)
	ListCatalogProducts(ctx context.Context, pageSize int) (*dto.CatalogListing, error)

	// Published products
	EditCatalogProduct(ctx context.Context, input *dto.CatalogEditInput) (*dto.CatalogProductResult, error)
	DeleteCatalogProduct(ctx context.Context, merchantID, productID string) error
}

var (
	ErrNoProducts      = errors.New("at least one product id is required")
	ErrProductMissing  = errors.New("product id is required")
	ErrMerchantMissing = errors.New("merchant id is required")
)

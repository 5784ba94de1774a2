package queue

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/search"
)

type Repository interface {
	Create(ctx context.Context, item *model.QueueItem) error
	FindByID(ctx context.Context, id string) (*model.QueueItem, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.QueueItem, int, error)
	// Update overwrites the stored item; the last write wins.
	Update(ctx context.Context, item *model.QueueItem) error
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Event is emitted when an item leaves the queue.
type Event struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ItemID     string    `json:"item_id"`
	MerchantID string    `json:"merchant_id"`
	Status     string    `json:"status"`
	ProductID  string    `json:"product_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventItemPublished = "QueueItemPublished"
	EventItemDiscarded = "QueueItemDiscarded"
)

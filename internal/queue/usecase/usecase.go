package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/draft"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/remote"
	"github.com/fekuna/omnipos-catalog-service/internal/sizing"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName       = "catalog_queue"
	defaultCacheTTL = 5 * time.Minute
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"merchant_id": { "type": "keyword" },
			"status": { "type": "keyword" },
			"product": {
				"properties": {
					"title": { "type": "text" },
					"description": { "type": "text" },
					"product_type": { "type": "keyword" },
					"tags": { "type": "keyword" }
				}
			},
			"updated_at": { "type": "date" }
		}
	}
}`

type Options struct {
	CatalogPageSize int
	CatalogMaxPages int
	CacheTTL        time.Duration
}

type queueUseCase struct {
	repo      queue.Repository
	remote    remote.Client
	engine    *draft.Engine
	validator *validation.Validator
	cache     queue.Cache
	es        queue.Indexer
	events    queue.EventPublisher
	metrics   *metrics.Metrics
	logger    logger.ZapLogger
	opts      Options

	now   func() time.Time
	newID func() string
}

// NewQueueUseCase builds the queue use case. cache, es, events and m may be nil.
func NewQueueUseCase(
	repo queue.Repository,
	rc remote.Client,
	engine *draft.Engine,
	validator *validation.Validator,
	cache queue.Cache,
	es queue.Indexer,
	events queue.EventPublisher,
	m *metrics.Metrics,
	log logger.ZapLogger,
	opts Options,
) queue.UseCase {
	if engine == nil {
		engine = draft.NewEngine(nil)
	}
	if validator == nil {
		validator = validation.New()
	}
	if opts.CatalogPageSize <= 0 {
		opts.CatalogPageSize = 50
	}
	if opts.CatalogMaxPages <= 0 {
		opts.CatalogMaxPages = 20
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &queueUseCase{
		repo:      repo,
		remote:    rc,
		engine:    engine,
		validator: validator,
		cache:     cache,
		es:        es,
		events:    events,
		metrics:   m,
		logger:    log,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (uc *queueUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*dto.ItemResult, error) {
	if input.MerchantID == "" {
		return nil, queue.ErrMerchantMissing
	}

	var p model.Product
	switch {
	case input.SourceProductID != "":
		res := uc.remote.GetProduct(ctx, input.SourceProductID)
		if !res.OK {
			return nil, fmt.Errorf("load source product %s: %w", input.SourceProductID, res.Err())
		}
		p = res.Body
	case input.Product != nil:
		p = input.Product.Clone()
	}
	p.MerchantID = input.MerchantID

	p, err := uc.engine.Normalize(p)
	if err != nil {
		uc.metrics.RecordPipeline("rejected")
		return nil, err
	}
	uc.metrics.RecordPipeline("ok")

	now := uc.now()
	item := &model.QueueItem{
		ID:              uc.newID(),
		MerchantID:      input.MerchantID,
		Product:         p,
		SourceProductID: input.SourceProductID,
		CreatedAt:       now,
	}
	issues := uc.validate(p)
	queue.Evaluate(item, issues, now)

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.metrics.RecordTransition(string(item.Status))

	uc.invalidateListCache(ctx, item.MerchantID)

	// Sync to Elastic
	go uc.syncToElastic(context.Background(), *item)

	return &dto.ItemResult{Item: item, Issues: issues}, nil
}

func (uc *queueUseCase) GetItem(ctx context.Context, merchantID, id string) (*dto.ItemResult, error) {
	item, err := uc.load(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	var issues []validation.Issue
	if !item.Status.Terminal() {
		issues = uc.validator.Validate(item.Product)
	}
	return &dto.ItemResult{Item: item, Issues: issues}, nil
}

func (uc *queueUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.QueueItem, int, error) {
	if filters.MerchantID == "" {
		return nil, 0, queue.ErrMerchantMissing
	}
	if filters.Page < 1 {
		filters.Page = 1
	}

	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		var cached struct {
			Items []model.QueueItem
			Count int
		}
		if err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached.Items, cached.Count, nil
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		items, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return items, total, nil
		}
		// If ES fails, fall through to DB
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" && uc.cache != nil {
		cacheData := struct {
			Items []model.QueueItem
			Count int
		}{Items: items, Count: count}
		if err := uc.cache.SetJSON(ctx, cacheKey, cacheData, uc.opts.CacheTTL); err != nil {
			uc.logger.Warn("failed to cache queue list", zap.Error(err))
		}
	}

	return items, count, nil
}

func (uc *queueUseCase) EditItem(ctx context.Context, input *dto.EditItemInput) (*dto.ItemResult, error) {
	item, err := uc.load(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if err := queue.CanEdit(item); err != nil {
		return nil, err
	}

	next, err := uc.engine.Apply(item.Product, input.Edits...)
	if err != nil {
		uc.metrics.RecordPipeline("rejected")
		return nil, err
	}
	uc.metrics.RecordPipeline("ok")
	item.Product = next

	return uc.reevaluate(ctx, item)
}

func (uc *queueUseCase) Revalidate(ctx context.Context, merchantID, id string) (*dto.ItemResult, error) {
	item, err := uc.load(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if err := queue.CanEdit(item); err != nil {
		return nil, err
	}
	return uc.reevaluate(ctx, item)
}

func (uc *queueUseCase) PublishItem(ctx context.Context, merchantID, id string) (*model.QueueItem, error) {
	item, err := uc.load(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if err := queue.CanPublish(item); err != nil {
		return nil, err
	}

	payload := catalogPayload(item.Product, item.MerchantID)
	res := uc.remote.PromoteQueueItem(ctx, item.ID, payload)
	if !res.OK {
		cause := "promotion failed"
		if res.Error != nil && res.Error.Message != "" {
			cause = res.Error.Message
		}
		queue.MarkFailed(item, cause, uc.now())
		if err := uc.repo.Update(ctx, item); err != nil {
			uc.logger.Error("failed to persist failed promotion", zap.String("item_id", item.ID), zap.Error(err))
		}
		uc.metrics.RecordTransition(string(item.Status))
		uc.afterWrite(ctx, item)
		return item, fmt.Errorf("promote queue item %s: %w", item.ID, res.Err())
	}

	productID := res.Body.ID
	if productID == "" {
		productID = payload.ID
	}
	queue.MarkPublished(item, productID, uc.now())
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	uc.metrics.RecordTransition(string(item.Status))
	uc.afterWrite(ctx, item)
	uc.publishEvent(ctx, queue.EventItemPublished, item)

	uc.logger.Info("queue item published",
		zap.String("item_id", item.ID),
		zap.String("merchant_id", item.MerchantID),
		zap.String("product_id", productID),
	)
	return item, nil
}

func (uc *queueUseCase) DiscardItem(ctx context.Context, input *dto.DiscardItemInput) (*model.QueueItem, error) {
	item, err := uc.load(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if err := queue.CanDiscard(item, input.Reason); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(input.Reason)
	res := uc.remote.RejectQueueItem(ctx, item.ID, reason)
	if !res.OK {
		return nil, fmt.Errorf("reject queue item %s: %w", item.ID, res.Err())
	}

	queue.MarkDiscarded(item, reason, uc.now())
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	uc.metrics.RecordTransition(string(item.Status))
	uc.afterWrite(ctx, item)
	uc.publishEvent(ctx, queue.EventItemDiscarded, item)

	return item, nil
}

func (uc *queueUseCase) UploadMedia(ctx context.Context, input *dto.UploadMediaInput) (*dto.ItemResult, error) {
	item, err := uc.load(ctx, input.MerchantID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if err := queue.CanEdit(item); err != nil {
		return nil, err
	}

	res := uc.remote.UploadMedia(ctx, input.Filename, input.ContentType, input.Data)
	if !res.OK {
		return nil, fmt.Errorf("upload %s: %w", input.Filename, res.Err())
	}

	next, err := uc.engine.Apply(item.Product, draft.Edit{Type: draft.AddImage, Value: res.Body.URL})
	if err != nil {
		return nil, err
	}
	item.Product = next
	return uc.reevaluate(ctx, item)
}

func (uc *queueUseCase) BulkUpdateSizing(ctx context.Context, input *dto.BulkSizingInput) (*dto.BulkSizingResult, error) {
	if len(input.ProductIDs) == 0 {
		return nil, queue.ErrNoProducts
	}
	if _, ok := sizing.Lookup(input.Category); !ok {
		return nil, fmt.Errorf("%w: %q", sizing.ErrUnknownCategory, input.Category)
	}
	unit := input.MeasurementUnit
	if unit == "" {
		unit = model.UnitCM
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: measurement unit %q", draft.ErrInvalidEdit, unit)
	}

	lists := make([][]string, 0, len(input.ProductIDs))
	for _, id := range input.ProductIDs {
		res := uc.remote.GetProduct(ctx, id)
		if !res.OK {
			return nil, fmt.Errorf("load product %s: %w", id, res.Err())
		}
		lists = append(lists, sizing.SizeValues(res.Body.Options))
	}
	sizes := sizing.UnionSizes(lists...)

	chart, err := sizing.Sync(input.Category, sizes, input.SizeChart.Clone())
	if err != nil {
		return nil, err
	}
	guide := model.SizingGuide{
		Category:        input.Category,
		SizeChart:       chart,
		SizeFit:         input.SizeFit,
		MeasurementUnit: unit,
	}

	res := uc.remote.BulkUpdateSizing(ctx, input.ProductIDs, guide)
	if !res.OK {
		return nil, fmt.Errorf("bulk sizing update: %w", res.Err())
	}

	uc.logger.Info("bulk sizing applied",
		zap.String("merchant_id", input.MerchantID),
		zap.Int("products", len(input.ProductIDs)),
		zap.Int("updated", res.Body.Updated),
	)
	return &dto.BulkSizingResult{SizingGuide: guide, Sizes: sizes, Updated: res.Body.Updated}, nil
}

func (uc *queueUseCase) ListCatalogProducts(ctx context.Context, pageSize int) (*dto.CatalogListing, error) {
	if pageSize <= 0 {
		pageSize = uc.opts.CatalogPageSize
	}
	res := remote.FetchAllProducts(ctx, uc.remote, pageSize, uc.opts.CatalogMaxPages)

	listing := &dto.CatalogListing{Products: res.Items, Pages: res.Pages, Partial: res.Partial}
	if res.Err != nil {
		listing.Error = res.Err.Error()
		uc.logger.Warn("catalog listing incomplete", zap.Int("pages", res.Pages), zap.Error(res.Err))
	}
	return listing, nil
}

func (uc *queueUseCase) EditCatalogProduct(ctx context.Context, input *dto.CatalogEditInput) (*dto.CatalogProductResult, error) {
	if input.MerchantID == "" {
		return nil, queue.ErrMerchantMissing
	}
	if input.ProductID == "" {
		return nil, queue.ErrProductMissing
	}

	res := uc.remote.GetProduct(ctx, input.ProductID)
	if !res.OK {
		return nil, fmt.Errorf("load product %s: %w", input.ProductID, res.Err())
	}
	p, err := uc.engine.Normalize(res.Body)
	if err != nil {
		return nil, err
	}
	if p, err = uc.engine.Apply(p, input.Edits...); err != nil {
		return nil, err
	}

	// A live product is only overwritten with a publishable draft.
	if issues := uc.validate(p); len(issues) > 0 {
		return &dto.CatalogProductResult{Product: p, Issues: issues}, nil
	}

	payload := catalogPayload(p, input.MerchantID)
	payload.ID = input.ProductID
	upd := uc.remote.UpdateProduct(ctx, payload)
	if !upd.OK {
		return nil, fmt.Errorf("update product %s: %w", input.ProductID, upd.Err())
	}
	saved := upd.Body
	if saved.ID == "" {
		saved = payload
	}

	uc.logger.Info("catalog product updated",
		zap.String("merchant_id", input.MerchantID),
		zap.String("product_id", input.ProductID),
		zap.Int("edits", len(input.Edits)),
	)
	return &dto.CatalogProductResult{Product: saved, Saved: true}, nil
}

func (uc *queueUseCase) DeleteCatalogProduct(ctx context.Context, merchantID, productID string) error {
	if merchantID == "" {
		return queue.ErrMerchantMissing
	}
	if productID == "" {
		return queue.ErrProductMissing
	}
	if res := uc.remote.DeleteProduct(ctx, productID); !res.OK {
		return fmt.Errorf("delete product %s: %w", productID, res.Err())
	}
	uc.logger.Info("catalog product deleted", zap.String("merchant_id", merchantID), zap.String("product_id", productID))
	return nil
}

func (uc *queueUseCase) load(ctx context.Context, merchantID, id string) (*model.QueueItem, error) {
	if merchantID == "" {
		return nil, queue.ErrMerchantMissing
	}
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Items of other merchants are reported as missing.
	if item == nil || item.MerchantID != merchantID {
		return nil, fmt.Errorf("%w: %s", queue.ErrNotFound, id)
	}
	return item, nil
}

func (uc *queueUseCase) validate(p model.Product) []validation.Issue {
	issues := uc.validator.Validate(p)
	for _, is := range issues {
		uc.metrics.RecordIssue(is.Code)
	}
	return issues
}

func (uc *queueUseCase) reevaluate(ctx context.Context, item *model.QueueItem) (*dto.ItemResult, error) {
	before := item.Status
	issues := uc.validate(item.Product)
	queue.Evaluate(item, issues, uc.now())

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	if item.Status != before {
		uc.metrics.RecordTransition(string(item.Status))
	}
	uc.afterWrite(ctx, item)
	return &dto.ItemResult{Item: item, Issues: issues}, nil
}

func (uc *queueUseCase) afterWrite(ctx context.Context, item *model.QueueItem) {
	uc.invalidateListCache(ctx, item.MerchantID)
	go uc.syncToElastic(context.Background(), *item)
}

// catalogPayload is the draft sent to the catalog. Chart rows for sizes that are no longer
// offered are dropped here; the draft itself keeps them while it is being edited.
func catalogPayload(product model.Product, merchantID string) model.Product {
	p := product.Clone()
	p.MerchantID = merchantID
	if p.SizingGuide != nil {
		p.SizingGuide.SizeChart = sizing.Prune(p.SizingGuide.SizeChart, sizing.SizeValues(p.Options))
	}
	return p
}

func (uc *queueUseCase) publishEvent(ctx context.Context, eventType string, item *model.QueueItem) {
	if uc.events == nil {
		return
	}
	ev := queue.Event{
		EventID:    uc.newID(),
		EventType:  eventType,
		ItemID:     item.ID,
		MerchantID: item.MerchantID,
		Status:     string(item.Status),
		ProductID:  item.PublishedProductID,
		Reason:     item.DiscardReason,
		Timestamp:  uc.now(),
	}
	if err := uc.events.PublishJSON(ctx, item.ID, ev); err != nil {
		uc.logger.Error("failed to publish queue event",
			zap.String("event_type", eventType),
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
	}
}

func (uc *queueUseCase) searchElastic(ctx context.Context, filters *dto.ItemFilters) ([]model.QueueItem, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"product.title^3", "product.description", "product.tags"},
			},
		},
		{"term": map[string]interface{}{"merchant_id": filters.MerchantID}},
	}
	boolQuery := map[string]interface{}{"must": must}
	if filters.Status != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"status": string(filters.Status)}})
		boolQuery["must"] = must
	} else if !filters.IncludeTerminal {
		boolQuery["must_not"] = []map[string]interface{}{
			{"terms": map[string]interface{}{"status": []string{string(model.QueuePublished), string(model.QueueDiscarded)}}},
		}
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  (filters.Page - 1) * filters.PageSize,
	}
	if filters.PageSize > 0 {
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]model.QueueItem, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var item model.QueueItem
		if err := json.Unmarshal(hit.Source, &item); err != nil {
			uc.logger.Warn("skipping unreadable search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *queueUseCase) syncToElastic(ctx context.Context, item model.QueueItem) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, item.ID, item); err != nil {
		uc.logger.Error("failed to index queue item", zap.String("item_id", item.ID), zap.Error(err))
	}
}

func (uc *queueUseCase) generateCacheKey(filters *dto.ItemFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("queue:list:%s:%x", filters.MerchantID, md5.Sum(data)), nil
}

func (uc *queueUseCase) invalidateListCache(ctx context.Context, merchantID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("queue:list:%s:*", merchantID)
	if err := uc.cache.DeletePattern(ctx, pattern); err != nil && !errors.Is(err, context.Canceled) {
		uc.logger.Warn("failed to invalidate queue list cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}

package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/draft"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/remote"
	"github.com/fekuna/omnipos-catalog-service/internal/sizing"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type QueueHandler struct {
	uc         queue.UseCase
	translator *i18n.Translator
	logger     logger.ZapLogger
}

func NewQueueHandler(uc queue.UseCase, translator *i18n.Translator, log logger.ZapLogger) *QueueHandler {
	return &QueueHandler{
		uc:         uc,
		translator: translator,
		logger:     log,
	}
}

// --- request shapes ---

type idRequest struct {
	ID string `json:"id"`
}

type createRequest struct {
	SourceProductID string         `json:"source_product_id"`
	Product         *model.Product `json:"product"`
}

type listRequest struct {
	Status          string `json:"status"`
	IncludeTerminal bool   `json:"include_terminal"`
	Search          string `json:"search"`
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
}

type editRequest struct {
	ID    string       `json:"id"`
	Edits []draft.Edit `json:"edits"`
}

type discardRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type uploadRequest struct {
	ItemID      string `json:"item_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"` // base64
}

type bulkSizingRequest struct {
	ProductIDs      []string              `json:"product_ids"`
	Category        string                `json:"category"`
	SizeFit         string                `json:"size_fit"`
	MeasurementUnit model.MeasurementUnit `json:"measurement_unit"`
	SizeChart       model.SizeChart       `json:"size_chart"`
}

type catalogRequest struct {
	PageSize int `json:"page_size"`
}

type catalogEditRequest struct {
	ProductID string       `json:"product_id"`
	Edits     []draft.Edit `json:"edits"`
}

type catalogDeleteRequest struct {
	ProductID string `json:"product_id"`
}

// --- response shapes ---

type IssueResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ItemResponse struct {
	Item   *model.QueueItem `json:"item"`
	Issues []IssueResponse  `json:"issues"`
}

type ListResponse struct {
	Items    []model.QueueItem `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type CatalogResponse struct {
	Products []model.Product `json:"products"`
	Pages    int             `json:"pages"`
	Partial  bool            `json:"partial"`
	Error    string          `json:"error,omitempty"`
}

type BulkSizingResponse struct {
	SizingGuide model.SizingGuide `json:"sizing_guide"`
	Sizes       []string          `json:"sizes"`
	Updated     int               `json:"updated"`
}

type CatalogProductResponse struct {
	Product model.Product   `json:"product"`
	Issues  []IssueResponse `json:"issues"`
	Saved   bool            `json:"saved"`
}

type CategoryResponse struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

func (h *QueueHandler) CreateQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in createRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.CreateItem(ctx, &dto.CreateItemInput{
		MerchantID:      merchantID,
		SourceProductID: in.SourceProductID,
		Product:         in.Product,
	})
	if err != nil {
		return nil, h.mapError("failed to create queue item", err)
	}
	return h.itemResponse(ctx, res)
}

func (h *QueueHandler) GetQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.GetItem(ctx, merchantID, in.ID)
	if err != nil {
		return nil, h.mapError("failed to get queue item", err)
	}
	return h.itemResponse(ctx, res)
}

func (h *QueueHandler) ListQueueItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in listRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	st := model.QueueStatus(in.Status)
	if st != "" && !st.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown status %q", in.Status)
	}

	filters := &dto.ItemFilters{
		MerchantID:      merchantID,
		Status:          st,
		IncludeTerminal: in.IncludeTerminal,
		SearchQuery:     in.Search,
		Page:            in.Page,
		PageSize:        in.PageSize,
	}
	items, total, err := h.uc.ListItems(ctx, filters)
	if err != nil {
		return nil, h.mapError("failed to list queue items", err)
	}
	if items == nil {
		items = []model.QueueItem{}
	}
	return toStruct(ListResponse{Items: items, Total: total, Page: filters.Page, PageSize: filters.PageSize})
}

func (h *QueueHandler) EditQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in editRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.EditItem(ctx, &dto.EditItemInput{ID: in.ID, MerchantID: merchantID, Edits: in.Edits})
	if err != nil {
		return nil, h.mapError("failed to edit queue item", err)
	}
	return h.itemResponse(ctx, res)
}

func (h *QueueHandler) RevalidateQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.Revalidate(ctx, merchantID, in.ID)
	if err != nil {
		return nil, h.mapError("failed to revalidate queue item", err)
	}
	return h.itemResponse(ctx, res)
}

func (h *QueueHandler) PublishQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	item, err := h.uc.PublishItem(ctx, merchantID, in.ID)
	if err != nil {
		return nil, h.mapError("failed to publish queue item", err)
	}
	return toStruct(ItemResponse{Item: item, Issues: []IssueResponse{}})
}

func (h *QueueHandler) DiscardQueueItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in discardRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	item, err := h.uc.DiscardItem(ctx, &dto.DiscardItemInput{ID: in.ID, MerchantID: merchantID, Reason: in.Reason})
	if err != nil {
		return nil, h.mapError("failed to discard queue item", err)
	}
	return toStruct(ItemResponse{Item: item, Issues: []IssueResponse{}})
}

func (h *QueueHandler) UploadMedia(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in uploadRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Filename == "" || len(in.Data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "filename and data are required")
	}

	res, err := h.uc.UploadMedia(ctx, &dto.UploadMediaInput{
		ItemID:      in.ItemID,
		MerchantID:  merchantID,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Data:        in.Data,
	})
	if err != nil {
		return nil, h.mapError("failed to upload media", err)
	}
	return h.itemResponse(ctx, res)
}

func (h *QueueHandler) BulkUpdateSizing(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in bulkSizingRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.BulkUpdateSizing(ctx, &dto.BulkSizingInput{
		MerchantID:      merchantID,
		ProductIDs:      in.ProductIDs,
		Category:        in.Category,
		SizeFit:         in.SizeFit,
		MeasurementUnit: in.MeasurementUnit,
		SizeChart:       in.SizeChart,
	})
	if err != nil {
		return nil, h.mapError("failed to update sizing in bulk", err)
	}
	return toStruct(BulkSizingResponse{SizingGuide: res.SizingGuide, Sizes: res.Sizes, Updated: res.Updated})
}

func (h *QueueHandler) ListCatalogProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if auth.GetMerchantID(ctx) == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in catalogRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.ListCatalogProducts(ctx, in.PageSize)
	if err != nil {
		return nil, h.mapError("failed to list catalog products", err)
	}
	products := res.Products
	if products == nil {
		products = []model.Product{}
	}
	return toStruct(CatalogResponse{Products: products, Pages: res.Pages, Partial: res.Partial, Error: res.Error})
}

func (h *QueueHandler) ListSizingCategories(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	cats := sizing.Categories()
	out := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = CategoryResponse{Name: c.Name, Label: c.Label, Columns: c.Columns}
	}
	return toStruct(map[string]any{"categories": out})
}

func (h *QueueHandler) EditCatalogProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in catalogEditRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := h.uc.EditCatalogProduct(ctx, &dto.CatalogEditInput{
		MerchantID: merchantID,
		ProductID:  in.ProductID,
		Edits:      in.Edits,
	})
	if err != nil {
		return nil, h.mapError("failed to edit catalog product", err)
	}
	return toStruct(CatalogProductResponse{
		Product: res.Product,
		Issues:  h.localize(ctx, res.Issues),
		Saved:   res.Saved,
	})
}

func (h *QueueHandler) DeleteCatalogProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing merchant")
	}
	var in catalogDeleteRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	if err := h.uc.DeleteCatalogProduct(ctx, merchantID, in.ProductID); err != nil {
		return nil, h.mapError("failed to delete catalog product", err)
	}
	return toStruct(map[string]any{"product_id": in.ProductID, "deleted": true})
}

func (h *QueueHandler) itemResponse(ctx context.Context, res *dto.ItemResult) (*structpb.Struct, error) {
	return toStruct(ItemResponse{Item: res.Item, Issues: h.localize(ctx, res.Issues)})
}

func (h *QueueHandler) localize(ctx context.Context, in []validation.Issue) []IssueResponse {
	lang := auth.GetLanguage(ctx)
	issues := make([]IssueResponse, len(in))
	for i, is := range in {
		issues[i] = IssueResponse{
			Code:    is.Code,
			Message: h.translator.Localize(is.Code, is.Message, is.Args, lang),
		}
	}
	return issues
}

func (h *QueueHandler) mapError(msg string, err error) error {
	switch {
	case errors.Is(err, queue.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, queue.ErrMerchantMissing):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, draft.ErrInvalidEdit),
		errors.Is(err, variant.ErrInvalidOptions),
		errors.Is(err, sizing.ErrUnknownCategory),
		errors.Is(err, queue.ErrReasonRequired),
		errors.Is(err, queue.ErrNoProducts),
		errors.Is(err, queue.ErrProductMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, queue.ErrNotReady), errors.Is(err, queue.ErrTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, remote.ErrCollaborator):
		h.logger.Warn(msg, zap.Error(err))
		return status.Error(codes.Unavailable, err.Error())
	}
	h.logger.Error(msg, zap.Error(err))
	return status.Error(codes.Internal, err.Error())
}

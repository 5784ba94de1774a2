package handler

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/draft"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/remote"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// stubUseCase returns canned results; err, when set, is returned by every call.
type stubUseCase struct {
	err         error
	lastEdit    *dto.EditItemInput
	lastCreate  *dto.CreateItemInput
	lastCatalog *dto.CatalogEditInput
	deletedID   string
}

func (s *stubUseCase) item(merchantID, id string) *model.QueueItem {
	return &model.QueueItem{ID: id, MerchantID: merchantID, Status: model.QueueNotReady, Errors: []string{"Title is required"}}
}

func (s *stubUseCase) result(merchantID, id string) *dto.ItemResult {
	return &dto.ItemResult{
		Item:   s.item(merchantID, id),
		Issues: []validation.Issue{{Code: validation.CodeTitleRequired, Message: "Title is required"}},
	}
}

func (s *stubUseCase) CreateItem(_ context.Context, in *dto.CreateItemInput) (*dto.ItemResult, error) {
	s.lastCreate = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(in.MerchantID, "item-1"), nil
}

func (s *stubUseCase) GetItem(_ context.Context, merchantID, id string) (*dto.ItemResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result(merchantID, id), nil
}

func (s *stubUseCase) ListItems(_ context.Context, f *dto.ItemFilters) ([]model.QueueItem, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []model.QueueItem{*s.item(f.MerchantID, "item-1")}, 1, nil
}

func (s *stubUseCase) EditItem(_ context.Context, in *dto.EditItemInput) (*dto.ItemResult, error) {
	s.lastEdit = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(in.MerchantID, in.ID), nil
}

func (s *stubUseCase) Revalidate(_ context.Context, merchantID, id string) (*dto.ItemResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result(merchantID, id), nil
}

func (s *stubUseCase) PublishItem(_ context.Context, merchantID, id string) (*model.QueueItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	it := s.item(merchantID, id)
	it.Status = model.QueuePublished
	return it, nil
}

func (s *stubUseCase) DiscardItem(_ context.Context, in *dto.DiscardItemInput) (*model.QueueItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	it := s.item(in.MerchantID, in.ID)
	it.Status = model.QueueDiscarded
	it.DiscardReason = in.Reason
	return it, nil
}

func (s *stubUseCase) UploadMedia(_ context.Context, in *dto.UploadMediaInput) (*dto.ItemResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result(in.MerchantID, in.ItemID), nil
}

func (s *stubUseCase) BulkUpdateSizing(_ context.Context, in *dto.BulkSizingInput) (*dto.BulkSizingResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BulkSizingResult{Updated: len(in.ProductIDs)}, nil
}

func (s *stubUseCase) ListCatalogProducts(context.Context, int) (*dto.CatalogListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CatalogListing{Pages: 1}, nil
}

func (s *stubUseCase) EditCatalogProduct(_ context.Context, in *dto.CatalogEditInput) (*dto.CatalogProductResult, error) {
	s.lastCatalog = in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CatalogProductResult{
		Product: model.Product{ID: in.ProductID, MerchantID: in.MerchantID},
		Issues:  []validation.Issue{{Code: validation.CodeTitleRequired, Message: "Title is required"}},
	}, nil
}

func (s *stubUseCase) DeleteCatalogProduct(_ context.Context, _ string, productID string) error {
	if s.err != nil {
		return s.err
	}
	s.deletedID = productID
	return nil
}

func startServer(t *testing.T, uc queue.UseCase) *Client {
	t.Helper()
	tr, err := i18n.New()
	if err != nil {
		t.Fatal(err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.ContextInterceptor(),
		middleware.LoggingInterceptor(logger.NewNop()),
	))
	RegisterCatalogQueueServiceServer(srv, NewQueueHandler(uc, tr, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func merchantCtx(lang string) context.Context {
	md := metadata.Pairs("x-merchant-id", "m1")
	if lang != "" {
		md.Append("accept-language", lang)
	}
	return metadata.NewOutgoingContext(context.Background(), md)
}

func TestCreateQueueItem_LocalizesIssues(t *testing.T) {
	uc := &stubUseCase{}
	c := startServer(t, uc)

	var resp ItemResponse
	err := c.Call(merchantCtx("id"), "CreateQueueItem", map[string]any{
		"product": map[string]any{"title": "", "price": "1500000", "tags": []string{"female"}},
	}, &resp)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Item == nil || resp.Item.ID != "item-1" || resp.Item.MerchantID != "m1" {
		t.Fatalf("unexpected item %+v", resp.Item)
	}
	if len(resp.Issues) != 1 || resp.Issues[0].Message != "Judul wajib diisi" {
		t.Fatalf("want localized issue, got %+v", resp.Issues)
	}
	if uc.lastCreate.Product == nil || uc.lastCreate.Product.Price.String() != "1500000" {
		t.Fatalf("product not decoded: %+v", uc.lastCreate.Product)
	}
}

func TestCreateQueueItem_RequiresMerchant(t *testing.T) {
	c := startServer(t, &stubUseCase{})
	err := c.Call(context.Background(), "CreateQueueItem", map[string]any{}, nil)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", err)
	}
}

func TestEditQueueItem_DecodesEdits(t *testing.T) {
	uc := &stubUseCase{}
	c := startServer(t, uc)

	err := c.Call(merchantCtx(""), "EditQueueItem", map[string]any{
		"id": "item-7",
		"edits": []map[string]any{
			{"type": "set_options", "options": []map[string]any{{"name": "Size", "values": []string{"S", "M"}}}},
			{"type": "set_variant_quantity", "variant_id": "v-1", "quantity": 3},
		},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if uc.lastEdit == nil || uc.lastEdit.ID != "item-7" || len(uc.lastEdit.Edits) != 2 {
		t.Fatalf("unexpected edit input %+v", uc.lastEdit)
	}
	e := uc.lastEdit.Edits[1]
	if e.Type != draft.SetVariantQuantity || e.Quantity == nil || *e.Quantity != 3 {
		t.Fatalf("unexpected edit %+v", e)
	}

	err = c.Call(merchantCtx(""), "EditQueueItem", map[string]any{"id": "item-7", "edits": "nope"}, nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument for malformed edits, got %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: item-1", queue.ErrNotFound), codes.NotFound},
		{fmt.Errorf("%w: status not_ready", queue.ErrNotReady), codes.FailedPrecondition},
		{fmt.Errorf("%w: status published", queue.ErrTerminal), codes.FailedPrecondition},
		{queue.ErrReasonRequired, codes.InvalidArgument},
		{fmt.Errorf("edit 0 (x): %w", draft.ErrInvalidEdit), codes.InvalidArgument},
		{fmt.Errorf("promote: %w", remote.ErrCollaborator), codes.Unavailable},
		{fmt.Errorf("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			c := startServer(t, &stubUseCase{err: tt.err})
			err := c.Call(merchantCtx(""), "PublishQueueItem", map[string]any{"id": "item-1"}, nil)
			if status.Code(err) != tt.want {
				t.Fatalf("want %s, got %v", tt.want, err)
			}
		})
	}
}

func TestDiscardAndList(t *testing.T) {
	c := startServer(t, &stubUseCase{})

	var item ItemResponse
	if err := c.Call(merchantCtx(""), "DiscardQueueItem", map[string]any{"id": "item-2", "reason": "duplicate"}, &item); err != nil {
		t.Fatal(err)
	}
	if item.Item.Status != model.QueueDiscarded || item.Item.DiscardReason != "duplicate" {
		t.Fatalf("unexpected item %+v", item.Item)
	}

	var list ListResponse
	if err := c.Call(merchantCtx(""), "ListQueueItems", map[string]any{"page": 1, "page_size": 20}, &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || len(list.Items) != 1 || list.PageSize != 20 {
		t.Fatalf("unexpected list %+v", list)
	}

	err := c.Call(merchantCtx(""), "ListQueueItems", map[string]any{"status": "archived"}, nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument for unknown status, got %v", err)
	}
}

func TestListSizingCategories(t *testing.T) {
	c := startServer(t, &stubUseCase{})
	var resp struct {
		Categories []CategoryResponse `json:"categories"`
	}
	if err := c.Call(context.Background(), "ListSizingCategories", nil, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Categories) != 5 || resp.Categories[0].Name != "bottoms" {
		t.Fatalf("unexpected categories %+v", resp.Categories)
	}
}

func TestCatalogProductMethods(t *testing.T) {
	uc := &stubUseCase{}
	c := startServer(t, uc)

	var resp CatalogProductResponse
	err := c.Call(merchantCtx("id"), "EditCatalogProduct", map[string]any{
		"product_id": "prod-9",
		"edits":      []map[string]any{{"type": "set_title", "value": ""}},
	}, &resp)
	if err != nil {
		t.Fatal(err)
	}
	if uc.lastCatalog == nil || uc.lastCatalog.MerchantID != "m1" || len(uc.lastCatalog.Edits) != 1 {
		t.Fatalf("unexpected input %+v", uc.lastCatalog)
	}
	if resp.Saved || resp.Product.ID != "prod-9" || len(resp.Issues) != 1 || resp.Issues[0].Message != "Judul wajib diisi" {
		t.Fatalf("unexpected response %+v", resp)
	}

	if err := c.Call(merchantCtx(""), "DeleteCatalogProduct", map[string]any{"product_id": "prod-9"}, nil); err != nil {
		t.Fatal(err)
	}
	if uc.deletedID != "prod-9" {
		t.Fatalf("want prod-9 deleted, got %q", uc.deletedID)
	}

	missing := startServer(t, &stubUseCase{err: queue.ErrProductMissing})
	err = missing.Call(merchantCtx(""), "DeleteCatalogProduct", map[string]any{}, nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

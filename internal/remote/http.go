package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

// Observer receives one callback per collaborator request.
type Observer interface {
	ObserveRemoteCall(op string, status int, d time.Duration)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type HTTPClient struct {
	baseURL  string
	http     *http.Client
	logger   logger.ZapLogger
	observer Observer
}

func NewHTTPClient(cfg *Config, log logger.ZapLogger, obs Observer) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   log,
		observer: obs,
	}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) CreateProduct(ctx context.Context, p model.Product) Result[model.Product] {
	return doJSON[model.Product](ctx, c, "create_product", http.MethodPost, "/products", p)
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, p model.Product) Result[model.Product] {
	return doJSON[model.Product](ctx, c, "update_product", http.MethodPut, "/products/"+url.PathEscape(p.ID), p)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) Result[struct{}] {
	return doJSON[struct{}](ctx, c, "delete_product", http.MethodDelete, "/products/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) Result[model.Product] {
	return doJSON[model.Product](ctx, c, "get_product", http.MethodGet, "/products/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) ListProducts(ctx context.Context, page, pageSize int) Result[ProductPage] {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return doJSON[ProductPage](ctx, c, "list_products", http.MethodGet, "/products?"+q.Encode(), nil)
}

func (c *HTTPClient) PromoteQueueItem(ctx context.Context, itemID string, p model.Product) Result[model.Product] {
	return doJSON[model.Product](ctx, c, "promote_queue_item", http.MethodPost,
		"/queue/"+url.PathEscape(itemID)+"/promote", PromoteRequest{Product: p})
}

func (c *HTTPClient) RejectQueueItem(ctx context.Context, itemID, reason string) Result[struct{}] {
	return doJSON[struct{}](ctx, c, "reject_queue_item", http.MethodPost,
		"/queue/"+url.PathEscape(itemID)+"/reject", RejectRequest{Reason: reason})
}

func (c *HTTPClient) BulkUpdateSizing(ctx context.Context, productIDs []string, guide model.SizingGuide) Result[BulkSizingResponse] {
	return doJSON[BulkSizingResponse](ctx, c, "bulk_update_sizing", http.MethodPost,
		"/products/sizing/bulk", BulkSizingRequest{ProductIDs: productIDs, SizingGuide: guide})
}

func (c *HTTPClient) UploadMedia(ctx context.Context, filename, contentType string, data []byte) Result[MediaUpload] {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return Result[MediaUpload]{Error: &ErrorPayload{Message: err.Error()}}
	}
	return do[MediaUpload](ctx, c, "upload_media", http.MethodPost, "/media", &buf, w.FormDataContentType())
}

func doJSON[T any](ctx context.Context, c *HTTPClient, op, method, path string, body any) Result[T] {
	if body == nil {
		return do[T](ctx, c, op, method, path, nil, "")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Result[T]{Error: &ErrorPayload{Message: err.Error()}}
	}
	return do[T](ctx, c, op, method, path, bytes.NewReader(data), "application/json")
}

// do performs one request. Transport failures come back as a failed Result with status 0.
// Nothing is retried here.
func do[T any](ctx context.Context, c *HTTPClient, op, method, path string, body io.Reader, contentType string) Result[T] {
	var out Result[T]
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRemoteCall(op, out.Status, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		out.Error = &ErrorPayload{Message: err.Error()}
		return out
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if merchantID, ok := middleware.MerchantIDFromContext(ctx); ok {
		req.Header.Set("X-Merchant-ID", merchantID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("collaborator request failed", zap.String("op", op), zap.Error(err))
		out.Error = &ErrorPayload{Message: err.Error()}
		return out
	}
	defer resp.Body.Close()

	out.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Error = decodeError(resp)
		c.logger.Warn("collaborator returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", out.Error.Message),
		)
		return out
	}

	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out.Body); err != nil && err != io.EOF {
			out.Error = &ErrorPayload{Message: "decode response: " + err.Error()}
			return out
		}
	}
	out.OK = true
	return out
}

func decodeError(resp *http.Response) *ErrorPayload {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message == "" {
			payload.Message = payload.Error
		}
		if payload.Message != "" {
			return &ErrorPayload{Code: payload.Code, Message: payload.Message}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &ErrorPayload{Message: msg}
}

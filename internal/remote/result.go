// Package remote talks to the collaborators that own the published catalog, the queue
// promotion endpoints, media storage and bulk sizing updates.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

var ErrCollaborator = errors.New("collaborator request failed")

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Result is the uniform response contract of every collaborator call.
type Result[T any] struct {
	OK     bool
	Status int
	Body   T
	Error  *ErrorPayload
}

// Err converts a failed result into an error wrapping ErrCollaborator.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	msg := "no response"
	if r.Error != nil && r.Error.Message != "" {
		msg = r.Error.Message
	}
	return fmt.Errorf("%w: status %d: %s", ErrCollaborator, r.Status, msg)
}

type ProductPage struct {
	Items    []model.Product `json:"items"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
}

type PromoteRequest struct {
	Product model.Product `json:"product"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type MediaUpload struct {
	URL string `json:"url"`
}

type BulkSizingRequest struct {
	ProductIDs  []string          `json:"product_ids"`
	SizingGuide model.SizingGuide `json:"sizing_guide"`
}

type BulkSizingResponse struct {
	Updated int `json:"updated"`
}

// Client is the set of collaborator operations the queue use case depends on.
type Client interface {
	CreateProduct(ctx context.Context, p model.Product) Result[model.Product]
	UpdateProduct(ctx context.Context, p model.Product) Result[model.Product]
	DeleteProduct(ctx context.Context, id string) Result[struct{}]
	GetProduct(ctx context.Context, id string) Result[model.Product]
	ListProducts(ctx context.Context, page, pageSize int) Result[ProductPage]

	PromoteQueueItem(ctx context.Context, itemID string, p model.Product) Result[model.Product]
	RejectQueueItem(ctx context.Context, itemID, reason string) Result[struct{}]

	UploadMedia(ctx context.Context, filename, contentType string, data []byte) Result[MediaUpload]
	BulkUpdateSizing(ctx context.Context, productIDs []string, guide model.SizingGuide) Result[BulkSizingResponse]
}

package model

import "time"

type QueueStatus string

const (
	QueueNotReady  QueueStatus = "not_ready"
	QueueReady     QueueStatus = "ready"
	QueueFailed    QueueStatus = "failed"
	QueuePublished QueueStatus = "published"
	QueueDiscarded QueueStatus = "discarded"
)

func (s QueueStatus) Terminal() bool {
	return s == QueuePublished || s == QueueDiscarded
}

func (s QueueStatus) Valid() bool {
	switch s {
	case QueueNotReady, QueueReady, QueueFailed, QueuePublished, QueueDiscarded:
		return true
	}
	return false
}

// QueueItem wraps a product draft staged for validation before it is listed.
type QueueItem struct {
	ID                 string      `json:"id"`
	MerchantID         string      `json:"merchant_id"`
	Status             QueueStatus `json:"status"`
	Errors             []string    `json:"errors"`
	Product            Product     `json:"product"`
	SourceProductID    string      `json:"source_product_id,omitempty"`
	PublishedProductID string      `json:"published_product_id,omitempty"`
	DiscardReason      string      `json:"discard_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
)

var (
	ErrNotFound       = errors.New("queue item not found")
	ErrNotReady       = errors.New("queue item is not ready to publish")
	ErrTerminal       = errors.New("queue item is already published or discarded")
	ErrReasonRequired = errors.New("a discard reason is required")
)

// Evaluate recomputes the status of a non-terminal item from a fresh validation pass.
func Evaluate(item *model.QueueItem, issues []validation.Issue, now time.Time) {
	if item.Status.Terminal() {
		return
	}
	item.Errors = validation.Messages(issues)
	if len(issues) == 0 {
		item.Status = model.QueueReady
	} else {
		item.Status = model.QueueNotReady
	}
	item.UpdatedAt = now
}

// CanEdit rejects edits against published or discarded items.
func CanEdit(item *model.QueueItem) error {
	if item.Status.Terminal() {
		return fmt.Errorf("%w: status %s", ErrTerminal, item.Status)
	}
	return nil
}

// CanPublish allows promotion only from ready.
func CanPublish(item *model.QueueItem) error {
	if item.Status.Terminal() {
		return fmt.Errorf("%w: status %s", ErrTerminal, item.Status)
	}
	if item.Status != model.QueueReady {
		return fmt.Errorf("%w: status %s", ErrNotReady, item.Status)
	}
	return nil
}

// CanDiscard allows rejection from any non-terminal state with a non-blank reason.
func CanDiscard(item *model.QueueItem, reason string) error {
	if item.Status.Terminal() {
		return fmt.Errorf("%w: status %s", ErrTerminal, item.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

func MarkPublished(item *model.QueueItem, productID string, now time.Time) {
	item.Status = model.QueuePublished
	item.PublishedProductID = productID
	item.Errors = nil
	item.UpdatedAt = now
}

func MarkDiscarded(item *model.QueueItem, reason string, now time.Time) {
	item.Status = model.QueueDiscarded
	item.DiscardReason = strings.TrimSpace(reason)
	item.UpdatedAt = now
}

// MarkFailed records a failed promotion. The item leaves failed on its next edit or revalidation.
func MarkFailed(item *model.QueueItem, cause string, now time.Time) {
	item.Status = model.QueueFailed
	item.Errors = []string{cause}
	item.UpdatedAt = now
}

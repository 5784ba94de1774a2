package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventBulkSizingRequested = "SizingGuideBulkUpdateRequested"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// SizingListener applies bulk sizing commands published by the merchant dashboard.
type SizingListener struct {
	consumer MessageReader
	uc       queue.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewSizingListener(consumer MessageReader, uc queue.UseCase, logger logger.ZapLogger) *SizingListener {
	return &SizingListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *SizingListener) Start(ctx context.Context) {
	l.logger.Info("Starting Sizing Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Sizing Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type BulkSizingEvent struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Payload   BulkSizingPayload `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

type BulkSizingPayload struct {
	MerchantID      string                `json:"merchant_id"`
	ProductIDs      []string              `json:"product_ids"`
	Category        string                `json:"category"`
	SizeFit         string                `json:"size_fit"`
	MeasurementUnit model.MeasurementUnit `json:"measurement_unit"`
	SizeChart       model.SizeChart       `json:"size_chart"`
}

func (l *SizingListener) processMessage(ctx context.Context, value []byte) {
	var event BulkSizingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventBulkSizingRequested {
		return
	}

	l.logger.Info("Processing bulk sizing event",
		zap.String("event_id", event.EventID),
		zap.String("merchant_id", event.Payload.MerchantID),
		zap.Int("products", len(event.Payload.ProductIDs)),
	)

	// collaborator calls are scoped to the merchant that issued the command
	ctx = middleware.WithMerchantID(ctx, event.Payload.MerchantID)
	_, err := l.uc.BulkUpdateSizing(ctx, &dto.BulkSizingInput{
		MerchantID:      event.Payload.MerchantID,
		ProductIDs:      event.Payload.ProductIDs,
		Category:        event.Payload.Category,
		SizeFit:         event.Payload.SizeFit,
		MeasurementUnit: event.Payload.MeasurementUnit,
		SizeChart:       event.Payload.SizeChart,
	})
	if err != nil {
		l.logger.Error("Failed to apply bulk sizing",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

package services

import (
	"context"
	"encoding/json"
	"time"

	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	"go.uber.org/zap"
)

// Menu change event types.
const (
	EventCategoryCreated     = "category.created"
	EventCategoryDeleted     = "category.deleted"
	EventCategoriesReordered = "categories.reordered"
	EventProductAdded        = "product.added"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventMenuMigrated        = "menu.migrated"
)

// MenuEvent is published after every successful admin mutation.
type MenuEvent struct {
	Type       string    `json:"type"`
	CategoryID string    `json:"categoryId,omitempty"`
	ProductID  string    `json:"productId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event MenuEvent) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, MenuEvent) error { return nil }

// SNSEventPublisher sends menu events to an SNS topic.
type SNSEventPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
}

// NewEventPublisher returns a NoopPublisher when there is no client or topic.
func NewEventPublisher(client awspkg.SNSPublisher, topicArn string) EventPublisher {
	if client == nil || topicArn == "" {
		return NoopPublisher{}
	}
	return &SNSEventPublisher{client: client, topicArn: topicArn}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, event MenuEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.topicArn, body, map[string]string{"event_type": event.Type})
}

// publishAsync is best effort: failures are logged and never reach the caller.
func publishAsync(publisher EventPublisher, event MenuEvent) {
	if publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			zap.L().Warn("failed to publish menu event",
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	}()
}

func recordAsync(metrics MetricsRecorder, name string) {
	if metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.RecordCount(ctx, name, nil); err != nil {
			zap.L().Debug("failed to record metric", zap.String("metric", name), zap.Error(err))
		}
	}()
}

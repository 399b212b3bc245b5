package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/jacoubbakhouche/foufou-api/internal/domain"
)

// Event kinds understood by the push relay worker.
const (
	KindOrderPlaced        = "order_placed"
	KindOrderStatusChanged = "order_status_changed"
	KindChatMessage        = "chat_message"
)

// Audience selects who receives the push notification.
const (
	AudienceAdmins   = "admins"
	AudienceCustomer = "customer"
)

// Event is the payload relayed to the push notification topic. Title and body
// carry both storefront languages so the relay can localise per device.
type Event struct {
	Kind        string               `json:"kind"`
	Audience    string               `json:"audience"`
	CustomerID  string               `json:"customerId,omitempty"`
	OrderID     string               `json:"orderId,omitempty"`
	OrderNumber string               `json:"orderNumber,omitempty"`
	ThreadID    string               `json:"threadId,omitempty"`
	Title       domain.LocalizedText `json:"title"`
	Body        domain.LocalizedText `json:"body"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

// Publisher relays push notification events to interested workers.
type Publisher interface {
	Publish(ctx context.Context, event Event) (string, error)
}

// PublisherFunc adapts ordinary functions to Publisher.
type PublisherFunc func(ctx context.Context, event Event) (string, error)

// Publish invokes the wrapped function.
func (f PublisherFunc) Publish(ctx context.Context, event Event) (string, error) {
	return f(ctx, event)
}

// PubSubPublisher publishes notification events to a Pub/Sub topic.
type PubSubPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubPublisher constructs a Pub/Sub backed notification publisher.
func NewPubSubPublisher(topic *pubsub.Topic) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("notify publisher: topic is required")
	}
	return &PubSubPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// Publish enqueues the event on the configured topic and returns the server
// assigned message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("notify publisher: not initialised")
	}
	if strings.TrimSpace(event.Kind) == "" {
		return "", errors.New("notify publisher: event kind is required")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal notify event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "kind", event.Kind)
	setAttr(attrs, "audience", event.Audience)
	setAttr(attrs, "customerId", event.CustomerID)
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "threadId", event.ThreadID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish notify event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

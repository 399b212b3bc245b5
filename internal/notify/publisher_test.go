package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jacoubbakhouche/foufou-api/internal/domain"
)

func TestPubSubPublisherPublishesEvent(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "order-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubPublisher: %v", err)
	}

	occurredAt := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	event := Event{
		Kind:        KindOrderPlaced,
		Audience:    AudienceAdmins,
		CustomerID:  "cust-1",
		OrderID:     "ord_01",
		OrderNumber: "FF-2025-000042",
		Title:       domain.LocalizedText{French: "Nouvelle commande", Arabic: "طلب جديد"},
		Body:        domain.LocalizedText{French: "Commande FF-2025-000042", Arabic: "الطلب FF-2025-000042"},
		OccurredAt:  occurredAt,
	}

	if _, err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload Event
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrderNumber != event.OrderNumber || payload.Title.Arabic != event.Title.Arabic {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["kind"]; attr != KindOrderPlaced {
		t.Fatalf("expected kind attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["audience"]; attr != AudienceAdmins {
		t.Fatalf("expected audience attribute, got %q", attr)
	}
	if _, ok := messages[0].Attributes["title"]; ok {
		t.Fatalf("title attribute should not be present")
	}
}

func TestPubSubPublisherRequiresKind(t *testing.T) {
	publisher := &PubSubPublisher{topic: &pubsub.Topic{}, marshal: json.Marshal}
	if _, err := publisher.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected error for missing kind")
	}
}

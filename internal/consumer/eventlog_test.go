package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// fakeEventStore collapses on the natural (pk, sk) key like the events
// table does.
type fakeEventStore struct {
	mu   sync.Mutex
	rows map[string]models.EventRecord
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{rows: make(map[string]models.EventRecord)}
}

func (s *fakeEventStore) Insert(ctx context.Context, rec models.EventRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.PK + "/" + rec.SK
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.rows[key] = rec
	return true, nil
}

func orderDelivery(t *testing.T, ev models.OrderEvent, eventType models.OrderEventType, at time.Time) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return amqp.Delivery{
		RoutingKey: eventType.RoutingKey(),
		Headers:    amqp.Table{"eventType": string(eventType)},
		MessageId:  "msg-1",
		Timestamp:  at,
		Body:       body,
	}
}

func TestEventLogWritesOrderAuditRow(t *testing.T) {
	store := newFakeEventStore()
	c := NewEventLogConsumer(store, 5*time.Minute)

	ev := models.OrderEvent{
		Email:        "customer@example.com",
		OrderID:      "o1",
		ProductCodes: []string{"C1"},
		RequestID:    "req-1",
	}
	msg := orderDelivery(t, ev, models.OrderCreated, time.UnixMilli(1700000000000))

	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rec, ok := store.rows["#order_o1/CREATED#1700000000000"]
	if !ok {
		t.Fatalf("expected audit row, have %+v", store.rows)
	}
	if rec.Email != "customer@example.com" || rec.EventType != "CREATED" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Info["messageId"] != "msg-1" {
		t.Fatalf("expected message id in info: %+v", rec.Info)
	}
}

func TestEventLogIdenticalRedeliveryCollapses(t *testing.T) {
	store := newFakeEventStore()
	c := NewEventLogConsumer(store, 5*time.Minute)

	ev := models.OrderEvent{Email: "a@b.c", OrderID: "o2", RequestID: "req-2"}
	msg := orderDelivery(t, ev, models.OrderCreated, time.UnixMilli(1700000000000))

	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected exactly one audit row, got %d", len(store.rows))
	}
}

func TestEventLogWritesProductAuditRow(t *testing.T) {
	store := newFakeEventStore()
	c := NewEventLogConsumer(store, 5*time.Minute)

	ev := models.ProductEvent{
		RequestID:    "req-3",
		EventType:    models.ProductUpdated,
		ProductID:    "p1",
		ProductCode:  "C0D4",
		ProductPrice: 9.9,
		Email:        "actor@example.com",
	}
	body, _ := json.Marshal(ev)
	msg := amqp.Delivery{
		RoutingKey: models.ProductUpdated.RoutingKey(),
		Headers:    amqp.Table{"eventType": string(models.ProductUpdated)},
		Timestamp:  time.UnixMilli(1700000000000),
		Body:       body,
	}

	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if _, ok := store.rows["#product_C0D4/PRODUCT_UPDATED#1700000000000"]; !ok {
		t.Fatalf("expected product audit row, have %+v", store.rows)
	}
}

func TestEventLogRejectsUnknownRoutingKey(t *testing.T) {
	c := NewEventLogConsumer(newFakeEventStore(), time.Minute)

	msg := amqp.Delivery{RoutingKey: "invoice.created", Body: []byte("{}")}
	if err := c.Handle(context.Background(), msg); err == nil {
		t.Fatalf("expected error for unknown routing key")
	}
}

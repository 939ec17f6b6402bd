package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/messaging"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

type republished struct {
	exchange   string
	routingKey string
	body       []byte
	headers    amqp.Table
}

type fakeRepublisher struct {
	published []republished
	fail      bool
}

func (r *fakeRepublisher) Publish(ctx context.Context, exchange, routingKey string, body []byte, messageID string, headers amqp.Table) error {
	if r.fail {
		return errors.New("broker unavailable")
	}
	r.published = append(r.published, republished{exchange: exchange, routingKey: routingKey, body: body, headers: headers})
	return nil
}

type failingSender struct{ calls int }

func (s *failingSender) Send(event models.OrderEvent) error {
	s.calls++
	return errors.New("smtp down")
}

func emailDelivery(t *testing.T, ack *fakeAcknowledger, retries int) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(models.OrderEvent{Email: "a@b.c", OrderID: "o1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	headers := amqp.Table{}
	if retries > 0 {
		headers["x-retry-count"] = int32(retries)
	}
	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "order.created",
		Headers:      headers,
		MessageId:    "msg-1",
		Body:         body,
	}
}

func TestEmailSuccessAcks(t *testing.T) {
	ack := &fakeAcknowledger{}
	c := NewEmailConsumer(&fakeRepublisher{}, LogSender{}, messaging.QueueEmail, 3)

	c.Handle(emailDelivery(t, ack, 0))

	if ack.acks != 1 || ack.nacks != 0 {
		t.Fatalf("expected one ack, got acks=%d nacks=%d", ack.acks, ack.nacks)
	}
}

func TestEmailFailureRepublishesWithCount(t *testing.T) {
	ack := &fakeAcknowledger{}
	mq := &fakeRepublisher{}
	c := NewEmailConsumer(mq, &failingSender{}, messaging.QueueEmail, 3)

	c.Handle(emailDelivery(t, ack, 0))

	if len(mq.published) != 1 {
		t.Fatalf("expected one republish, got %d", len(mq.published))
	}
	if mq.published[0].headers["x-retry-count"] != int32(1) {
		t.Fatalf("expected retry count 1, got %v", mq.published[0].headers["x-retry-count"])
	}
	// the original delivery is settled, not dead-lettered
	if ack.acks != 1 || ack.nacks != 0 {
		t.Fatalf("expected ack after republish, got acks=%d nacks=%d", ack.acks, ack.nacks)
	}
}

func TestEmailRetryStaysOffTheFanOutExchange(t *testing.T) {
	ack := &fakeAcknowledger{}
	mq := &fakeRepublisher{}
	c := NewEmailConsumer(mq, &failingSender{}, messaging.QueueEmail, 3)

	c.Handle(emailDelivery(t, ack, 0))

	if len(mq.published) != 1 {
		t.Fatalf("expected one republish, got %d", len(mq.published))
	}
	// A retry addressed to the fan-out exchange under order.created
	// would re-deliver the event to the audit and billing queues. It
	// must go through the default exchange straight back to our queue.
	if mq.published[0].exchange != "" {
		t.Fatalf("retry must use the default exchange, got %q", mq.published[0].exchange)
	}
	if mq.published[0].routingKey != messaging.QueueEmail {
		t.Fatalf("retry must target the email queue, got %q", mq.published[0].routingKey)
	}
}

func TestEmailThirdFailureDeadLetters(t *testing.T) {
	ack := &fakeAcknowledger{}
	mq := &fakeRepublisher{}
	c := NewEmailConsumer(mq, &failingSender{}, messaging.QueueEmail, 3)

	// Two prior attempts recorded in the header: this is attempt 3.
	c.Handle(emailDelivery(t, ack, 2))

	if len(mq.published) != 0 {
		t.Fatalf("attempt budget spent, must not republish a 4th attempt")
	}
	if ack.nacks != 1 || ack.requeue {
		t.Fatalf("expected nack without requeue, got nacks=%d requeue=%v", ack.nacks, ack.requeue)
	}
}

func TestEmailMalformedRecordGoesStraightToDLQ(t *testing.T) {
	ack := &fakeAcknowledger{}
	mq := &fakeRepublisher{}
	c := NewEmailConsumer(mq, LogSender{}, messaging.QueueEmail, 3)

	c.Handle(amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "order.created",
		Body:         []byte("not json"),
	})

	if ack.nacks != 1 || ack.requeue {
		t.Fatalf("malformed record must dead-letter, got nacks=%d requeue=%v", ack.nacks, ack.requeue)
	}
	if len(mq.published) != 0 {
		t.Fatalf("malformed record must not be retried")
	}
}

func TestEmailRepublishFailureDeadLetters(t *testing.T) {
	ack := &fakeAcknowledger{}
	c := NewEmailConsumer(&fakeRepublisher{fail: true}, &failingSender{}, messaging.QueueEmail, 3)

	c.Handle(emailDelivery(t, ack, 0))

	if ack.nacks != 1 || ack.requeue {
		t.Fatalf("expected dead-letter when requeue fails, got nacks=%d requeue=%v", ack.nacks, ack.requeue)
	}
}

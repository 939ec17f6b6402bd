package models

import (
	"fmt"
	"time"
)

// ProductEventType labels product lifecycle notifications.
type ProductEventType string

const (
	ProductCreated ProductEventType = "PRODUCT_CREATED"
	ProductUpdated ProductEventType = "PRODUCT_UPDATED"
	ProductDeleted ProductEventType = "PRODUCT_DELETED"
)

// RoutingKey maps the event type to its broker routing key.
func (t ProductEventType) RoutingKey() string {
	switch t {
	case ProductCreated:
		return "product.created"
	case ProductUpdated:
		return "product.updated"
	case ProductDeleted:
		return "product.deleted"
	}
	return ""
}

func (t ProductEventType) Valid() bool {
	return t.RoutingKey() != ""
}

// OrderEventType labels order lifecycle notifications. Orders have no
// update operation, so only create and delete exist.
type OrderEventType string

const (
	OrderCreated OrderEventType = "CREATED"
	OrderDeleted OrderEventType = "DELETED"
)

func (t OrderEventType) RoutingKey() string {
	switch t {
	case OrderCreated:
		return "order.created"
	case OrderDeleted:
		return "order.deleted"
	}
	return ""
}

func (t OrderEventType) Valid() bool {
	return t.RoutingKey() != ""
}

// ProductEvent is emitted after every product mutation.
type ProductEvent struct {
	RequestID    string           `json:"requestId"`
	EventType    ProductEventType `json:"eventType"`
	ProductID    string           `json:"productId"`
	ProductCode  string           `json:"productCode"`
	ProductPrice float64          `json:"productPrice"`
	Email        string           `json:"email"`
}

// OrderEvent is emitted after order create and delete.
type OrderEvent struct {
	Email        string        `json:"email"`
	OrderID      string        `json:"orderId"`
	Billing      OrderBilling  `json:"billing"`
	Shipping     OrderShipping `json:"shipping"`
	ProductCodes []string      `json:"productCodes"`
	RequestID    string        `json:"requestId"`
}

// EventRecord is one append-only audit row. The (PK, SK) pair is the
// natural key: redelivery of the exact same message collapses, while a
// near-duplicate with a different timestamp lands as a distinct row.
type EventRecord struct {
	PK        string         `json:"pk"`
	SK        string         `json:"sk"`
	TTL       int64          `json:"ttl"`
	Email     string         `json:"email"`
	CreatedAt int64          `json:"createdAt"`
	RequestID string         `json:"requestId"`
	EventType string         `json:"eventType"`
	Info      map[string]any `json:"info"`
}

// NewProductEventRecord builds the audit row for a product event.
// Rows expire after the retention window.
func NewProductEventRecord(ev ProductEvent, at time.Time, retention time.Duration) EventRecord {
	ts := at.UnixMilli()
	return EventRecord{
		PK:        fmt.Sprintf("#product_%s", ev.ProductCode),
		SK:        fmt.Sprintf("%s#%d", ev.EventType, ts),
		TTL:       at.Add(retention).Unix(),
		Email:     ev.Email,
		CreatedAt: ts,
		RequestID: ev.RequestID,
		EventType: string(ev.EventType),
		Info: map[string]any{
			"productId": ev.ProductID,
			"price":     ev.ProductPrice,
		},
	}
}

// NewOrderEventRecord builds the audit row for an order event.
func NewOrderEventRecord(ev OrderEvent, eventType OrderEventType, messageID string, at time.Time, retention time.Duration) EventRecord {
	ts := at.UnixMilli()
	return EventRecord{
		PK:        fmt.Sprintf("#order_%s", ev.OrderID),
		SK:        fmt.Sprintf("%s#%d", eventType, ts),
		TTL:       at.Add(retention).Unix(),
		Email:     ev.Email,
		CreatedAt: ts,
		RequestID: ev.RequestID,
		EventType: string(eventType),
		Info: map[string]any{
			"orderId":      ev.OrderID,
			"productCodes": ev.ProductCodes,
			"messageId":    messageID,
		},
	}
}

package messaging

// Queue and exchange names shared by publishers and consumers. Each
// consumer owns its queue; fan-out happens at the exchange, filtering
// at the bindings.
const (
	QueueAudit    = "events.audit"
	QueueBilling  = "events.billing"
	QueueEmail    = "events.email"
	QueueEmailDLQ = "events.email.dlq"

	DeadLetterExchange = "ecommerce.dlx"

	// BindAll subscribes a queue to every event type.
	BindAll = "#"

	BindOrderCreated = "order.created"
)

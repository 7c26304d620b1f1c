package service

const (
	EventOrderSubmitted         = "order.submitted"
	EventPurchaseOrderGenerated = "purchase_order.generated"
	EventCatalogAccessSynced    = "catalog_access.synced"
)

// EventPublisher pushes admin dashboard notifications.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

// NoopPublisher discards every event.
func NoopPublisher() EventPublisher {
	return noopPublisher{}
}

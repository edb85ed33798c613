package market

const (
	TopicOrderCreated = "market.order.created"
	TopicOrderSettled = "market.order.settled"
)

// Partition key = order_id, so every event for one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

package orders

const TopicOrderRecorded = "order.recorded"

// Partition key = payment_ref so redeliveries of one payment stay ordered.
func PartitionKey(paymentRef string) []byte { return []byte(paymentRef) }

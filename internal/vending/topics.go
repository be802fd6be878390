package vending

const (
	TopicDeposits  = "vending.deposits"
	TopicPurchases = "vending.purchases"
)

// Partition key = account_id, so all events of one account keep their order.
func PartitionKey(accountID string) []byte { return []byte(accountID) }

package vending

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusCommitted  Status = "COMMITTED"
	StatusRolledBack Status = "ROLLED_BACK"
)

// A transaction is terminal once committed or rolled back.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusCommitted: true, StatusRolledBack: true},
	StatusCommitted:  {},
	StatusRolledBack: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Transaction records the outcome of one purchase attempt: which lines were
// fulfilled (in fulfillment order), the change paid out, and whether the
// whole attempt committed or was rolled back. It is mutated only by the
// machine during the single BuyProducts call that created it.
type Transaction struct {
	Account   *Account
	BuyOrder  []OrderItem
	Purchased []OrderDetailedItem
	Change    *Money
	Status    Status
}

func newTransaction(account *Account, buyOrder []OrderItem) *Transaction {
	return &Transaction{
		Account:  account,
		BuyOrder: buyOrder,
		Status:   StatusPending,
	}
}

// Total is the sum over fulfilled lines only; skipped lines contribute
// nothing.
func (t *Transaction) Total() int {
	total := 0
	for _, item := range t.Purchased {
		total += item.Quantity * item.CostCents
	}
	return total
}

func (t *Transaction) recordPurchased(item *OrderDetailedItem) {
	if item != nil {
		t.Purchased = append(t.Purchased, *item)
	}
}

func (t *Transaction) recordChange(change Money) {
	t.Change = &change
}

func (t *Transaction) commit() {
	if CanTransition(t.Status, StatusCommitted) {
		t.Status = StatusCommitted
	}
}

func (t *Transaction) rollback() {
	if CanTransition(t.Status, StatusRolledBack) {
		t.Status = StatusRolledBack
	}
}

package vending

import "fmt"

// Machine is the aggregate root: it owns the loaded products, the buyer
// accounts and the coin float used to pay change. All methods assume the
// caller serializes access (see Service); the machine itself does no locking
// and no I/O.
type Machine struct {
	id       string
	products []*Product
	accounts []*Account
	money    Money // the float
}

func NewMachine(id string) *Machine {
	return &Machine{id: id}
}

// RestoreMachine rebuilds the aggregate from a persisted snapshot.
func RestoreMachine(id string, money Money, products []*Product, accounts []*Account) *Machine {
	return &Machine{id: id, money: money, products: products, accounts: accounts}
}

func (m *Machine) ID() string { return m.id }

// Money returns the machine's own coin float.
func (m *Machine) Money() Money { return m.money }

func (m *Machine) Products() []*Product { return m.products }

func (m *Machine) Accounts() []*Account { return m.accounts }

// LoadProduct appends a product to the inventory. Duplicate ids are not
// rejected here; GetProduct resolves to the first match.
func (m *Machine) LoadProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: no product given", ErrInvalidProduct)
	}
	if product.Available <= 0 {
		return fmt.Errorf("%w: no units to load", ErrInvalidProduct)
	}
	if product.CostCents <= 0 {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidProduct)
	}
	m.products = append(m.products, product)
	return nil
}

// UnloadProduct removes a product by id and returns it, or nil when the id
// is unknown.
func (m *Machine) UnloadProduct(productID string) *Product {
	for i, p := range m.products {
		if p.ID == productID {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return p
		}
	}
	return nil
}

// GetProduct returns nil when the id is unknown.
func (m *Machine) GetProduct(productID string) *Product {
	for _, p := range m.products {
		if p.ID == productID {
			return p
		}
	}
	return nil
}

func (m *Machine) ContainsProduct(productID string) bool {
	return m.GetProduct(productID) != nil
}

func (m *Machine) RegisterAccount(account *Account) error {
	if account == nil {
		return fmt.Errorf("%w: no account given", ErrInvalidAccount)
	}
	m.accounts = append(m.accounts, account)
	return nil
}

// RemoveAccount is a no-op when the id is unknown.
func (m *Machine) RemoveAccount(accountID string) {
	for i, a := range m.accounts {
		if a.ID() == accountID {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return
		}
	}
}

// GetAccount returns nil when the id is unknown.
func (m *Machine) GetAccount(accountID string) *Account {
	for _, a := range m.accounts {
		if a.ID() == accountID {
			return a
		}
	}
	return nil
}

// MakeDeposit credits one coin to the account and drops the same coin into
// the float. Returns the new balance in cents.
func (m *Machine) MakeDeposit(accountID string, money Money) (int, error) {
	account := m.GetAccount(accountID)
	if account == nil {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err := account.MakeDeposit(money); err != nil {
		return 0, err
	}
	m.money = m.money.Add(money)
	return account.Deposit(), nil
}

// CancelDeposit pays the account's full balance back out of the float and
// zeroes the account. It pays whatever coins the float can produce, even if
// that falls short of the balance.
func (m *Machine) CancelDeposit(accountID string) (Money, error) {
	account := m.GetAccount(accountID)
	if account == nil {
		return Money{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	change, err := m.returnChange(account.Deposit())
	if err != nil {
		return Money{}, err
	}
	if err := account.Debit(account.Deposit()); err != nil {
		return Money{}, err
	}
	return change, nil
}

// BuyProduct is the single-line convenience wrapper. Unlike the multi-line
// path, an unknown product id fails up front.
func (m *Machine) BuyProduct(accountID, productID string, quantity int) (*Transaction, error) {
	product := m.GetProduct(productID)
	if product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	order := []OrderItem{{ProductID: productID, Quantity: quantity, CostCents: product.CostCents}}
	return m.BuyProducts(accountID, order)
}

// BuyProducts runs one purchase attempt over the given lines, in order.
// Lines are fulfilled independently: a line whose product is missing, whose
// cost exceeds the remaining balance or whose quantity exceeds stock is
// skipped without touching money or inventory, while later lines still run
// against the already-reduced balance. Afterwards the remaining balance is
// paid out as change from the float; if the float cannot produce it exactly,
// every fulfilled line is undone and the transaction is rolled back. The
// returned transaction is the single source of truth for what happened.
func (m *Machine) BuyProducts(accountID string, buyOrder []OrderItem) (*Transaction, error) {
	account := m.GetAccount(accountID)
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	transaction := newTransaction(account, buyOrder)

	for _, item := range buyOrder {
		fulfilled, err := m.buyItem(item, account)
		if err != nil {
			return nil, err
		}
		transaction.recordPurchased(fulfilled)
	}

	if err := m.returnChangeIfAny(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// buyItem fulfills one line or returns nil to skip it.
func (m *Machine) buyItem(item OrderItem, account *Account) (*OrderDetailedItem, error) {
	product := m.GetProduct(item.ProductID)
	if product == nil {
		return nil, nil
	}

	debitAmount := item.Quantity * item.CostCents
	if !account.CanDebit(debitAmount) || !product.CanSubtract(item.Quantity) {
		return nil, nil
	}

	if err := account.Debit(debitAmount); err != nil {
		return nil, err
	}
	if err := product.Subtract(item.Quantity); err != nil {
		return nil, err
	}
	return &OrderDetailedItem{OrderItem: item, Product: product}, nil
}

func (m *Machine) returnChangeIfAny(transaction *Transaction) error {
	balance := transaction.Account.Deposit()
	if balance == 0 {
		transaction.commit()
		return nil
	}

	if !m.CanReturnChange(balance) {
		refunded, err := m.refundPurchase(transaction)
		if err != nil {
			return err
		}
		transaction.recordChange(refunded)
		transaction.rollback()
		return nil
	}

	change, err := m.returnChange(balance)
	if err != nil {
		return err
	}
	transaction.recordChange(change)
	transaction.commit()
	return nil
}

// refundPurchase undoes every fulfilled line: inventory goes back, the spent
// total is credited to the account, and the float pays out what it can of
// the total as physically returned coins.
func (m *Machine) refundPurchase(transaction *Transaction) (Money, error) {
	for _, item := range transaction.Purchased {
		if product := m.GetProduct(item.ProductID); product != nil {
			product.Add(item.Quantity)
		}
	}

	refund, err := m.returnChange(transaction.Total())
	if err != nil {
		return Money{}, err
	}
	transaction.Account.Refund(transaction.Total())
	return refund, nil
}

// returnChange takes up to amountCents out of the float, greedily.
func (m *Machine) returnChange(amountCents int) (Money, error) {
	change := m.money.Distribute(amountCents)
	remaining, err := m.money.Sub(change)
	if err != nil {
		return Money{}, err
	}
	m.money = remaining
	return change, nil
}

// CanReturnChange reports whether the float holds coins for exactly
// amountCents. Read-only.
func (m *Machine) CanReturnChange(amountCents int) bool {
	return m.money.Distribute(amountCents).Cents() == amountCents
}

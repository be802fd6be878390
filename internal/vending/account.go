package vending

import "fmt"

// Account is a buyer's coin ledger inside the machine. The deposit balance
// never goes negative: deposits only accept single authorized coins and
// debits beyond the balance are silent no-ops.
type Account struct {
	id      string
	deposit int // cents
}

func NewAccount(id string) *Account {
	return &Account{id: id}
}

// RestoreAccount rebuilds an account from a persisted snapshot.
func RestoreAccount(id string, depositCents int) *Account {
	return &Account{id: id, deposit: depositCents}
}

func (a *Account) ID() string { return a.id }

// Deposit returns the current balance in cents.
func (a *Account) Deposit() int { return a.deposit }

// MakeDeposit accepts exactly one coin of one authorized denomination per
// call. Anything else — mixed coins, several of the same coin, an empty
// bundle — is rejected, forcing callers to insert coins one at a time.
func (a *Account) MakeDeposit(money Money) error {
	if !isAuthorizedCoin(money) {
		return fmt.Errorf("%w: only a single 5, 10, 20, 50 or 100 cent coin can be inserted at a time", ErrUnauthorizedDenomination)
	}
	a.deposit += money.Cents()
	return nil
}

// Debit withdraws amountCents when the balance covers it; an insufficient
// balance leaves the account untouched. Callers check CanDebit first.
func (a *Account) Debit(amountCents int) error {
	if amountCents < 0 {
		return fmt.Errorf("%w: %d cents", ErrInvalidDebit, amountCents)
	}
	if a.CanDebit(amountCents) {
		a.deposit -= amountCents
	}
	return nil
}

func (a *Account) CanDebit(amountCents int) bool {
	return amountCents <= a.deposit
}

// Refund credits the balance unconditionally. Only used while rolling a
// purchase back.
func (a *Account) Refund(amountCents int) {
	a.deposit += amountCents
}

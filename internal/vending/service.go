package vending

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store is the persistence flush point. Save is called with the service
// lock held, after every mutating call; the in-memory aggregate stays
// authoritative between flushes.
type Store interface {
	Save(ctx context.Context, m *Machine) error
}

// NopStore is used when no durability is wanted (tests, throwaway runs).
type NopStore struct{}

func (NopStore) Save(context.Context, *Machine) error { return nil }

// Service is the single-writer boundary around one machine aggregate.
// Debit/credit and float subtraction are check-then-act sequences, so every
// mutating operation holds the write lock for its whole duration; per-account
// locking would not do, since purchases also touch the shared float.
type Service struct {
	mu      sync.RWMutex
	machine *Machine
	store   Store
}

func NewService(machine *Machine, store Store) *Service {
	if store == nil {
		store = NopStore{}
	}
	return &Service{machine: machine, store: store}
}

func (s *Service) LoadProduct(ctx context.Context, product *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.LoadProduct(product); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *Service) UnloadProduct(ctx context.Context, productID string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := s.machine.UnloadProduct(productID)
	if product == nil {
		return nil, nil
	}
	if err := s.flush(ctx); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces the catalog attributes of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, productID, name string, costCents, available int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := s.machine.GetProduct(productID)
	if product == nil {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if costCents <= 0 {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidProduct)
	}
	product.Name = name
	product.CostCents = costCents
	product.Available = available
	product.UpdatedAt = time.Now().UTC()
	return s.flush(ctx)
}

// GetProduct returns a copy, or nil when the id is unknown.
func (s *Service) GetProduct(productID string) *Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product := s.machine.GetProduct(productID)
	if product == nil {
		return nil
	}
	copied := *product
	return &copied
}

func (s *Service) ListProducts() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.machine.Products()))
	for _, p := range s.machine.Products() {
		out = append(out, *p)
	}
	return out
}

func (s *Service) CreateAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.RegisterAccount(NewAccount(accountID)); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *Service) RemoveAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.RemoveAccount(accountID)
	return s.flush(ctx)
}

// MakeDeposit returns the account's new balance in cents.
func (s *Service) MakeDeposit(ctx context.Context, accountID string, money Money) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.machine.MakeDeposit(accountID, money)
	if err != nil {
		return 0, err
	}
	return balance, s.flush(ctx)
}

// CancelDeposit returns the coins paid back out of the float.
func (s *Service) CancelDeposit(ctx context.Context, accountID string) (Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, err := s.machine.CancelDeposit(accountID)
	if err != nil {
		return Money{}, err
	}
	return change, s.flush(ctx)
}

func (s *Service) BuyProduct(ctx context.Context, accountID, productID string, quantity int) (*TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, err := s.machine.BuyProduct(accountID, productID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.flush(ctx); err != nil {
		return nil, err
	}
	return resultOf(transaction), nil
}

func (s *Service) BuyProducts(ctx context.Context, accountID string, buyOrder []OrderItem) (*TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, err := s.machine.BuyProducts(accountID, buyOrder)
	if err != nil {
		return nil, err
	}
	if err := s.flush(ctx); err != nil {
		return nil, err
	}
	return resultOf(transaction), nil
}

func (s *Service) CanReturnChange(amountCents int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.CanReturnChange(amountCents)
}

// View is the per-account read model: the caller's own deposit plus the
// loaded products.
func (s *Service) View(accountID string) (*MachineView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account := s.machine.GetAccount(accountID)
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	view := &MachineView{DepositCents: account.Deposit()}
	for _, p := range s.machine.Products() {
		view.Products = append(view.Products, *p)
	}
	return view, nil
}

func (s *Service) flush(ctx context.Context) error {
	return s.store.Save(ctx, s.machine)
}

type MachineView struct {
	DepositCents int
	Products     []Product
}

// PurchasedLine is a fulfilled line detached from the live aggregate.
type PurchasedLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	CostCents   int    `json:"cost_cents"`
}

// TransactionResult is a value snapshot of a finished transaction, safe to
// read after the service lock is released.
type TransactionResult struct {
	AccountID    string
	Status       Status
	TotalCents   int
	BalanceCents int
	Change       Money
	Purchased    []PurchasedLine
}

func resultOf(t *Transaction) *TransactionResult {
	result := &TransactionResult{
		AccountID:    t.Account.ID(),
		Status:       t.Status,
		TotalCents:   t.Total(),
		BalanceCents: t.Account.Deposit(),
	}
	if t.Change != nil {
		result.Change = *t.Change
	}
	for _, item := range t.Purchased {
		result.Purchased = append(result.Purchased, PurchasedLine{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			CostCents:   item.CostCents,
		})
	}
	return result
}

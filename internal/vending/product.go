package vending

import (
	"fmt"
	"time"
)

// Product is a mutable inventory entry owned by the machine once loaded.
// Available is only ever changed through Add/Subtract, which keep it >= 0.
type Product struct {
	ID        string
	Name      string
	CostCents int
	Available int
	SellerID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProduct(id, name string, costCents, available int, sellerID string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id,
		Name:      name,
		CostCents: costCents,
		Available: available,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subtract removes qty units. Negative quantities are an error; asking for
// more than is available is a silent no-op, callers check CanSubtract first.
func (p *Product) Subtract(qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: cannot subtract %d units", ErrInvalidAmount, qty)
	}
	if p.CanSubtract(qty) {
		p.Available -= qty
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (p *Product) CanSubtract(qty int) bool {
	return qty <= p.Available
}

func (p *Product) Add(qty int) {
	p.Available += qty
	p.UpdatedAt = time.Now().UTC()
}

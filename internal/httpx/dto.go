package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendinglab/vending-machine/internal/auth"
	"github.com/vendinglab/vending-machine/internal/users"
	"github.com/vendinglab/vending-machine/internal/vending"
)

// MoneyDTO is the coin wire format: five non-negative counts plus the
// derived value, 2-decimal precision, computed server-side.
type MoneyDTO struct {
	FiveCent    int     `json:"five_cent"`
	TenCent     int     `json:"ten_cent"`
	TwentyCent  int     `json:"twenty_cent"`
	FiftyCent   int     `json:"fifty_cent"`
	HundredCent int     `json:"hundred_cent"`
	Value       float64 `json:"value"`
}

func (d MoneyDTO) ToMoney() (vending.Money, error) {
	return vending.NewMoney(d.FiveCent, d.TenCent, d.TwentyCent, d.FiftyCent, d.HundredCent)
}

func FromMoney(m vending.Money) MoneyDTO {
	return MoneyDTO{
		FiveCent:    m.FiveCent,
		TenCent:     m.TenCent,
		TwentyCent:  m.TwentyCent,
		FiftyCent:   m.FiftyCent,
		HundredCent: m.HundredCent,
		Value:       centsValue(m.Cents()),
	}
}

func centsValue(cents int) float64 { return float64(cents) / 100 }

type ProductDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CostCents int     `json:"cost_cents"`
	Cost      float64 `json:"cost"`
	Available int     `json:"available"`
	SellerID  string  `json:"seller_id"`
}

func FromProduct(p vending.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		CostCents: p.CostCents,
		Cost:      centsValue(p.CostCents),
		Available: p.Available,
		SellerID:  p.SellerID,
	}
}

type TransactionDTO struct {
	Status         vending.Status          `json:"status"`
	TotalCents     int                     `json:"total_cents"`
	Total          float64                 `json:"total"`
	Change         MoneyDTO                `json:"change"`
	BalanceCents   int                     `json:"balance_cents"`
	PurchasedItems []vending.PurchasedLine `json:"purchased_items"`
}

func FromTransaction(t *vending.TransactionResult) TransactionDTO {
	return TransactionDTO{
		Status:         t.Status,
		TotalCents:     t.TotalCents,
		Total:          centsValue(t.TotalCents),
		Change:         FromMoney(t.Change),
		BalanceCents:   t.BalanceCents,
		PurchasedItems: t.Purchased,
	}
}

type UserDTO struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Deposit  float64 `json:"deposit"`
}

func FromUser(u *users.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		Deposit:  centsValue(u.DepositCents),
	}
}

type MachineViewDTO struct {
	DepositCents int          `json:"deposit_cents"`
	Deposit      float64      `json:"deposit"`
	Products     []ProductDTO `json:"products"`
}

func FromMachineView(v *vending.MachineView) MachineViewDTO {
	dto := MachineViewDTO{
		DepositCents: v.DepositCents,
		Deposit:      centsValue(v.DepositCents),
		Products:     make([]ProductDTO, 0, len(v.Products)),
	}
	for _, p := range v.Products {
		dto.Products = append(dto.Products, FromProduct(p))
	}
	return dto
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates domain failures into status codes. Business no-ops
// never reach here; they come back as ordinary payloads.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, vending.ErrAccountNotFound),
		errors.Is(err, vending.ErrProductNotFound),
		errors.Is(err, users.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, vending.ErrInvalidAmount),
		errors.Is(err, vending.ErrInvalidDebit),
		errors.Is(err, vending.ErrInvalidProduct),
		errors.Is(err, vending.ErrUnauthorizedDenomination),
		errors.Is(err, users.ErrInvalidRole),
		errors.Is(err, users.ErrUserExists):
		code = http.StatusBadRequest
	case errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInvalidToken):
		code = http.StatusUnauthorized
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

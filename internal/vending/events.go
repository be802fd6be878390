package vending

import (
	"encoding/json"
	"time"
)

const (
	EventDepositMade       = "DepositMade"
	EventDepositCancelled  = "DepositCancelled"
	EventPurchaseCompleted = "PurchaseCompleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "vending-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually account_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload per event ----

type CoinCounts struct {
	FiveCent    int `json:"five_cent"`
	TenCent     int `json:"ten_cent"`
	TwentyCent  int `json:"twenty_cent"`
	FiftyCent   int `json:"fifty_cent"`
	HundredCent int `json:"hundred_cent"`
}

func CountsOf(m Money) CoinCounts {
	return CoinCounts{
		FiveCent:    m.FiveCent,
		TenCent:     m.TenCent,
		TwentyCent:  m.TwentyCent,
		FiftyCent:   m.FiftyCent,
		HundredCent: m.HundredCent,
	}
}

type DepositMadePayload struct {
	AccountID    string     `json:"account_id"`
	Coin         CoinCounts `json:"coin"`
	BalanceCents int        `json:"balance_cents"`
}

type DepositCancelledPayload struct {
	AccountID     string     `json:"account_id"`
	Returned      CoinCounts `json:"returned"`
	ReturnedCents int        `json:"returned_cents"`
}

type PurchaseCompletedPayload struct {
	AccountID    string          `json:"account_id"`
	Status       Status          `json:"status"` // COMMITTED | ROLLED_BACK
	TotalCents   int             `json:"total_cents"`
	ChangeCents  int             `json:"change_cents"`
	BalanceCents int             `json:"balance_cents"`
	Items        []PurchasedLine `json:"items,omitempty"`
}

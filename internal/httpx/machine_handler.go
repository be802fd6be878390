package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/vendinglab/vending-machine/internal/kafka"
	"github.com/vendinglab/vending-machine/internal/metrics"
	"github.com/vendinglab/vending-machine/internal/redisx"
	"github.com/vendinglab/vending-machine/internal/users"
	"github.com/vendinglab/vending-machine/internal/vending"
)

// Publisher is what the handlers need from a kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type MachineHandler struct {
	Machine   *vending.Service
	Redis     *redis.Client
	Deposits  Publisher
	Purchases Publisher
	Service   string
	Auth      func(http.Handler) http.Handler
}

type DepositReq struct {
	Coin MoneyDTO `json:"coin"`
}

type DepositResp struct {
	BalanceCents int     `json:"balance_cents"`
	Balance      float64 `json:"balance"`
}

type BuyReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type BuyBulkReq struct {
	Items []vending.OrderItem `json:"items"`
}

type CancelDepositResp struct {
	Returned MoneyDTO `json:"returned"`
}

func (h *MachineHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth)
		r.Get("/api/machine", h.getMachine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.Auth, RequireRole(string(users.RoleBuyer)))
		r.Post("/api/machine/deposit", h.makeDeposit)
		r.Post("/api/machine/deposit/reset", h.cancelDeposit)
		r.Post("/api/machine/buy", h.buyProduct)
		r.Post("/api/machine/buy/bulk", h.buyProducts)
	})
}

// getMachine serves the caller's view: own deposit plus products, cached per
// account and invalidated by every mutation.
func (h *MachineHandler) getMachine(w http.ResponseWriter, r *http.Request) {
	accountID := ClaimsFrom(r.Context()).Subject

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyMachineView, accountID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	view, err := h.Machine.View(accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	dto := FromMachineView(view)
	if b, err := json.Marshal(dto); err == nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLMachineView).Err()
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *MachineHandler) makeDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	coin, err := req.Coin.ToMoney()
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	accountID := ClaimsFrom(r.Context()).Subject
	balance, err := h.Machine.MakeDeposit(ctx, accountID, coin)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.DepositsTotal.Inc()
	_ = redisx.InvalidateMachineView(ctx, h.Redis, accountID)
	h.publish(h.Deposits, r, accountID, vending.EventDepositMade, vending.DepositMadePayload{
		AccountID:    accountID,
		Coin:         vending.CountsOf(coin),
		BalanceCents: balance,
	})

	writeJSON(w, http.StatusOK, DepositResp{BalanceCents: balance, Balance: centsValue(balance)})
}

func (h *MachineHandler) cancelDeposit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	accountID := ClaimsFrom(r.Context()).Subject
	returned, err := h.Machine.CancelDeposit(ctx, accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ChangeReturnedCents.Add(float64(returned.Cents()))
	_ = redisx.InvalidateMachineView(ctx, h.Redis, accountID)
	h.publish(h.Deposits, r, accountID, vending.EventDepositCancelled, vending.DepositCancelledPayload{
		AccountID:     accountID,
		Returned:      vending.CountsOf(returned),
		ReturnedCents: returned.Cents(),
	})

	writeJSON(w, http.StatusOK, CancelDepositResp{Returned: FromMoney(returned)})
}

func (h *MachineHandler) buyProduct(w http.ResponseWriter, r *http.Request) {
	var req BuyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	accountID := ClaimsFrom(r.Context()).Subject
	result, err := h.Machine.BuyProduct(ctx, accountID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	h.finishPurchase(ctx, w, r, accountID, result)
}

func (h *MachineHandler) buyProducts(w http.ResponseWriter, r *http.Request) {
	var req BuyBulkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing items"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	accountID := ClaimsFrom(r.Context()).Subject
	result, err := h.Machine.BuyProducts(ctx, accountID, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	h.finishPurchase(ctx, w, r, accountID, result)
}

func (h *MachineHandler) finishPurchase(ctx context.Context, w http.ResponseWriter, r *http.Request, accountID string, result *vending.TransactionResult) {
	metrics.PurchasesTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.ChangeReturnedCents.Add(float64(result.Change.Cents()))
	_ = redisx.InvalidateMachineView(ctx, h.Redis, accountID)
	h.publish(h.Purchases, r, accountID, vending.EventPurchaseCompleted, vending.PurchaseCompletedPayload{
		AccountID:    accountID,
		Status:       result.Status,
		TotalCents:   result.TotalCents,
		ChangeCents:  result.Change.Cents(),
		BalanceCents: result.BalanceCents,
		Items:        result.Purchased,
	})

	writeJSON(w, http.StatusOK, FromTransaction(result))
}

func (h *MachineHandler) publish(p Publisher, r *http.Request, accountID, eventType string, payload any) {
	if p == nil {
		return
	}
	ev := vending.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: accountID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(vending.PartitionKey(accountID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

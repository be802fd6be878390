// Package deposits mirrors machine account balances onto user profiles by
// consuming the domain events the API publishes, so the user records follow
// the ledger without coupling the purchase path to the users table.
package deposits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/vendinglab/vending-machine/internal/users"
	"github.com/vendinglab/vending-machine/internal/vending"
)

type Service struct {
	Users       users.Repo
	Redis       *redis.Client
	ServiceName string
}

const keyDedup = "dedup:%s:%s"

var redisTTLDedup = 48 * time.Hour

// HandleEvent is installed as the consumer handler for both the deposits and
// the purchases topic.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env vending.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup on event_id, redeliveries are expected
	dkey := fmt.Sprintf(keyDedup, s.ServiceName, env.EventID)
	if n, _ := s.Redis.Exists(ctx, dkey).Result(); n > 0 {
		return nil
	}

	var accountID string
	var balanceCents int
	switch env.EventType {
	case vending.EventDepositMade:
		var p vending.DepositMadePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		accountID, balanceCents = p.AccountID, p.BalanceCents
	case vending.EventDepositCancelled:
		var p vending.DepositCancelledPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		accountID, balanceCents = p.AccountID, 0
	case vending.EventPurchaseCompleted:
		var p vending.PurchaseCompletedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		accountID, balanceCents = p.AccountID, p.BalanceCents
	default:
		return nil // ignore
	}

	if err := s.Users.UpdateDeposit(ctx, accountID, balanceCents); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisTTLDedup).Err()
	return nil
}

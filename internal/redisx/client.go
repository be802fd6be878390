package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// InvalidateMachineView drops the cached view for one account. Cache misses
// fall through to the aggregate, so errors here are ignored by callers.
func InvalidateMachineView(ctx context.Context, rdb *redis.Client, accountID string) error {
	return rdb.Del(ctx, fmt.Sprintf(KeyMachineView, accountID)).Err()
}

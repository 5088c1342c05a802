package cache

import (
	"context"
	"fmt"
	"time"

	"medibook/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotHoldStore keeps short-lived per-user holds on slot buckets in
// Redis. A hold only guards against double submits; the database
// transaction stays authoritative for admission.
type SlotHoldStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewSlotHoldStore(client *redis.Client, ttl time.Duration) *SlotHoldStore {
	return &SlotHoldStore{client: client, ttl: ttl}
}

func (s *SlotHoldStore) Acquire(ctx context.Context, hospitalID, userID uuid.UUID, day time.Time, slotStartMin int) (bool, error) {
	return s.client.SetNX(ctx, holdKey(hospitalID, userID, day, slotStartMin), "held", s.ttl).Result()
}

func (s *SlotHoldStore) Release(ctx context.Context, hospitalID, userID uuid.UUID, day time.Time, slotStartMin int) error {
	return s.client.Del(ctx, holdKey(hospitalID, userID, day, slotStartMin)).Err()
}

func holdKey(hospitalID, userID uuid.UUID, day time.Time, slotStartMin int) string {
	return fmt.Sprintf("hold:hospital:%s:day:%s:slot:%d:user:%s",
		hospitalID, day.Format("2006-01-02"), slotStartMin, userID)
}

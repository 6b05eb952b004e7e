package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"myBetPartners/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss signals the caller should fall through to postgres.
var ErrCacheMiss = errors.New("house not cached")

const houseCacheTTL = 60 * time.Second

// cachedHouse carries the security token explicitly because the domain
// model's json tag hides it from marshalling.
type cachedHouse struct {
	House domain.PartnerHouse `json:"house"`
	Token string              `json:"token"`
}

// HouseCache is a read-through cache in front of the partner registry.
// Registry lookups run once per inbound postback, so even a short TTL
// absorbs most of the read load.
type HouseCache struct {
	client *redis.Client
}

func NewHouseCache(client *redis.Client) *HouseCache {
	return &HouseCache{
		client: client,
	}
}

func houseKey(slug string) string {
	return fmt.Sprintf("house:slug:%s", slug)
}

func (c *HouseCache) Get(ctx context.Context, slug string) (domain.PartnerHouse, error) {
	val, err := c.client.Get(ctx, houseKey(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PartnerHouse{}, ErrCacheMiss
		}
		return domain.PartnerHouse{}, fmt.Errorf("failed to read house from cache: %w", err)
	}

	var cached cachedHouse
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return domain.PartnerHouse{}, ErrCacheMiss
	}

	house := cached.House
	house.SecurityToken = cached.Token

	return house, nil
}

func (c *HouseCache) Set(ctx context.Context, house domain.PartnerHouse) error {
	data, err := json.Marshal(cachedHouse{House: house, Token: house.SecurityToken})
	if err != nil {
		return fmt.Errorf("failed to marshal house for cache: %w", err)
	}

	if err := c.client.Set(ctx, houseKey(house.Slug), data, houseCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache house: %w", err)
	}

	return nil
}

// Invalidate drops a cached house after an administrator edit.
func (c *HouseCache) Invalidate(ctx context.Context, slug string) error {
	return c.client.Del(ctx, houseKey(slug)).Err()
}

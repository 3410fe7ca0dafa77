package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "meal:"

// MealCache caches calendar ranges and ingredient searches in Redis.
// Keys are namespaced per owner so a write only drops that owner's entries.
type MealCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMealCache returns a new MealCache.
func NewMealCache(rdb *redis.Client, ttl time.Duration) *MealCache {
	return &MealCache{rdb: rdb, ttl: ttl}
}

func ownerPrefix(ownerID int64) string {
	return fmt.Sprintf("%s%d:", keyPrefix, ownerID)
}

func rangeKey(ownerID int64, start, end time.Time) string {
	return ownerPrefix(ownerID) + "range:" + start.Format(dom.DateLayout) + ":" + end.Format(dom.DateLayout)
}

func searchKey(ownerID int64, ingredient string) string {
	return ownerPrefix(ownerID) + "search:" + normalizeQuery(ingredient)
}

// GetRange returns the cached meals for the range or nil on a miss.
func (c *MealCache) GetRange(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Meal, error) {
	return c.get(ctx, rangeKey(ownerID, start, end))
}

// SetRange stores the meals for the range.
func (c *MealCache) SetRange(ctx context.Context, ownerID int64, start, end time.Time, list []dom.Meal) error {
	return c.set(ctx, rangeKey(ownerID, start, end), list)
}

// GetSearch returns the cached search result for ingredient or nil on a miss.
func (c *MealCache) GetSearch(ctx context.Context, ownerID int64, ingredient string) ([]dom.Meal, error) {
	return c.get(ctx, searchKey(ownerID, ingredient))
}

// SetSearch stores the search result for ingredient.
func (c *MealCache) SetSearch(ctx context.Context, ownerID int64, ingredient string, list []dom.Meal) error {
	return c.set(ctx, searchKey(ownerID, ingredient), list)
}

// InvalidateOwner removes every range and search key of the owner.
func (c *MealCache) InvalidateOwner(ctx context.Context, ownerID int64) error {
	iter := c.rdb.Scan(ctx, 0, ownerPrefix(ownerID)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *MealCache) get(ctx context.Context, key string) ([]dom.Meal, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Meal{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *MealCache) set(ctx context.Context, key string, list []dom.Meal) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func normalizeQuery(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}

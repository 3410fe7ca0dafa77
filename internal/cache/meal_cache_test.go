package cache

import (
	"context"
	"testing"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*MealCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewMealCache(rdb, time.Minute), mr
}

func testMeal() dom.Meal {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return dom.Meal{
		ID:          uuid.New(),
		OwnerID:     1,
		Date:        day,
		Type:        dom.Breakfast,
		Name:        "Pancakes",
		Ingredients: []string{"flour", "eggs"},
		CreatedAt:   day.Add(8 * time.Hour),
		UpdatedAt:   day.Add(9 * time.Hour),
	}
}

func TestKeysAreScopedPerOwner(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	assert.Equal(t, "meal:0:range:2024-01-15:2024-01-21", rangeKey(0, start, end))
	assert.Equal(t, "meal:12:range:2024-01-15:2024-01-21", rangeKey(12, start, end))
	assert.Equal(t, "meal:3:search:eggs", searchKey(3, "  EGGS "))
}

func TestMealCacheRangeRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	m := testMeal()
	start, end := m.Date, m.Date.AddDate(0, 0, 6)

	got, err := c.GetRange(ctx, 1, start, end)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetRange(ctx, 1, start, end, []dom.Meal{m}))
	assert.Equal(t, time.Minute, mr.TTL(rangeKey(1, start, end)))

	got, err = c.GetRange(ctx, 1, start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, m, got[0])

	// an empty result is cached as a hit, not a miss
	require.NoError(t, c.SetRange(ctx, 1, end, end, []dom.Meal{}))
	got, err = c.GetRange(ctx, 1, end, end)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMealCacheSearchNormalizesQuery(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)
	m := testMeal()

	require.NoError(t, c.SetSearch(ctx, 1, "Eggs", []dom.Meal{m}))

	got, err := c.GetSearch(ctx, 1, "  EGGS ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, m.ID, got[0].ID)

	got, err = c.GetSearch(ctx, 2, "eggs")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMealCacheInvalidateOwner(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	m := testMeal()
	start, end := m.Date, m.Date.AddDate(0, 0, 6)

	for _, owner := range []int64{1, 12} {
		require.NoError(t, c.SetRange(ctx, owner, start, end, []dom.Meal{m}))
		require.NoError(t, c.SetSearch(ctx, owner, "eggs", []dom.Meal{m}))
	}

	require.NoError(t, c.InvalidateOwner(ctx, 1))

	assert.False(t, mr.Exists(rangeKey(1, start, end)))
	assert.False(t, mr.Exists(searchKey(1, "eggs")))
	assert.True(t, mr.Exists(rangeKey(12, start, end)))
	assert.True(t, mr.Exists(searchKey(12, "eggs")))

	got, err := c.GetRange(ctx, 12, start, end)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// nothing left to drop
	require.NoError(t, c.InvalidateOwner(ctx, 1))
}

func TestMealCacheSurfacesRedisErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.SetError("ERR server unavailable")

	_, err := c.GetRange(ctx, 1, time.Time{}, time.Time{})
	assert.Error(t, err)
	assert.Error(t, c.InvalidateOwner(ctx, 1))
}

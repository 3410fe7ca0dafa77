package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/josenava/meal-calendar/internal/config"
	"github.com/josenava/meal-calendar/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServesMigratedInMemorySQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(false)
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = repo.MemoryDSN
	cfg.Storage.AutoMigrate = true

	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	created := createMeal(t, a.Router(), "", "2024-01-15", "breakfast", "Pancakes", "flour", "eggs")
	assert.Equal(t, "Pancakes", created.Name)

	w := do(t, a.Router(), http.MethodGet, "/api/v1/meals?start_date=2024-01-15&end_date=2024-01-15", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Pancakes")
}

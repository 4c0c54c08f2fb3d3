//go:build integration

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/lib/pq"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

func setupPostgres(t *testing.T) *sql.DB {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tracker_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test": "betslip-tracker-store"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, MigrateUp(db))
	return db
}

func TestPostgres_SnapshotRoundTrip(t *testing.T) {
	db := setupPostgres(t)
	p := NewPostgres(db)
	ctx := context.Background()

	bets, updated, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, bets)
	assert.True(t, updated.IsZero())

	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	in := []model.Bet{
		{ID: "z", Match: "A - B", Status: model.StatusWon, StakeValue: decimal.RequireFromString("100.5"),
			StakeCurrency: "USDT", Coef: decimal.RequireFromString("1.95"), WinValue: decimal.RequireFromString("195.98"),
			WinCurrency: "USDT", AddedDate: "15/03/2024", Time: "18:00"},
		{ID: "a", Status: model.StatusPending, StakeCurrency: "RUB", AddedDate: "14/03/2024"},
	}
	require.NoError(t, p.SaveSnapshot(ctx, in, at))

	bets, updated, err = p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, "z", bets[0].ID, "order is positional, not by id")
	assert.True(t, bets[0].WinValue.Equal(in[0].WinValue))
	assert.Equal(t, model.StatusPending, bets[1].Status)
	assert.True(t, at.Equal(updated))

	require.NoError(t, p.SaveSnapshot(ctx, in[1:], at.Add(time.Second)))
	backups, err := p.Backups(ctx, 5)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Len(t, backups[0].Items, 1)
	assert.Len(t, backups[1].Items, 2)
}

func TestPostgres_Rate(t *testing.T) {
	db := setupPostgres(t)
	p := NewPostgres(db)
	ctx := context.Background()

	_, ok, err := p.LoadRate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveRate(ctx, model.ExchangeRate{RubPerUsdt: 91.2, UpdatedAt: at}))

	r, ok, err := p.LoadRate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 91.2, r.RubPerUsdt)
	assert.True(t, at.Equal(r.UpdatedAt))
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartola-trader/internal/models"
)

func TestMemoryStoreBasics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.GetPlayer(ctx, "p")
	require.NoError(t, err)
	assert.Nil(t, got)

	player := models.NewPlayer("p", "Ana", 10000)
	player.Holdings["PETR4"] = &models.Holding{Ticker: "PETR4", Quantity: 3, AvgPrice: 37.50}
	require.NoError(t, store.PutPlayer(ctx, player))

	got, err = store.GetPlayer(ctx, "p")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, 3, got.Holdings["PETR4"].Quantity)

	count, err := store.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	player := models.NewPlayer("p", "", 10000)
	player.Holdings["PETR4"] = &models.Holding{Ticker: "PETR4", Quantity: 3, AvgPrice: 37.50}
	require.NoError(t, store.PutPlayer(ctx, player))

	// Mutating what we put or what we got must not leak into the store.
	player.Cash = 0
	player.Holdings["PETR4"].Quantity = 99

	got, err := store.GetPlayer(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, got.Cash)
	assert.Equal(t, 3, got.Holdings["PETR4"].Quantity)

	got.Holdings["PETR4"].Quantity = 7
	again, err := store.GetPlayer(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Holdings["PETR4"].Quantity)
}

func TestMemoryStoreListOrdered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, phone := range []string{"c", "a", "b"} {
		require.NoError(t, store.PutPlayer(ctx, models.NewPlayer(phone, "", 1)))
	}

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "a", players[0].Phone)
	assert.Equal(t, "b", players[1].Phone)
	assert.Equal(t, "c", players[2].Phone)
}

func TestMemoryStoreTradesAndSettings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.LogTrade(ctx, &models.Trade{ID: "1", Phone: "p", Ticker: "PETR4", Quantity: 1}))
	require.NoError(t, store.LogTrade(ctx, &models.Trade{ID: "2", Phone: "p", Ticker: "VALE3", Quantity: 2}))

	trades, err := store.GetTrades(ctx, TradeFilter{Phone: "p"})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "2", trades[0].ID, "most recent first")

	limited, err := store.GetTrades(ctx, TradeFilter{Phone: "p", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, store.SaveSettings(ctx, models.TournamentSettings{Name: "T", InitialCash: 500}))
	settings, err = store.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 500.0, settings.InitialCash)
}

package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartola-trader/internal/game"
	"cartola-trader/internal/market"
	"cartola-trader/internal/models"
	"cartola-trader/internal/store"
)

func newTestDispatcher(t *testing.T, narrator Narrator) *Dispatcher {
	t.Helper()

	catalog := market.DefaultCatalog()
	engine, err := game.NewTournament(context.Background(), game.Config{
		Store:   store.NewMemoryStore(),
		Prices:  market.NewStaticSource(catalog),
		Catalog: catalog,
		Logger:  zerolog.Nop(),
		Settings: models.TournamentSettings{
			Name:         "Cartola",
			DurationDays: 7,
			InitialCash:  10000,
		},
	})
	require.NoError(t, err)
	return NewDispatcher(engine, narrator, zerolog.Nop())
}

const testPhone = "5511999990000"

func TestHandleHelp(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply := d.Handle(context.Background(), testPhone, "help")
	assert.Contains(t, reply, "Welcome to Cartola de Investimentos")
	assert.Contains(t, reply, "buy TICKER QTY")

	assert.Equal(t, reply, d.Handle(context.Background(), testPhone, "ajuda"))
}

func TestHandleAssets(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply := d.Handle(context.Background(), testPhone, "assets")
	assert.Contains(t, reply, "PETR4: R$ 37.50")
	assert.Contains(t, reply, "MGLU3: R$ 2.45")
	assert.Contains(t, reply, "diversifying")
}

func TestHandleJoin(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	reply := d.Handle(ctx, testPhone, "join Ana")
	assert.Contains(t, reply, "You're in the tournament, Ana!")
	assert.Contains(t, reply, "Starting balance: R$ 10000.00.")

	reply = d.Handle(ctx, testPhone, "join Ana")
	assert.Contains(t, reply, "You're already in, Ana!")
	assert.Contains(t, reply, "Balance: R$ 10000.00.")
}

func TestHandleBuySellFlow(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Handle(ctx, testPhone, "join Ana")

	reply := d.Handle(ctx, testPhone, "buy PETR4 10")
	assert.Contains(t, reply, "✅ Bought 10x PETR4 at R$ 37.50.")
	assert.Contains(t, reply, "Balance: R$ 9625.00.")

	reply = d.Handle(ctx, testPhone, "sell PETR4 4")
	assert.Contains(t, reply, "✅ Sold 4x PETR4 at R$ 37.50.")
	assert.Contains(t, reply, "Balance: R$ 9775.00.")

	reply = d.Handle(ctx, testPhone, "portfolio")
	assert.Contains(t, reply, "Ana's portfolio")
	assert.Contains(t, reply, "• PETR4: 6x (avg R$ 37.50)")
	assert.Contains(t, reply, "Total equity: R$ 10000.00")
	assert.Contains(t, reply, "barely diversified")
}

func TestHandlePortugueseAliases(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Handle(ctx, testPhone, "entrar Gabriel")

	reply := d.Handle(ctx, testPhone, "comprar VALE3 2")
	assert.Contains(t, reply, "✅ Bought 2x VALE3")

	reply = d.Handle(ctx, testPhone, "carteira")
	assert.Contains(t, reply, "Gabriel's portfolio")
}

func TestHandleOrderErrors(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Handle(ctx, testPhone, "join Ana")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown ticker", "buy XYZ9 1", "Asset XYZ9 is not tradable"},
		{"insufficient funds", "buy BOVA11 91", "Insufficient balance"},
		{"no position", "sell ITUB4 1", "You don't hold ITUB4"},
		{"malformed buy", "buy PETR4", "Usage: buy TICKER QTY"},
		{"malformed quantity", "sell PETR4 many", "Quantity must be a whole number"},
		{"unknown command", "dance", "I didn't get that"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, d.Handle(ctx, testPhone, tt.text), tt.want)
		})
	}
}

func TestHandleSellOverHoldings(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Handle(ctx, testPhone, "buy PETR4 3")

	reply := d.Handle(ctx, testPhone, "sell PETR4 5")
	assert.Contains(t, reply, "You don't have that many. You hold 3x PETR4.")
}

func TestHandleSellBeforeJoin(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply := d.Handle(context.Background(), "5511888880000", "sell PETR4 1")
	assert.Contains(t, reply, "You haven't joined the tournament yet.")
}

func TestHandleConfigure(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	reply := d.Handle(ctx, testPhone, "configure 2 5 50000")
	assert.Contains(t, reply, "🏁 Tournament configured!")
	assert.Contains(t, reply, "Max players: 2")
	assert.Contains(t, reply, "Starting balance: R$ 50000.00")

	// New joins see the new balance and the capacity cap.
	reply = d.Handle(ctx, "1", "join A")
	assert.Contains(t, reply, "Starting balance: R$ 50000.00.")
	d.Handle(ctx, "2", "join B")
	reply = d.Handle(ctx, "3", "join C")
	assert.Contains(t, reply, "The tournament is full (maximum 2 players).")
}

func TestHandleRankingEmpty(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply := d.Handle(context.Background(), testPhone, "ranking")
	assert.Equal(t, "Nobody has joined the tournament yet.", reply)
}

func TestHandleRanking(t *testing.T) {
	d := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Handle(ctx, "1", "join Rich")
	d.Handle(ctx, "1", "buy PETR4 10")
	d.Handle(ctx, "1", "buy VALE3 5")
	d.Handle(ctx, "2", "join Idle")

	reply := d.Handle(ctx, testPhone, "ranking")
	assert.Contains(t, reply, "🏆 Ranking by total equity:")
	assert.Contains(t, reply, "📈 Ranking by diversification (distinct assets):")
	assert.Contains(t, reply, "1. Rich: R$ 10000.00")
	assert.Contains(t, reply, "1. Rich: 2 assets")
	assert.Contains(t, reply, "Idle: 0 assets")
}

type stubNarrator struct {
	comment string
	err     error
	prompt  string
}

func (s *stubNarrator) Narrate(_ context.Context, ranking string) (string, error) {
	s.prompt = ranking
	return s.comment, s.err
}

func TestHandleRankingWithNarrator(t *testing.T) {
	narrator := &stubNarrator{comment: "What a match!"}
	d := newTestDispatcher(t, narrator)
	ctx := context.Background()

	d.Handle(ctx, testPhone, "join Ana")

	reply := d.Handle(ctx, testPhone, "ranking")
	assert.True(t, strings.HasSuffix(reply, "\n\n🎙️ What a match!"), "got %q", reply)
	assert.Contains(t, narrator.prompt, "Ranking by total equity")
}

func TestHandleRankingNarratorFailureIsDropped(t *testing.T) {
	d := newTestDispatcher(t, &stubNarrator{err: errors.New("rate limited")})
	ctx := context.Background()

	d.Handle(ctx, testPhone, "join Ana")

	reply := d.Handle(ctx, testPhone, "ranking")
	assert.Contains(t, reply, "🏆 Ranking by total equity:")
	assert.NotContains(t, reply, "🎙️")
}

func TestRenderStandings(t *testing.T) {
	standings := []game.Standing{
		{Player: models.NewPlayer("1", "Ana", 0), Equity: 12000},
		{Player: models.NewPlayer("2", "", 0), Equity: 9500},
	}

	got := RenderStandings(standings)
	assert.Equal(t, "1. Ana: R$ 12000.00\n2. 2: R$ 9500.00", got)
}

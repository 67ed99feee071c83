// Package game implements the trading contest engine: the ledger operations,
// portfolio valuation and tournament rankings.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "cartola-trader/internal/errors"
	"cartola-trader/internal/market"
	"cartola-trader/internal/metrics"
	"cartola-trader/internal/models"
	"cartola-trader/internal/store"
)

// Tournament is the trading engine for one contest. All ledger mutations go
// through it; the player store remains the single source of truth between
// requests.
type Tournament struct {
	store   store.PlayerStore
	prices  market.PriceSource
	catalog *market.Catalog
	logger  zerolog.Logger
	locks   *playerLocks
	audit   bool

	mu       sync.RWMutex // guards settings
	settings models.TournamentSettings
}

// Config holds the tournament engine's dependencies.
type Config struct {
	Store    store.PlayerStore
	Prices   market.PriceSource
	Catalog  *market.Catalog
	Logger   zerolog.Logger
	Settings models.TournamentSettings
	// AuditTrail enables the append-only trade log.
	AuditTrail bool
}

// NewTournament creates a tournament engine. If settings were previously
// persisted they take precedence over the configured ones.
func NewTournament(ctx context.Context, cfg Config) (*Tournament, error) {
	settings := cfg.Settings
	if settings.StartDate.IsZero() {
		settings.StartDate = time.Now()
	}

	if saved, err := cfg.Store.GetSettings(ctx); err != nil {
		return nil, err
	} else if saved != nil {
		settings = *saved
	} else if err := cfg.Store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	return &Tournament{
		store:    cfg.Store,
		prices:   cfg.Prices,
		catalog:  cfg.Catalog,
		logger:   cfg.Logger.With().Str("component", "game").Logger(),
		locks:    newPlayerLocks(),
		audit:    cfg.AuditTrail,
		settings: settings,
	}, nil
}

// Settings returns a snapshot of the current tournament settings.
func (t *Tournament) Settings() models.TournamentSettings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// Catalog returns the tournament's instrument catalog.
func (t *Tournament) Catalog() *market.Catalog {
	return t.catalog
}

// Quote returns the current price used to execute or value ticker.
func (t *Tournament) Quote(ctx context.Context, ticker string) float64 {
	return t.prices.Quote(ctx, ticker)
}

// Configure re-parameterizes the tournament and persists the new settings.
// Existing ledgers keep their balances; only new joins see the new cash.
func (t *Tournament) Configure(ctx context.Context, maxPlayers, durationDays int, initialCash float64) (models.TournamentSettings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	settings := t.settings
	settings.MaxPlayers = maxPlayers
	settings.DurationDays = durationDays
	settings.InitialCash = initialCash
	settings.StartDate = time.Now()

	if err := t.store.SaveSettings(ctx, settings); err != nil {
		return models.TournamentSettings{}, err
	}
	t.settings = settings

	t.logger.Info().
		Int("max_players", maxPlayers).
		Int("duration_days", durationDays).
		Float64("initial_cash", initialCash).
		Msg("tournament configured")
	return settings, nil
}

// Join enters a player into the tournament. Joining is idempotent: an
// existing ledger is returned unchanged except that a non-empty name updates
// the display name. The bool result reports whether the ledger was created.
func (t *Tournament) Join(ctx context.Context, phone, name string) (*models.Player, bool, error) {
	lock := t.locks.get(phone)
	lock.Lock()
	defer lock.Unlock()

	return t.joinLocked(ctx, phone, name)
}

// joinLocked resolves or creates the player's ledger. The caller must hold
// the player's lock.
func (t *Tournament) joinLocked(ctx context.Context, phone, name string) (*models.Player, bool, error) {
	player, err := t.store.GetPlayer(ctx, phone)
	if err != nil {
		return nil, false, err
	}

	if player != nil {
		if name != "" && name != player.Name {
			player.Name = name
			if err := t.store.PutPlayer(ctx, player); err != nil {
				return nil, false, err
			}
		}
		return player, false, nil
	}

	settings := t.Settings()
	if settings.MaxPlayers > 0 {
		count, err := t.store.CountPlayers(ctx)
		if err != nil {
			return nil, false, err
		}
		if count >= settings.MaxPlayers {
			return nil, false, apperrors.NewCapacityError(settings.MaxPlayers)
		}
	}

	player = models.NewPlayer(phone, name, settings.InitialCash)
	if err := t.store.PutPlayer(ctx, player); err != nil {
		return nil, false, err
	}

	metrics.PlayersJoined.Inc()
	t.logger.Info().
		Str("phone", phone).
		Str("name", player.DisplayName()).
		Float64("cash", player.Cash).
		Msg("player joined")
	return player, true, nil
}

// Buy executes a buy order at the current quote. A player who never joined
// is joined implicitly, subject to the capacity limit.
func (t *Tournament) Buy(ctx context.Context, phone, ticker string, quantity int) (*models.OrderResult, error) {
	ticker = market.NormalizeTicker(ticker)
	if !t.catalog.Contains(ticker) {
		metrics.OrdersRejected.WithLabelValues("invalid_instrument").Inc()
		return nil, apperrors.ErrInvalidInstrument
	}
	if quantity <= 0 {
		metrics.OrdersRejected.WithLabelValues("invalid_quantity").Inc()
		return nil, apperrors.ErrInvalidQuantity
	}

	lock := t.locks.get(phone)
	lock.Lock()
	defer lock.Unlock()

	player, _, err := t.joinLocked(ctx, phone, "")
	if err != nil {
		return nil, err
	}

	price := t.prices.Quote(ctx, ticker)
	cost := price * float64(quantity)
	if cost > player.Cash {
		metrics.OrdersRejected.WithLabelValues("insufficient_funds").Inc()
		return nil, apperrors.NewInsufficientFundsError(cost, player.Cash)
	}

	player.Cash -= cost
	if holding := player.Holding(ticker); holding != nil {
		newQuantity := holding.Quantity + quantity
		holding.AvgPrice = (float64(holding.Quantity)*holding.AvgPrice + float64(quantity)*price) / float64(newQuantity)
		holding.Quantity = newQuantity
	} else {
		player.Holdings[ticker] = &models.Holding{
			Ticker:   ticker,
			Quantity: quantity,
			AvgPrice: price,
		}
	}

	if err := t.store.PutPlayer(ctx, player); err != nil {
		return nil, err
	}

	t.logTrade(ctx, phone, ticker, models.OrderSideBuy, quantity, price)
	metrics.OrdersTotal.WithLabelValues(string(models.OrderSideBuy)).Inc()
	t.logger.Info().
		Str("phone", phone).
		Str("ticker", ticker).
		Int("quantity", quantity).
		Float64("price", price).
		Float64("cash", player.Cash).
		Msg("buy executed")

	return &models.OrderResult{
		Side:     models.OrderSideBuy,
		Ticker:   ticker,
		Quantity: quantity,
		Price:    price,
		Total:    cost,
		Cash:     player.Cash,
	}, nil
}

// Sell executes a sell order at the current quote. The average cost basis of
// the remaining position is unaffected; a fully liquidated holding is removed
// from the ledger.
func (t *Tournament) Sell(ctx context.Context, phone, ticker string, quantity int) (*models.OrderResult, error) {
	ticker = market.NormalizeTicker(ticker)

	lock := t.locks.get(phone)
	lock.Lock()
	defer lock.Unlock()

	player, err := t.store.GetPlayer(ctx, phone)
	if err != nil {
		return nil, err
	}
	if player == nil {
		metrics.OrdersRejected.WithLabelValues("player_not_found").Inc()
		return nil, apperrors.ErrPlayerNotFound
	}

	holding := player.Holding(ticker)
	if holding == nil {
		metrics.OrdersRejected.WithLabelValues("no_position").Inc()
		return nil, apperrors.ErrNoPosition
	}
	if quantity <= 0 {
		metrics.OrdersRejected.WithLabelValues("invalid_quantity").Inc()
		return nil, apperrors.ErrInvalidQuantity
	}
	if quantity > holding.Quantity {
		metrics.OrdersRejected.WithLabelValues("insufficient_holdings").Inc()
		return nil, apperrors.NewInsufficientHoldingsError(ticker, quantity, holding.Quantity)
	}

	price := t.prices.Quote(ctx, ticker)
	proceeds := price * float64(quantity)

	holding.Quantity -= quantity
	if holding.Quantity == 0 {
		delete(player.Holdings, ticker)
	}
	player.Cash += proceeds

	if err := t.store.PutPlayer(ctx, player); err != nil {
		return nil, err
	}

	t.logTrade(ctx, phone, ticker, models.OrderSideSell, quantity, price)
	metrics.OrdersTotal.WithLabelValues(string(models.OrderSideSell)).Inc()
	t.logger.Info().
		Str("phone", phone).
		Str("ticker", ticker).
		Int("quantity", quantity).
		Float64("price", price).
		Float64("cash", player.Cash).
		Msg("sell executed")

	return &models.OrderResult{
		Side:     models.OrderSideSell,
		Ticker:   ticker,
		Quantity: quantity,
		Price:    price,
		Total:    proceeds,
		Cash:     player.Cash,
	}, nil
}

// logTrade appends to the audit trail when enabled. The ledger mutation is
// already persisted at this point, so a failed append is logged but does not
// fail the order.
func (t *Tournament) logTrade(ctx context.Context, phone, ticker string, side models.OrderSide, quantity int, price float64) {
	if !t.audit {
		return
	}
	trade := &models.Trade{
		ID:        uuid.NewString(),
		Phone:     phone,
		Ticker:    ticker,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Timestamp: time.Now(),
	}
	if err := t.store.LogTrade(ctx, trade); err != nil {
		t.logger.Warn().Err(err).Str("phone", phone).Msg("failed to append trade record")
	}
}

// Trades returns a player's trade history, most recent first.
func (t *Tournament) Trades(ctx context.Context, phone string, limit int) ([]models.Trade, error) {
	return t.store.GetTrades(ctx, store.TradeFilter{Phone: phone, Limit: limit})
}

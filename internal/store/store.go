// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"cartola-trader/internal/models"
)

// PlayerStore is the durable, per-key consistent storage for player ledgers.
// It is the single source of truth for ledger state; the engine holds no
// authoritative copy across requests.
//
// GetPlayer and GetSettings return (nil, nil) when no record exists.
// Any infrastructure failure is wrapped so it unwraps to
// errors.ErrStoreUnavailable.
type PlayerStore interface {
	GetPlayer(ctx context.Context, phone string) (*models.Player, error)
	PutPlayer(ctx context.Context, player *models.Player) error
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	CountPlayers(ctx context.Context) (int, error)

	// LogTrade appends to the audit trail; records are never mutated.
	LogTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Tournament settings, persisted so a restart keeps the configuration.
	SaveSettings(ctx context.Context, settings models.TournamentSettings) error
	GetSettings(ctx context.Context) (*models.TournamentSettings, error)

	Close() error
}

// TradeFilter represents filters for querying the trade audit trail.
type TradeFilter struct {
	Phone  string
	Ticker string
	Limit  int
}

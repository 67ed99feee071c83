package store

import (
	"context"
	"sort"
	"sync"

	"cartola-trader/internal/models"
)

// MemoryStore is an in-memory PlayerStore for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	players  map[string]*models.Player
	trades   []models.Trade
	settings *models.TournamentSettings
}

// NewMemoryStore creates an empty in-memory player store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*models.Player),
	}
}

// GetPlayer retrieves a player ledger, or (nil, nil) if absent.
func (m *MemoryStore) GetPlayer(_ context.Context, phone string) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[phone]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// PutPlayer inserts or replaces a player ledger.
func (m *MemoryStore) PutPlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players[player.Phone] = player.Clone()
	return nil
}

// ListPlayers returns all player ledgers ordered by phone.
func (m *MemoryStore) ListPlayers(_ context.Context) ([]*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	players := make([]*models.Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Phone < players[j].Phone })
	return players, nil
}

// CountPlayers returns the number of players that have joined.
func (m *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players), nil
}

// LogTrade appends a trade to the audit trail.
func (m *MemoryStore) LogTrade(_ context.Context, trade *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trades = append(m.trades, *trade)
	return nil
}

// GetTrades returns trades matching the filter, most recent first.
func (m *MemoryStore) GetTrades(_ context.Context, filter TradeFilter) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trades []models.Trade
	for i := len(m.trades) - 1; i >= 0; i-- {
		t := m.trades[i]
		if filter.Phone != "" && t.Phone != filter.Phone {
			continue
		}
		if filter.Ticker != "" && t.Ticker != filter.Ticker {
			continue
		}
		trades = append(trades, t)
		if filter.Limit > 0 && len(trades) >= filter.Limit {
			break
		}
	}
	return trades, nil
}

// SaveSettings stores the tournament settings.
func (m *MemoryStore) SaveSettings(_ context.Context, settings models.TournamentSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &settings
	return nil
}

// GetSettings returns the stored settings, or (nil, nil) if never configured.
func (m *MemoryStore) GetSettings(_ context.Context) (*models.TournamentSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, nil
	}
	s := *m.settings
	return &s, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

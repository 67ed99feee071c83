// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "cartola-trader/internal/errors"
	"cartola-trader/internal/models"
)

// SQLiteStore implements PlayerStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based player store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Player ledgers. Holdings are stored as a JSON document keyed by
	-- ticker so unknown fields survive round-trips.
	CREATE TABLE IF NOT EXISTS players (
		phone TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		cash REAL NOT NULL,
		holdings TEXT NOT NULL DEFAULT '{}',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Append-only trade audit trail.
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		phone TEXT NOT NULL,
		ticker TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_phone ON trades(phone, timestamp);

	-- Single-row tournament settings.
	CREATE TABLE IF NOT EXISTS tournament (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		initial_cash REAL NOT NULL,
		max_players INTEGER NOT NULL,
		start_date DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetPlayer retrieves a player ledger by phone, or (nil, nil) if absent.
func (s *SQLiteStore) GetPlayer(ctx context.Context, phone string) (*models.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT phone, name, cash, holdings FROM players WHERE phone = ?`, phone)

	var p models.Player
	var holdingsJSON string
	if err := row.Scan(&p.Phone, &p.Name, &p.Cash, &holdingsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("get_player", err)
	}

	if err := json.Unmarshal([]byte(holdingsJSON), &p.Holdings); err != nil {
		return nil, apperrors.NewStoreError("get_player", fmt.Errorf("decoding holdings: %w", err))
	}
	p.Normalize()
	return &p, nil
}

// PutPlayer inserts or replaces a player ledger.
func (s *SQLiteStore) PutPlayer(ctx context.Context, player *models.Player) error {
	holdingsJSON, err := json.Marshal(player.Holdings)
	if err != nil {
		return apperrors.NewStoreError("put_player", fmt.Errorf("encoding holdings: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (phone, name, cash, holdings, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(phone) DO UPDATE SET
			name = excluded.name,
			cash = excluded.cash,
			holdings = excluded.holdings,
			updated_at = CURRENT_TIMESTAMP`,
		player.Phone, player.Name, player.Cash, string(holdingsJSON))
	if err != nil {
		return apperrors.NewStoreError("put_player", err)
	}
	return nil
}

// ListPlayers returns all player ledgers ordered by phone.
func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phone, name, cash, holdings FROM players ORDER BY phone`)
	if err != nil {
		return nil, apperrors.NewStoreError("list_players", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var p models.Player
		var holdingsJSON string
		if err := rows.Scan(&p.Phone, &p.Name, &p.Cash, &holdingsJSON); err != nil {
			return nil, apperrors.NewStoreError("list_players", err)
		}
		if err := json.Unmarshal([]byte(holdingsJSON), &p.Holdings); err != nil {
			return nil, apperrors.NewStoreError("list_players", fmt.Errorf("decoding holdings: %w", err))
		}
		p.Normalize()
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list_players", err)
	}
	return players, nil
}

// CountPlayers returns the number of players that have joined.
func (s *SQLiteStore) CountPlayers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStoreError("count_players", err)
	}
	return count, nil
}

// LogTrade appends a trade to the audit trail.
func (s *SQLiteStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, phone, ticker, side, quantity, price, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.Phone, trade.Ticker, string(trade.Side),
		trade.Quantity, trade.Price, trade.Timestamp)
	if err != nil {
		return apperrors.NewStoreError("log_trade", err)
	}
	return nil
}

// GetTrades returns trades matching the filter, most recent first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT id, phone, ticker, side, quantity, price, timestamp FROM trades WHERE 1=1`
	var args []interface{}

	if filter.Phone != "" {
		query += " AND phone = ?"
		args = append(args, filter.Phone)
	}
	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("get_trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.Phone, &t.Ticker, &side, &t.Quantity, &t.Price, &t.Timestamp); err != nil {
			return nil, apperrors.NewStoreError("get_trades", err)
		}
		t.Side = models.OrderSide(side)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("get_trades", err)
	}
	return trades, nil
}

// SaveSettings inserts or replaces the tournament settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings models.TournamentSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournament (id, name, duration_days, initial_cash, max_players, start_date)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			duration_days = excluded.duration_days,
			initial_cash = excluded.initial_cash,
			max_players = excluded.max_players,
			start_date = excluded.start_date`,
		settings.Name, settings.DurationDays, settings.InitialCash,
		settings.MaxPlayers, settings.StartDate)
	if err != nil {
		return apperrors.NewStoreError("save_settings", err)
	}
	return nil
}

// GetSettings returns the persisted tournament settings, or (nil, nil) if the
// tournament was never configured.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.TournamentSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, duration_days, initial_cash, max_players, start_date
		FROM tournament WHERE id = 1`)

	var settings models.TournamentSettings
	err := row.Scan(&settings.Name, &settings.DurationDays, &settings.InitialCash,
		&settings.MaxPlayers, &settings.StartDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("get_settings", err)
	}
	return &settings, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package models defines the core data types for the trading contest.
package models

import "time"

// OrderSide represents the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Holding represents a position in one instrument: quantity held plus the
// weighted average purchase price. A holding with zero quantity is never
// stored; it is removed from the ledger instead.
type Holding struct {
	Ticker   string  `json:"ticker"`
	Quantity int     `json:"quantity"`
	AvgPrice float64 `json:"avgPrice"`
}

// Player is a single participant's ledger: identity, display name, cash
// balance and holdings keyed by ticker. The ledger is the sole authority over
// its own cash and holdings; it is mutated only through the tournament engine.
type Player struct {
	Phone    string              `json:"identity"`
	Name     string              `json:"displayName,omitempty"`
	Cash     float64             `json:"cash"`
	Holdings map[string]*Holding `json:"holdings,omitempty"`
}

// NewPlayer creates a ledger for a player joining the contest.
func NewPlayer(phone, name string, initialCash float64) *Player {
	return &Player{
		Phone:    phone,
		Name:     name,
		Cash:     initialCash,
		Holdings: make(map[string]*Holding),
	}
}

// DisplayName returns the player's name, falling back to the identity when
// no name was supplied.
func (p *Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Phone
}

// Holding returns the player's position in ticker, or nil if none is held.
func (p *Player) Holding(ticker string) *Holding {
	if p.Holdings == nil {
		return nil
	}
	return p.Holdings[ticker]
}

// Normalize applies defaults after decoding a persisted ledger: a missing
// holdings map becomes empty and any ticker key is mirrored into its holding.
func (p *Player) Normalize() {
	if p.Holdings == nil {
		p.Holdings = make(map[string]*Holding)
	}
	for ticker, h := range p.Holdings {
		if h.Ticker == "" {
			h.Ticker = ticker
		}
	}
}

// Clone returns a deep copy of the ledger. Stores hand out clones so callers
// never share holding pointers with cached state.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Holdings = make(map[string]*Holding, len(p.Holdings))
	for ticker, h := range p.Holdings {
		hc := *h
		cp.Holdings[ticker] = &hc
	}
	return &cp
}

// Trade is one executed order in the append-only audit trail.
type Trade struct {
	ID        string
	Phone     string
	Ticker    string
	Side      OrderSide
	Quantity  int
	Price     float64
	Timestamp time.Time
}

// OrderResult is the confirmation returned for an executed buy or sell.
type OrderResult struct {
	Side     OrderSide
	Ticker   string
	Quantity int
	Price    float64
	// Total is the cash moved: cost for a buy, proceeds for a sell.
	Total float64
	// Cash is the ledger's balance after execution.
	Cash float64
}

// TournamentSettings holds the contest parameters. They are set (or reset)
// by an administrative action and are read-only during order execution.
type TournamentSettings struct {
	Name         string
	DurationDays int
	InitialCash  float64
	// MaxPlayers caps the number of distinct players; 0 means unlimited.
	MaxPlayers int
	StartDate  time.Time
}

// EndDate returns the contest's end timestamp derived from the duration.
func (s TournamentSettings) EndDate() time.Time {
	return s.StartDate.AddDate(0, 0, s.DurationDays)
}

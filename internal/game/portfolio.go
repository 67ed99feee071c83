package game

import (
	"context"
	"sort"

	apperrors "cartola-trader/internal/errors"
	"cartola-trader/internal/models"
)

// PositionView is one holding valued at the current quote.
type PositionView struct {
	Ticker   string
	Quantity int
	AvgPrice float64
	Price    float64
	Value    float64
}

// PortfolioView is a snapshot of a player's ledger valued at current prices.
type PortfolioView struct {
	Player          *models.Player
	Positions       []PositionView
	Equity          float64
	Diversification int
}

// Portfolio returns the valued portfolio for a player. The ledger's cash and
// holdings come from a single store read, so the pair is internally
// consistent even while other players trade.
func (t *Tournament) Portfolio(ctx context.Context, phone string) (*PortfolioView, error) {
	player, err := t.store.GetPlayer(ctx, phone)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.ErrPlayerNotFound
	}

	view := &PortfolioView{
		Player:          player,
		Equity:          player.Cash,
		Diversification: DiversificationScore(player),
	}
	for _, h := range player.Holdings {
		price := t.prices.Quote(ctx, h.Ticker)
		value := price * float64(h.Quantity)
		view.Equity += value
		view.Positions = append(view.Positions, PositionView{
			Ticker:   h.Ticker,
			Quantity: h.Quantity,
			AvgPrice: h.AvgPrice,
			Price:    price,
			Value:    value,
		})
	}
	sort.Slice(view.Positions, func(i, j int) bool {
		return view.Positions[i].Ticker < view.Positions[j].Ticker
	})
	return view, nil
}

package game

import (
	"container/heap"
	"context"
	"sort"

	"cartola-trader/internal/market"
	"cartola-trader/internal/models"
)

// Standing is one player's position in a ranking.
type Standing struct {
	Player          *models.Player
	Equity          float64
	Diversification int
}

// TotalEquity values a ledger at current prices: cash plus the mark-to-market
// value of every holding. A holding whose ticker the price source no longer
// knows contributes 0 rather than failing the valuation.
func TotalEquity(ctx context.Context, prices market.PriceSource, player *models.Player) float64 {
	equity := player.Cash
	for _, h := range player.Holdings {
		equity += float64(h.Quantity) * prices.Quote(ctx, h.Ticker)
	}
	return equity
}

// DiversificationScore counts the distinct instruments held. It is a coarse
// breadth measure, not position-size weighted.
func DiversificationScore(player *models.Player) int {
	return len(player.Holdings)
}

// standings values every player once so rankings reuse the same snapshot.
func standings(ctx context.Context, prices market.PriceSource, players []*models.Player) []Standing {
	out := make([]Standing, len(players))
	for i, p := range players {
		out[i] = Standing{
			Player:          p,
			Equity:          TotalEquity(ctx, prices, p),
			Diversification: DiversificationScore(p),
		}
	}
	return out
}

// equityLess orders standings for the equity ranking: higher equity first,
// ties broken by identity ascending so output is reproducible.
func equityLess(a, b Standing) bool {
	if a.Equity != b.Equity {
		return a.Equity > b.Equity
	}
	return a.Player.Phone < b.Player.Phone
}

// RankByEquity returns all players ordered by total equity, descending.
func (t *Tournament) RankByEquity(ctx context.Context) ([]Standing, error) {
	players, err := t.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	ranked := standings(ctx, t.prices, players)
	sort.SliceStable(ranked, func(i, j int) bool { return equityLess(ranked[i], ranked[j]) })
	return ranked, nil
}

// RankByDiversification returns all players ordered by diversification score,
// descending, with the same identity-ascending tie-break.
func (t *Tournament) RankByDiversification(ctx context.Context) ([]Standing, error) {
	players, err := t.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	ranked := standings(ctx, t.prices, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Diversification != ranked[j].Diversification {
			return ranked[i].Diversification > ranked[j].Diversification
		}
		return ranked[i].Player.Phone < ranked[j].Player.Phone
	})
	return ranked, nil
}

// TopByEquity returns the n highest-equity players without sorting the whole
// population: a size-n min-heap keeps only the current leaders.
func (t *Tournament) TopByEquity(ctx context.Context, n int) ([]Standing, error) {
	players, err := t.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return topN(standings(ctx, t.prices, players), n), nil
}

func topN(all []Standing, n int) []Standing {
	if n <= 0 {
		return nil
	}
	if n >= len(all) {
		sorted := make([]Standing, len(all))
		copy(sorted, all)
		sort.SliceStable(sorted, func(i, j int) bool { return equityLess(sorted[i], sorted[j]) })
		return sorted
	}

	h := &standingHeap{}
	heap.Init(h)
	for _, s := range all {
		if h.Len() < n {
			heap.Push(h, s)
		} else if equityLess(s, (*h)[0]) {
			(*h)[0] = s
			heap.Fix(h, 0)
		}
	}

	// Pop yields worst-first; reverse into rank order.
	out := make([]Standing, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Standing)
	}
	return out
}

// standingHeap is a min-heap by ranking order: the root is the worst of the
// current top-n and the first candidate to be displaced.
type standingHeap []Standing

func (h standingHeap) Len() int            { return len(h) }
func (h standingHeap) Less(i, j int) bool  { return equityLess(h[j], h[i]) }
func (h standingHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *standingHeap) Push(x interface{}) { *h = append(*h, x.(Standing)) }
func (h *standingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

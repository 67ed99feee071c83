// Package market provides the instrument catalog and price sources.
package market

import (
	"sort"
	"strings"
)

// Catalog is the fixed, closed set of tradable instruments and their static
// reference prices. Membership is the validity check for every order; the
// catalog never changes while a tournament is running.
type Catalog struct {
	prices  map[string]float64
	tickers []string
}

// DefaultCatalog returns the B3 instruments tradable in the contest.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string]float64{
		"PETR4":  37.50,
		"ITUB4":  29.10,
		"VALE3":  62.30,
		"BOVA11": 110.40,
		"MGLU3":  2.45,
	})
}

// NewCatalog creates a catalog from a ticker to reference-price table.
func NewCatalog(prices map[string]float64) *Catalog {
	c := &Catalog{
		prices:  make(map[string]float64, len(prices)),
		tickers: make([]string, 0, len(prices)),
	}
	for ticker, price := range prices {
		ticker = NormalizeTicker(ticker)
		c.prices[ticker] = price
		c.tickers = append(c.tickers, ticker)
	}
	sort.Strings(c.tickers)
	return c
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Contains reports whether ticker is tradable.
func (c *Catalog) Contains(ticker string) bool {
	_, ok := c.prices[NormalizeTicker(ticker)]
	return ok
}

// StaticPrice returns the static reference price for ticker, or 0 when the
// ticker is not in the catalog.
func (c *Catalog) StaticPrice(ticker string) float64 {
	return c.prices[NormalizeTicker(ticker)]
}

// Tickers returns the catalog's tickers in ascending order.
func (c *Catalog) Tickers() []string {
	out := make([]string, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// Size returns the number of instruments in the catalog.
func (c *Catalog) Size() int {
	return len(c.tickers)
}

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "cartola-trader/internal/errors"
	"cartola-trader/internal/game"
	"cartola-trader/internal/metrics"
	"cartola-trader/pkg/utils"
)

// Narrator adds flavor commentary to a rendered ranking. The ranking reply is
// complete without it; any failure just drops the commentary.
type Narrator interface {
	Narrate(ctx context.Context, ranking string) (string, error)
}

// Dispatcher routes parsed commands to the tournament engine and renders
// replies.
type Dispatcher struct {
	engine   *game.Tournament
	narrator Narrator
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher. narrator may be nil.
func NewDispatcher(engine *game.Tournament, narrator Narrator, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		narrator: narrator,
		logger:   logger.With().Str("component", "bot").Logger(),
	}
}

// Handle processes one inbound message from phone and returns the reply text.
// It never returns an error: every outcome, including infrastructure
// failure, renders as a reply.
func (d *Dispatcher) Handle(ctx context.Context, phone, text string) string {
	cmd, err := Parse(text)
	if err != nil {
		var usage *UsageError
		if apperrors.As(err, &usage) {
			return usage.Message
		}
		return helpHint
	}

	metrics.MessagesInbound.WithLabelValues(cmd.Label()).Inc()
	d.logger.Debug().Str("phone", phone).Str("command", cmd.Label()).Msg("handling command")

	switch c := cmd.(type) {
	case HelpCmd:
		return helpMessage
	case AssetsCmd:
		return d.assets(ctx)
	case JoinCmd:
		return d.join(ctx, phone, c)
	case BuyCmd:
		return d.buy(ctx, phone, c)
	case SellCmd:
		return d.sell(ctx, phone, c)
	case PortfolioCmd:
		return d.portfolio(ctx, phone)
	case RankingCmd:
		return d.ranking(ctx)
	case ConfigureCmd:
		return d.configure(ctx, c)
	default:
		return "I didn't get that. 🤔\n" + helpHint
	}
}

const helpHint = "Send 'help' to see the available commands."

const helpMessage = "🤖 Welcome to Cartola de Investimentos!\n\n" +
	"Available commands:\n" +
	"- configure MAX_PLAYERS DAYS INITIAL_CASH → set up the tournament\n" +
	"- join [your name]            → enter the tournament\n" +
	"- assets                      → list tradable assets\n" +
	"- buy TICKER QTY              → buy an asset\n" +
	"- sell TICKER QTY             → sell an asset\n" +
	"- portfolio                   → see your portfolio\n" +
	"- ranking                     → see the tournament ranking\n" +
	"- help                        → show this message\n\n" +
	"Example: 'buy PETR4 10'"

func (d *Dispatcher) assets(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("📋 Assets tradable in the tournament (current price):\n")
	for _, ticker := range d.engine.Catalog().Tickers() {
		fmt.Fprintf(&b, "- %s: %s\n", ticker, utils.FormatBRL(d.engine.Quote(ctx, ticker)))
	}
	b.WriteString("\nRemember: diversifying helps spread the risk 😉")
	return b.String()
}

func (d *Dispatcher) join(ctx context.Context, phone string, c JoinCmd) string {
	player, created, err := d.engine.Join(ctx, phone, c.PlayerName)
	if err != nil {
		return d.renderError(err)
	}
	if !created {
		return fmt.Sprintf("You're already in, %s!\nBalance: %s.",
			player.DisplayName(), utils.FormatBRL(player.Cash))
	}
	return fmt.Sprintf("🎮 You're in the tournament, %s!\nStarting balance: %s.\nSend 'assets' to see what you can trade.",
		player.DisplayName(), utils.FormatBRL(player.Cash))
}

func (d *Dispatcher) buy(ctx context.Context, phone string, c BuyCmd) string {
	result, err := d.engine.Buy(ctx, phone, c.Ticker, c.Quantity)
	if err != nil {
		return d.renderOrderError(err, c.Ticker)
	}
	return fmt.Sprintf("✅ Bought %dx %s at %s.\nBalance: %s.",
		result.Quantity, result.Ticker, utils.FormatBRL(result.Price), utils.FormatBRL(result.Cash))
}

func (d *Dispatcher) sell(ctx context.Context, phone string, c SellCmd) string {
	result, err := d.engine.Sell(ctx, phone, c.Ticker, c.Quantity)
	if err != nil {
		return d.renderOrderError(err, c.Ticker)
	}
	return fmt.Sprintf("✅ Sold %dx %s at %s.\nBalance: %s.",
		result.Quantity, result.Ticker, utils.FormatBRL(result.Price), utils.FormatBRL(result.Cash))
}

func (d *Dispatcher) portfolio(ctx context.Context, phone string) string {
	view, err := d.engine.Portfolio(ctx, phone)
	if err != nil {
		return d.renderError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s's portfolio:\n", view.Player.DisplayName())
	fmt.Fprintf(&b, "- Cash balance: %s\n\n", utils.FormatBRL(view.Player.Cash))

	if len(view.Positions) == 0 {
		b.WriteString("You don't hold any assets yet.\n")
	} else {
		b.WriteString("Positions:\n")
		for _, pos := range view.Positions {
			fmt.Fprintf(&b, "• %s: %dx (avg %s) | current %s | total %s\n",
				pos.Ticker, pos.Quantity,
				utils.FormatBRL(pos.AvgPrice), utils.FormatBRL(pos.Price), utils.FormatBRL(pos.Value))
		}
	}

	fmt.Fprintf(&b, "\nTotal equity: %s\n", utils.FormatBRL(view.Equity))
	fmt.Fprintf(&b, "Distinct assets (diversification): %d\n", view.Diversification)

	if view.Diversification <= 1 {
		b.WriteString("⚠ Your portfolio is barely diversified. Consider adding more assets.")
	} else {
		b.WriteString("✅ Nice! You're spread across more than one asset.")
	}
	return b.String()
}

func (d *Dispatcher) ranking(ctx context.Context) string {
	byEquity, err := d.engine.RankByEquity(ctx)
	if err != nil {
		return d.renderError(err)
	}
	if len(byEquity) == 0 {
		return "Nobody has joined the tournament yet."
	}
	byDiversification, err := d.engine.RankByDiversification(ctx)
	if err != nil {
		return d.renderError(err)
	}

	var b strings.Builder
	b.WriteString("🏆 Ranking by total equity:\n")
	for i, s := range byEquity {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, s.Player.DisplayName(), utils.FormatBRL(s.Equity))
	}
	b.WriteString("\n📈 Ranking by diversification (distinct assets):\n")
	for i, s := range byDiversification {
		fmt.Fprintf(&b, "%d. %s: %d assets\n", i+1, s.Player.DisplayName(), s.Diversification)
	}

	reply := strings.TrimRight(b.String(), "\n")
	if d.narrator != nil {
		if comment, err := d.narrator.Narrate(ctx, reply); err != nil {
			d.logger.Warn().Err(err).Msg("narrator unavailable, sending plain ranking")
		} else if comment != "" {
			reply += "\n\n🎙️ " + comment
		}
	}
	return reply
}

func (d *Dispatcher) configure(ctx context.Context, c ConfigureCmd) string {
	settings, err := d.engine.Configure(ctx, c.MaxPlayers, c.DurationDays, c.InitialCash)
	if err != nil {
		return d.renderError(err)
	}
	return fmt.Sprintf("🏁 Tournament configured!\n- Max players: %d\n- Duration: %d day(s)\n- Starting balance: %s\n\nEveryone can now enter with: join YourName",
		settings.MaxPlayers, settings.DurationDays, utils.FormatBRL(settings.InitialCash))
}

// renderOrderError maps a rejected order to a player-facing reply.
func (d *Dispatcher) renderOrderError(err error, ticker string) string {
	var funds *apperrors.InsufficientFundsError
	var holdings *apperrors.InsufficientHoldingsError

	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInstrument):
		return fmt.Sprintf("Asset %s is not tradable in this tournament.\nSend 'assets' to see the list.", ticker)
	case apperrors.Is(err, apperrors.ErrInvalidQuantity):
		return "Quantity must be positive."
	case apperrors.As(err, &funds):
		return fmt.Sprintf("Insufficient balance. The order costs %s, but you only have %s.",
			utils.FormatBRL(funds.Cost), utils.FormatBRL(funds.Available))
	case apperrors.As(err, &holdings):
		return fmt.Sprintf("You don't have that many. You hold %dx %s.", holdings.Held, holdings.Ticker)
	case apperrors.Is(err, apperrors.ErrNoPosition):
		return fmt.Sprintf("You don't hold %s in your portfolio.", ticker)
	default:
		return d.renderError(err)
	}
}

// renderError maps the remaining failure classes to replies.
func (d *Dispatcher) renderError(err error) string {
	var capacity *apperrors.CapacityError

	switch {
	case apperrors.Is(err, apperrors.ErrPlayerNotFound):
		return "You haven't joined the tournament yet. Send 'join' first."
	case apperrors.As(err, &capacity):
		return fmt.Sprintf("The tournament is full (maximum %d players).", capacity.MaxPlayers)
	case apperrors.Is(err, apperrors.ErrStoreUnavailable):
		d.logger.Error().Err(err).Msg("store failure while handling command")
		return "⚠ We couldn't save that right now. Nothing was changed — please try again."
	default:
		d.logger.Error().Err(err).Msg("unexpected failure while handling command")
		return "Something went wrong. Please try again."
	}
}

// RenderStandings renders a ranking independently of a chat session. Used by
// the CLI and tests.
func RenderStandings(standings []game.Standing) string {
	var b strings.Builder
	for i, s := range standings {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, s.Player.DisplayName(), utils.FormatBRL(s.Equity))
	}
	return strings.TrimRight(b.String(), "\n")
}

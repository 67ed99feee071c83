// Package bot translates free-text chat messages into typed commands and
// renders the engine's results back into chat replies. The engine itself
// never sees raw text.
package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a parsed chat command. The set of variants is closed.
type Command interface {
	// Label names the command for logging and metrics.
	Label() string
}

// HelpCmd asks for the command summary.
type HelpCmd struct{}

// AssetsCmd asks for the tradable instruments and their current prices.
type AssetsCmd struct{}

// JoinCmd enters the sender into the tournament.
type JoinCmd struct {
	PlayerName string
}

// BuyCmd buys Quantity units of Ticker at the current quote.
type BuyCmd struct {
	Ticker   string
	Quantity int
}

// SellCmd sells Quantity units of Ticker at the current quote.
type SellCmd struct {
	Ticker   string
	Quantity int
}

// PortfolioCmd asks for the sender's valued portfolio.
type PortfolioCmd struct{}

// RankingCmd asks for the tournament rankings.
type RankingCmd struct{}

// ConfigureCmd re-parameterizes the tournament.
type ConfigureCmd struct {
	MaxPlayers   int
	DurationDays int
	InitialCash  float64
}

// UnknownCmd is anything that did not parse as a command.
type UnknownCmd struct {
	Raw string
}

func (HelpCmd) Label() string      { return "help" }
func (AssetsCmd) Label() string    { return "assets" }
func (JoinCmd) Label() string      { return "join" }
func (BuyCmd) Label() string       { return "buy" }
func (SellCmd) Label() string      { return "sell" }
func (PortfolioCmd) Label() string { return "portfolio" }
func (RankingCmd) Label() string   { return "ranking" }
func (ConfigureCmd) Label() string { return "configure" }
func (UnknownCmd) Label() string   { return "unknown" }

// UsageError is a malformed invocation of a known command. Its message is
// shown to the player as-is.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// Parse tokenizes a chat message into a command. Both the English command
// words and the Portuguese aliases the contest started with are accepted.
// Unrecognized input parses as UnknownCmd; malformed arguments for a known
// command return a UsageError.
func Parse(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return UnknownCmd{Raw: text}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "help", "ajuda", "?":
		return HelpCmd{}, nil

	case "assets", "ativos":
		return AssetsCmd{}, nil

	case "join", "entrar":
		return JoinCmd{PlayerName: strings.Join(fields[1:], " ")}, nil

	case "buy", "comprar":
		ticker, qty, err := parseOrderArgs(fields[1:], "buy PETR4 10")
		if err != nil {
			return nil, err
		}
		return BuyCmd{Ticker: ticker, Quantity: qty}, nil

	case "sell", "vender":
		ticker, qty, err := parseOrderArgs(fields[1:], "sell PETR4 5")
		if err != nil {
			return nil, err
		}
		return SellCmd{Ticker: ticker, Quantity: qty}, nil

	case "portfolio", "carteira":
		return PortfolioCmd{}, nil

	case "ranking":
		return RankingCmd{}, nil

	case "configure", "configurar":
		return parseConfigureArgs(fields[1:])

	default:
		return UnknownCmd{Raw: text}, nil
	}
}

func parseOrderArgs(args []string, example string) (string, int, error) {
	if len(args) < 2 {
		return "", 0, &UsageError{Message: fmt.Sprintf("Usage: %s TICKER QTY\nExample: %s", args0Word(example), example)}
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, &UsageError{Message: fmt.Sprintf("Quantity must be a whole number.\nExample: %s", example)}
	}
	return strings.ToUpper(args[0]), qty, nil
}

func parseConfigureArgs(args []string) (Command, error) {
	usage := "Usage: configure MAX_PLAYERS DAYS INITIAL_CASH\nExample: configure 10 7 50000"
	if len(args) < 3 {
		return nil, &UsageError{Message: usage}
	}
	maxPlayers, err1 := strconv.Atoi(args[0])
	days, err2 := strconv.Atoi(args[1])
	initialCash, err3 := strconv.ParseFloat(args[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, &UsageError{Message: "Invalid parameters, use numbers.\n" + usage}
	}
	if maxPlayers < 0 || days <= 0 || initialCash <= 0 {
		return nil, &UsageError{Message: "Invalid parameters: days and cash must be positive.\n" + usage}
	}
	return ConfigureCmd{MaxPlayers: maxPlayers, DurationDays: days, InitialCash: initialCash}, nil
}

func args0Word(example string) string {
	if i := strings.IndexByte(example, ' '); i > 0 {
		return example[:i]
	}
	return example
}

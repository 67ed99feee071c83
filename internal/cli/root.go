// Package cli provides the command-line interface for the contest bot.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cartola-trader/internal/bot"
	"cartola-trader/internal/config"
	"cartola-trader/internal/game"
	"cartola-trader/internal/market"
	"cartola-trader/internal/models"
	"cartola-trader/internal/narrator"
	"cartola-trader/internal/store"
	"cartola-trader/internal/whatsapp"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      store.PlayerStore
	Catalog    *market.Catalog
	Prices     market.PriceSource
	Engine     *game.Tournament
	Dispatcher *bot.Dispatcher
	Client     *whatsapp.Client

	useMemoryStore bool
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "cartola",
		Short: "Cartola de Investimentos - simulated trading contest over WhatsApp",
		Long: `Cartola de Investimentos is a multiplayer simulated-trading contest.

Players join over WhatsApp, receive a starting cash balance and trade a small
set of B3 instruments at static or live prices. The bot keeps every player's
ledger, executes orders and publishes equity and diversification rankings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.PersistentFlags().BoolVar(&app.useMemoryStore, "memory", false,
		"use an in-memory store instead of SQLite (state is lost on exit)")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newAssetsCmd(app))
	return rootCmd
}

// setup wires the store, engine and dispatcher. Called by each subcommand.
func (a *App) setup(ctx context.Context) error {
	a.Catalog = market.DefaultCatalog()

	if a.Config.Market.LiveQuotes {
		a.Prices = market.NewLiveSource(a.Catalog, market.LiveSourceConfig{
			BaseURL: a.Config.Market.QuoteURL,
			Token:   a.Config.Credentials.BrapiToken,
			Timeout: time.Duration(a.Config.Market.TimeoutMS) * time.Millisecond,
			Logger:  a.Logger,
		})
		a.Logger.Debug().Msg("live price source initialized")
	} else {
		a.Prices = market.NewStaticSource(a.Catalog)
	}

	if a.useMemoryStore {
		a.Store = store.NewMemoryStore()
		a.Logger.Debug().Msg("memory store initialized")
	} else {
		sqlStore, err := store.NewSQLiteStore(a.Config.Server.DBPath)
		if err != nil {
			return err
		}
		a.Store = sqlStore
		a.Logger.Debug().Str("path", a.Config.Server.DBPath).Msg("SQLite store initialized")
	}

	engine, err := game.NewTournament(ctx, game.Config{
		Store:   a.Store,
		Prices:  a.Prices,
		Catalog: a.Catalog,
		Logger:  a.Logger,
		Settings: models.TournamentSettings{
			Name:         a.Config.Tournament.Name,
			DurationDays: a.Config.Tournament.DurationDays,
			InitialCash:  a.Config.Tournament.InitialCash,
			MaxPlayers:   a.Config.Tournament.MaxPlayers,
		},
		AuditTrail: true,
	})
	if err != nil {
		return err
	}
	a.Engine = engine

	var commentary bot.Narrator
	if a.Config.Narrator.Enabled && a.Config.Credentials.GroqAPIKey != "" {
		commentary = narrator.New(narrator.Config{
			APIKey:      a.Config.Credentials.GroqAPIKey,
			Model:       a.Config.Narrator.Model,
			BaseURL:     a.Config.Narrator.BaseURL,
			Temperature: a.Config.Narrator.Temperature,
		})
		a.Logger.Debug().Str("model", a.Config.Narrator.Model).Msg("narrator initialized")
	}
	a.Dispatcher = bot.NewDispatcher(a.Engine, commentary, a.Logger)

	if a.Config.Credentials.WhatsAppToken != "" {
		a.Client = whatsapp.NewClient(whatsapp.ClientConfig{
			Token:   a.Config.Credentials.WhatsAppToken,
			PhoneID: a.Config.Credentials.WhatsAppPhoneID,
			Logger:  a.Logger,
		})
		a.Logger.Debug().Msg("WhatsApp client initialized")
	}

	return nil
}

// teardown releases resources acquired by setup.
func (a *App) teardown() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing store")
		}
	}
}

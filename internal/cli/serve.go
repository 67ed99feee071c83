package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cartola-trader/internal/whatsapp"
)

// newServeCmd creates the webhook server command.
func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the WhatsApp webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.setup(ctx); err != nil {
				return err
			}
			defer app.teardown()

			var sender whatsapp.Sender
			if app.Client != nil && app.Client.Configured() {
				sender = app.Client
			} else {
				app.Logger.Warn().Msg("WhatsApp credentials missing, replies will only be logged")
			}

			handler := whatsapp.NewHandler(app.Dispatcher, sender, app.Config.Server.VerifyToken, app.Logger)
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", app.Config.Server.Port),
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info().Int("port", app.Config.Server.Port).Msg("webhook server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				app.Logger.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
			}
			return nil
		},
	}
}

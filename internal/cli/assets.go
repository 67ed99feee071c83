package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cartola-trader/pkg/utils"
)

// newAssetsCmd creates the catalog listing command.
func newAssetsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List the tradable instruments and their current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.setup(ctx); err != nil {
				return err
			}
			defer app.teardown()

			for _, ticker := range app.Catalog.Tickers() {
				fmt.Printf("%-8s %s\n", ticker, utils.FormatBRL(app.Prices.Quote(ctx, ticker)))
			}
			return nil
		},
	}
}

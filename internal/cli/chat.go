package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newChatCmd creates a local REPL that drives the same dispatcher the
// webhook uses. Useful for trying the contest without WhatsApp.
func newChatCmd(app *App) *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.setup(ctx); err != nil {
				return err
			}
			defer app.teardown()

			fmt.Println("Cartola de Investimentos - local chat. Type 'help' for commands, Ctrl-D to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				fmt.Println(app.Dispatcher.Handle(ctx, phone, text))
				fmt.Println()
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "5511999990000", "player identity to chat as")
	return cmd
}

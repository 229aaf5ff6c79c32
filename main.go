/*
Package main
File: main.go
Description: CLI entry point. Builds the cobra command tree; each command
loads the config and content, opens the session store and applies one action.
`serve` runs the HTTP/WebSocket server with passive accrual.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salvarecuero/tap-cat/internal/ui"
)

const Version = "0.1.0"

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "tap-cat",
		Short:         "Tap the cat, earn pets, buy boosts",
		Long:          "tap-cat is an idle clicker: tap a cat to earn pets, spend them on boosts, and watch the cat evolve.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $TAPCAT_CONFIG or ~/.tap-cat/config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newStatusCmd(a),
		newTapCmd(a),
		newBuyCmd(a),
		newSelectCmd(a),
		newResetCmd(a),
		newCreditCmd(a),
		newContentCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err))
		os.Exit(1)
	}
}

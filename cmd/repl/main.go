// Package main provides the terminal client for the SQL playground.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/repl"
)

var (
	serverURL string
	execute   string
)

var errQueryFailed = errors.New("query failed")

var rootCmd = &cobra.Command{
	Use:           "playground",
	Short:         "Terminal client for the SQL playground",
	Long:          "playground sends SQL to a playground server and renders the results as text tables.\nStatements are read from the keyboard, from -e, or from stdin when it is not a terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := repl.NewClient(serverURL, nil)
		if execute != "" {
			return runOnce(ctx, client, execute)
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			if err := repl.RunScript(ctx, client, os.Stdin, os.Stdout); err != nil {
				if errors.Is(err, repl.ErrScriptFailed) {
					return errQueryFailed
				}
				return err
			}
			return nil
		}

		tui := repl.NewTerminal(repl.NewSession(client), os.Stdout, config.HealthPollInterval)
		return tui.Run(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "url", config.DefaultServerURL, "playground server URL")
	rootCmd.Flags().StringVarP(&execute, "execute", "e", "", "run a single statement and exit")
}

// runOnce executes sql without entering the interactive loop.
func runOnce(ctx context.Context, client *repl.Client, sql string) error {
	start := time.Now()
	res, err := client.Query(ctx, sql)
	if err != nil {
		return err
	}
	if !res.Success {
		pterm.Println(pterm.Red(repl.FormatError(res)))
		return errQueryFailed
	}
	pterm.Println(repl.FormatResult(res, time.Since(start)))
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errQueryFailed) {
			pterm.Println(pterm.Red("ERROR: " + err.Error()))
		}
		os.Exit(1)
	}
}

// Command quant exposes the analytics library over JSON. Every subcommand
// reads one JSON document from --input (or stdin) and writes one JSON
// document to stdout. Failures are reported as {"error": "..."} with exit
// status 1.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return writeError(stdout, err.Error())
	}
	return 0
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "quant",
		Short:         "Calendars, day counts, curves, Brazilian bonds, trackers and portfolio analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			c, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				c.Log.Level = lvl
			}
			config.SetConfig(*c)
			logger.L = logger.New(stderr, c.Log.Level, c.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "config file path (YAML, JSON or TOML)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().String("input", "", "JSON input path (optional; if set, ignores stdin)")

	root.AddCommand(
		newHolidaysCmd(),
		newDaycountCmd(),
		newCurveCmd(),
		newBondCmd(),
		newDI1Cmd(),
		newWeightsCmd(),
		newBacktestCmd(),
		newPerfCmd(),
		newTrackerCmd(),
	)
	return root
}

func writeError(stdout io.Writer, msg string) int {
	out, _ := json.Marshal(map[string]string{"error": msg})
	fmt.Fprintln(stdout, string(out))
	return 1
}

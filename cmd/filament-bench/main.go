package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logJSONPath is bound to the root --log-json flag.
var logJSONPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "filament-bench",
		Short: "Benchmark harness for the filament reactive engine",
		Long: `filament-bench measures the filament engine under synthetic load:
write propagation through computed grids, and container republish
throughput with derived views attached. Results are per-operation
latency distributions rendered as tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logJSONPath, "log-json", "",
		"write JSON logs to this file in addition to stderr")

	rootCmd.AddCommand(
		propagateCmd(),
		containersCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// buildLogger fans log records out to a stderr text handler plus an
// optional JSON file when --log-json is set.
func buildLogger() (*slog.Logger, func(), error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
	cleanup := func() {}

	if logJSONPath != "" {
		file, err := os.Create(logJSONPath)
		if err != nil {
			return nil, nil, fmt.Errorf("create log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, nil))
		cleanup = func() { file.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), cleanup, nil
}

// newTable builds a result table, styled only when stdout is a terminal.
func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tbl.SetStyle(table.StyleRounded)
	}
	return tbl
}

// parseInts parses a comma-separated list of positive integers.
func parseInts(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("value %d must be > 0", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no values")
	}
	return out, nil
}

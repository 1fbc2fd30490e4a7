package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/filament-go/filament/pkg/filament"
)

func containersCmd() *cobra.Command {
	var (
		sizes string
		iters int
	)

	cmd := &cobra.Command{
		Use:   "containers",
		Short: "Benchmark slice and map container writes",
		Long: `Build a slice signal with a mapped view and a map signal with an
entries view, each driving an effect, then overwrite elements in a loop.
Every write republishes the container, recomputes the view, and reruns
the effect, so the per-write latency is the full container round trip.

Examples:
  filament-bench containers
  filament-bench containers --sizes=1000,10000 --iters=500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nn, err := parseInts(sizes)
			if err != nil {
				return fmt.Errorf("invalid --sizes: %w", err)
			}
			if iters <= 0 {
				return fmt.Errorf("--iters must be > 0")
			}
			return runContainers(nn, iters)
		},
	}

	cmd.Flags().StringVar(&sizes, "sizes", "10,100,1000", "comma-separated element counts")
	cmd.Flags().IntVar(&iters, "iters", 100, "writes per container")

	return cmd
}

func runContainers(nn []int, iters int) error {
	logger, cleanup, err := buildLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	tbl := newTable("filament containers")
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	for _, n := range nn {
		calc := sliceBench(logger, n, iters)
		tbl.AppendRows([]table.Row{{
			fmt.Sprintf("slice set+view: n=%s", humanize.Comma(int64(n))),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		}})
	}
	for _, n := range nn {
		calc := mapBench(logger, n, iters)
		tbl.AppendRows([]table.Row{{
			fmt.Sprintf("map set+view: n=%s", humanize.Comma(int64(n))),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		}})
	}

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	tbl.Render()
	logger.Info("containers complete",
		"containers", 2*len(nn),
		"writes", humanize.Comma(int64(2*len(nn)*iters)),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"allocated", humanize.Bytes(after.TotalAlloc-before.TotalAlloc),
		"num_gc", after.NumGC-before.NumGC,
	)
	return nil
}

func sliceBench(logger *slog.Logger, n, iters int) *tachymeter.Metrics {
	rt := filament.New(filament.WithLogger(logger))

	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}
	list := filament.NewSliceSignal(rt, initial)
	doubled := filament.MapSlice(list, func(v int) int { return v * 2 })
	filament.CreateEffect(rt, func() error {
		_, err := doubled.Get()
		return err
	})

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		writeStart := time.Now()
		if err := list.SetAt(i%n, i); err != nil {
			logger.Error("slice write failed", "error", err)
		}
		tach.AddTime(time.Since(writeStart))
	}
	return tach.Calc()
}

func mapBench(logger *slog.Logger, n, iters int) *tachymeter.Metrics {
	rt := filament.New(filament.WithLogger(logger))

	initial := make(map[string]int, n)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = "key-" + strconv.Itoa(i)
		initial[keys[i]] = i
	}
	m := filament.NewMapSignal(rt, initial)
	entries := m.Entries()
	filament.CreateEffect(rt, func() error {
		_, err := entries.Get()
		return err
	})

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		writeStart := time.Now()
		if err := m.SetKey(keys[i%n], i); err != nil {
			logger.Error("map write failed", "error", err)
		}
		tach.AddTime(time.Since(writeStart))
	}
	return tach.Calc()
}

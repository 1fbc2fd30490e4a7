package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/filament-go/filament/pkg/filament"
)

func propagateCmd() *cobra.Command {
	var (
		widths     string
		heights    string
		iters      int
		cpuProfile string
	)

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Benchmark write propagation through computed grids",
		Long: `Build w parallel chains of h computed signals off one source, attach
an effect to the tail of every chain, then write the source repeatedly.
Every write propagates through all w*h computeds synchronously, so the
per-write latency distribution is the engine's propagation cost.

Examples:
  filament-bench propagate
  filament-bench propagate --widths=1,100 --heights=10 --iters=500
  filament-bench propagate --cpuprofile=propagate.pgo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ww, err := parseInts(widths)
			if err != nil {
				return fmt.Errorf("invalid --widths: %w", err)
			}
			hh, err := parseInts(heights)
			if err != nil {
				return fmt.Errorf("invalid --heights: %w", err)
			}
			if iters <= 0 {
				return fmt.Errorf("--iters must be > 0")
			}
			return runPropagate(ww, hh, iters, cpuProfile)
		},
	}

	cmd.Flags().StringVar(&widths, "widths", "1,10,100", "comma-separated chain counts")
	cmd.Flags().StringVar(&heights, "heights", "1,10,100", "comma-separated chain depths")
	cmd.Flags().IntVar(&iters, "iters", 100, "writes per grid")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this file")

	return cmd
}

func runPropagate(ww, hh []int, iters int, cpuProfile string) error {
	logger, cleanup, err := buildLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	tbl := newTable("filament propagate")
	tbl.AppendHeader(table.Row{"benchmark", "signals", "avg", "min", "p75", "p99", "max"})

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	totalWrites := 0
	for _, w := range ww {
		for _, h := range hh {
			calc, signals := propagateGrid(logger, w, h, iters)
			totalWrites += iters
			tbl.AppendRows([]table.Row{{
				fmt.Sprintf("propagate: %d * %d", w, h),
				humanize.Comma(int64(signals)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			}})
		}
	}

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	tbl.Render()
	logger.Info("propagate complete",
		"grids", len(ww)*len(hh),
		"writes", humanize.Comma(int64(totalWrites)),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"allocated", humanize.Bytes(after.TotalAlloc-before.TotalAlloc),
		"num_gc", after.NumGC-before.NumGC,
	)
	return nil
}

// propagateGrid wires the w*h grid, writes the source iters times, and
// returns the latency distribution plus the live signal count.
func propagateGrid(logger *slog.Logger, w, h, iters int) (*tachymeter.Metrics, int) {
	rt := filament.New(filament.WithLogger(logger))
	src := filament.NewSignal(rt, 1)

	addOne := func(c *filament.Computed[int]) func() (int, error) {
		return func() (int, error) {
			v, err := c.Get()
			if err != nil {
				return 0, err
			}
			return v + 1, nil
		}
	}

	for i := 0; i < w; i++ {
		last := filament.NewComputed(rt, func() (int, error) {
			v, err := src.Get()
			if err != nil {
				return 0, err
			}
			return v + 1, nil
		})
		for j := 1; j < h; j++ {
			last = filament.NewComputed(rt, addOne(last))
		}

		tail := last
		filament.CreateEffect(rt, func() error {
			_, err := tail.Get()
			return err
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		writeStart := time.Now()
		if err := src.Update(func(v int) int { return v + 1 }); err != nil {
			logger.Error("write failed", "error", err)
		}
		tach.AddTime(time.Since(writeStart))
	}
	return tach.Calc(), 1 + w*h
}

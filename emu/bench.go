package emu

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"chipster/emu/log"
	"chipster/hw"
)

type BenchResult struct {
	Path     string
	Frames   uint64
	Steps    uint64
	Duration time.Duration
	State    hw.State
	Err      error
}

// Bench runs each ROM headless, as fast as possible, for the given number of
// frames. ROMs run in parallel, each on its own machine.
func Bench(paths []string, cfg Config, frames int) []BenchResult {
	cfg.TraceOut = nil

	results := make([]BenchResult, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			results[i] = benchOne(path, cfg, frames)
			return nil
		})
	}
	g.Wait()
	return results
}

func benchOne(path string, cfg Config, frames int) BenchResult {
	res := BenchResult{Path: path}

	e, err := Launch(path, cfg, NewHeadless(cfg.Video))
	if err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	res.Err = e.RunFrames(frames)
	res.Duration = time.Since(start)
	res.Frames = e.Frames()
	res.Steps = e.Steps()
	res.State = e.Chip8.State()

	log.ModEmu.InfoZ("Bench done").
		String("rom", path).
		Uint("steps", res.Steps).
		Duration("duration", res.Duration).
		Bool("failed", res.Err != nil).
		End()
	return res
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"text/tabwriter"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/veandco/go-sdl2/sdl"

	"chipster/emu"
)

// applyFlags overrides the configuration with the command line flags.
func (args Run) applyFlags(cfg *emu.Config) {
	if args.Platform.set {
		cfg.Emulation.Platform = args.Platform.v
	}
	if args.TickRate != 0 {
		cfg.Emulation.TickRate = args.TickRate
	}
	if args.Seed != 0 {
		cfg.Emulation.Seed = args.Seed
	}
	if args.Monitor >= 0 {
		cfg.Video.Monitor = args.Monitor
	}
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.Trace != nil {
		cfg.TraceOut = args.Trace
	}
	cfg.Check()
}

// emuMain runs the emulator with the given rom, or rom directory.
func emuMain(args Run, cfg emu.Config) error {
	args.applyFlags(&cfg)
	if cfg.TraceOut != nil {
		defer cfg.TraceOut.Close()
	}

	if args.StatsView != "" {
		startStatsView(args.StatsView)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	switch {
	case args.Headless:
		return runHeadless(args, cfg)
	case args.TTY:
		out, err := emu.NewTTY(cfg.Input)
		if err != nil {
			return err
		}
		return launchAndRun(args.RomPath, cfg, out)
	}

	var err error
	sdl.Main(func() {
		p := cfg.Platform()
		var out *emu.Window
		if out, err = emu.NewWindow(cfg, p.Width, p.Height); err != nil {
			return
		}
		err = launchAndRun(args.RomPath, cfg, out)
	})
	return err
}

func launchAndRun(path string, cfg emu.Config, out emu.Output) error {
	e, err := emu.Launch(path, cfg, out)
	if err != nil {
		return errors.Join(err, out.Close())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			e.Stop()
		}
	}()

	return e.Run()
}

func runHeadless(args Run, cfg emu.Config) error {
	if fi, err := os.Stat(args.RomPath); err == nil && fi.IsDir() {
		return fmt.Errorf("%s: headless mode requires a ROM file", args.RomPath)
	}

	out := emu.NewHeadless(cfg.Video)
	e, err := emu.Launch(args.RomPath, cfg, out)
	if err != nil {
		return err
	}

	start := time.Now()
	err = e.RunFrames(args.Frames)
	fmt.Printf("%d frames, %d instructions in %s\n", e.Frames(), e.Steps(), time.Since(start))

	if args.Screenshot != "" {
		if img := out.Screenshot(); img != nil {
			checkf(emu.SaveAsPNG(img, args.Screenshot), "failed to save screenshot")
		}
	}
	if args.Snapshot != "" {
		checkf(e.SaveState(args.Snapshot), "failed to save snapshot")
	}
	return err
}

// benchMain runs all ROMs and prints a report. It returns false if any ROM
// failed.
func benchMain(args Bench, cfg emu.Config) bool {
	if args.Platform.set {
		cfg.Emulation.Platform = args.Platform.v
	}
	cfg.Check()

	results := emu.Bench(args.RomPaths, cfg, args.Frames)

	ok := true
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ROM\tFRAMES\tINSTRUCTIONS\tTIME\tINSTR/S\tSTATE")
	for _, res := range results {
		if res.Err != nil {
			ok = false
			fmt.Fprintf(tw, "%s\t%d\t%d\t-\t-\terror: %v\n", res.Path, res.Frames, res.Steps, res.Err)
			continue
		}
		ips := float64(res.Steps) / res.Duration.Seconds()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.0f\t%s\n", res.Path, res.Frames, res.Steps, res.Duration.Round(time.Microsecond), ips, res.State)
	}
	tw.Flush()
	return ok
}

func startStatsView(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	fmt.Fprintf(os.Stderr, "stats server available at http://%s/debug/statsview\n", addr)
}

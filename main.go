package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"chipster/emu"
	"chipster/rom"
)

func main() {
	cfg := emu.LoadConfigOrDefault()

	args := parseArgs(os.Args[1:])
	switch args.mode {
	case runMode:
		checkf(emuMain(args.Run, cfg), "emulation error")
	case romInfosMode:
		r, err := rom.Open(args.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		checkf(r.PrintInfos(os.Stdout), "failed to print rom infos")
	case benchMode:
		if !benchMain(args.Bench, cfg) {
			os.Exit(1)
		}
	case configMode:
		if args.Config.Save {
			path, err := emu.SaveConfig(cfg)
			checkf(err, "failed to save config")
			fmt.Println("config saved to", path)
			return
		}
		checkf(emu.WriteConfig(os.Stdout, cfg), "failed to write config")
	case versionMode:
		printVersion()
	}
}

func printVersion() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println("chipster (unknown version)")
		return
	}
	fmt.Printf("chipster %s (%s)\n", bi.Main.Version, bi.GoVersion)
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			fmt.Println("revision", s.Value)
		}
	}
}

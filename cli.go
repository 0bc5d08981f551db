package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"chipster/emu/log"
	"chipster/hw"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM, or a directory of ROMs
	romInfosMode             // Show ROM infos
	benchMode                // Run ROMs headless, as fast as possible
	configMode               // Show or save the configuration
	versionMode              // Show Chipster version
)

type (
	CLI struct {
		Run      Run       `cmd:"" help:"Run ROM in emulator. (default command)" default:"withargs"`
		RomInfos RomInfos  `cmd:"" help:"Show ROM infos and disassembly." name:"rom-infos"`
		Bench    Bench     `cmd:"" help:"Run ROMs headless and report emulation speed."`
		Config   ConfigCmd `cmd:"" help:"Show the current configuration." name:"config"`
		Version  Version   `cmd:"" help:"Show Chipster version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"true" type:"existingpath"`

		Platform platformFlag `name:"platform" help:"${platform_help}" placeholder:"VARIANT"`
		TickRate int          `name:"tick-rate" help:"Instructions per frame. (0: platform default)"`
		Seed     uint64       `name:"seed" help:"Random generator seed. (0: random)"`
		Monitor  int32        `name:"monitor" help:"Monitor index to use. (-1: from config)" default:"-1"`
		Scale    int          `name:"scale" help:"Window scale factor."`

		TTY        bool   `name:"tty" help:"Render in the terminal." xor:"display"`
		Headless   bool   `name:"headless" help:"Run without any display." xor:"display"`
		Frames     int    `name:"frames" help:"Number of frames to run in headless mode." default:"600"`
		Screenshot string `name:"screenshot" help:"Save the last frame as PNG. (headless only)" type:"path"`
		Snapshot   string `name:"snapshot" help:"Save the machine state at exit. (headless only)" type:"path"`

		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		StatsView  string   `name:"statsview" help:"Serve runtime statistics on the given address." placeholder:"HOST:PORT"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Bench struct {
		RomPaths []string     `arg:"" name:"/path/to/rom"`
		Frames   int          `name:"frames" help:"Number of frames to run per ROM." default:"3600"`
		Platform platformFlag `name:"platform" help:"${platform_help}" placeholder:"VARIANT"`
	}

	ConfigCmd struct {
		Save bool `name:"save" help:"Write the configuration file, creating it if needed."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":    "ROM file to run, or directory to choose a ROM from.",
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
	"platform_help":   "Emulated platform: " + strings.Join(variantNames(), ", ") + ".",
}

func variantNames() []string {
	var names []string
	for _, v := range hw.Variants() {
		names = append(names, v.String())
	}
	return names
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("chipster"),
		kong.Description("CHIP-8 emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "rom-infos"):
		cfg.mode = romInfosMode
	case strings.HasPrefix(ctx.Command(), "bench"):
		cfg.mode = benchMode
	case ctx.Command() == "config":
		cfg.mode = configMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

// platformFlag holds the platform variant, if one has been given.
type platformFlag struct {
	v   hw.Variant
	set bool
}

// Decode implements kong.MapperValue interface.
func (p *platformFlag) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	v, err := hw.ParseVariant(tok.Value.(string))
	if err != nil {
		return err
	}
	p.v, p.set = v, true
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n\t"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}

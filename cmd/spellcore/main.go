// spellcore is a deterministic spell arena: spells are trees of a small
// expression language, evaluated against one seeded world.
//
// Usage:
//
//	spellcore [--version] [--plain] [--script <file>] [--replay <file>] [--trace] [--log <severity>] [--config <file>] [--seed <n>] [--book <dir>]
//	spellcore gen [--config <file>] [--seed <n>] [--depth <n>] [--count <n>] [--yaml]
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/spellcore/cli"
	"github.com/nathoo/spellcore/config"
	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/generate"
	"github.com/nathoo/spellcore/engine/replay"
	"github.com/nathoo/spellcore/engine/rng"
	"github.com/nathoo/spellcore/loader"
	"github.com/nathoo/spellcore/spell"
	"github.com/nathoo/spellcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	usagePlay = "Usage: spellcore [--version] [--plain] [--script <file>] [--replay <file>] [--trace] [--log <severity>] [--config <file>] [--seed <n>] [--book <dir>]"
	usageGen  = "Usage: spellcore gen [--config <file>] [--seed <n>] [--depth <n>] [--count <n>] [--yaml]"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the flags both modes share plus the play-only ones.
type options struct {
	plain, trace, yaml bool
	script, cfgPath    string
	replayPath         string
	book               string
	seed               int64
	seedSet            bool
	depth, count       int
	logLevel           *diag.Severity // nil: diagnostics stay in the trace
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	gen := len(args) > 0 && args[0] == "gen"
	if gen {
		args = args[1:]
	}

	opts := options{count: 1}
	for i := 0; i < len(args); i++ {
		// value returns the argument following a flag.
		value := func() (string, bool) {
			if i+1 >= len(args) {
				fmt.Fprintf(stderr, "%s requires a value\n", args[i])
				return "", false
			}
			i++
			return args[i], true
		}
		integer := func() (int64, bool) {
			flag := args[i]
			v, ok := value()
			if !ok {
				return 0, false
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				fmt.Fprintf(stderr, "%s: %q is not a number\n", flag, v)
				return 0, false
			}
			return n, true
		}

		ok := true
		switch args[i] {
		case "--version":
			fmt.Fprintf(stdout, "spellcore %s (commit %s, built %s)\n", version, commit, date)
			return 0
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--yaml":
			opts.yaml = true
		case "--log":
			var name string
			if name, ok = value(); ok {
				sev, err := diag.ParseSeverity(name)
				if err != nil {
					fmt.Fprintf(stderr, "--log: %v\n", err)
					ok = false
				}
				opts.logLevel = &sev
			}
		case "--script":
			opts.script, ok = value()
		case "--replay":
			opts.replayPath, ok = value()
		case "--config":
			opts.cfgPath, ok = value()
		case "--book":
			opts.book, ok = value()
		case "--seed":
			opts.seed, ok = integer()
			opts.seedSet = ok
		case "--depth":
			var n int64
			n, ok = integer()
			opts.depth = int(n)
		case "--count":
			var n int64
			n, ok = integer()
			opts.count = int(n)
		default:
			fmt.Fprintf(stderr, "unknown argument %q\n", args[i])
			ok = false
		}
		if !ok {
			if gen {
				fmt.Fprintln(stderr, usageGen)
			} else {
				fmt.Fprintln(stderr, usagePlay)
			}
			return 1
		}
	}

	// A transcript printed by /transcript replays from its own seed.
	var tr *replay.Transcript
	if opts.replayPath != "" && !gen {
		data, err := os.ReadFile(opts.replayPath)
		if err == nil {
			tr, err = replay.Unmarshal(data)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error reading transcript: %v\n", err)
			return 1
		}
		opts.seed, opts.seedSet = tr.Seed, true
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if gen {
		if err := runGen(cfg, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	return runPlay(cfg, opts, tr, stdin, stdout, stderr)
}

func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.cfgPath != "" {
		var err error
		if cfg, err = config.Load(opts.cfgPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.seedSet {
		cfg.Seed = opts.seed
	}
	if opts.book != "" {
		cfg.Spellbook = opts.book
	}
	return cfg.Normalized(), nil
}

func runPlay(cfg config.Config, opts options, tr *replay.Transcript, stdin io.Reader, stdout, stderr io.Writer) int {
	var book *loader.Book
	if cfg.Spellbook != "" {
		var err error
		if book, err = loader.Load(cfg.Spellbook); err != nil {
			fmt.Fprintf(stderr, "Error loading spellbook: %v\n", err)
			return 1
		}
	}

	eng, err := engine.New(cfg, book)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != nil {
		eng.LogTo(diag.NewLogSink(stderr, *opts.logLevel))
	}

	// Transcript mode: run the recorded commands, force plain, echo them.
	if tr != nil {
		c := cli.New(eng)
		c.In = strings.NewReader(strings.Join(tr.Commands, "\n") + "\n")
		c.Out = stdout
		c.EchoInput = true
		c.Trace = opts.trace
		c.Run()
		return 0
	}

	// Script mode: read commands from a file, force plain, echo commands.
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening script: %v\n", err)
			return 1
		}
		defer f.Close()
		c := cli.New(eng)
		c.In, c.Out = f, stdout
		c.EchoInput = true
		c.Trace = opts.trace
		c.Run()
		return 0
	}

	// Use the plain CLI if asked to or when stdout is not a terminal.
	if opts.plain || !isTerminal(stdout) {
		c := cli.New(eng)
		c.In, c.Out = stdin, stdout
		c.Trace = opts.trace
		c.Run()
		return 0
	}

	if err := tui.Run(eng, opts.trace); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// genRecord is one generated spell as dumped by gen --yaml.
type genRecord struct {
	Name       string `yaml:"name"`
	Complexity uint32 `yaml:"complexity"`
	Nodes      int    `yaml:"nodes"`
	Depth      int    `yaml:"depth"`
	Spell      string `yaml:"spell"`
}

// runGen prints count spells generated from the configured seed.
func runGen(cfg config.Config, opts options, out io.Writer) error {
	gc := cfg.Generator
	depth := gc.MaxDepth
	if opts.depth > 0 {
		depth = opts.depth
	}
	if opts.count < 1 {
		return fmt.Errorf("gen: --count must be positive, got %d", opts.count)
	}

	r := rng.New(cfg.Seed)
	records := make([]genRecord, 0, opts.count)
	for i := 0; i < opts.count; i++ {
		sp, c, err := generate.Accept(r, depth, gc.MinComplexity, gc.MaxComplexity, gc.Attempts)
		if err != nil {
			return err
		}
		rec := genRecord{
			Name:       sp.Name,
			Complexity: c,
			Nodes:      spell.Count(sp),
			Depth:      spell.Depth(sp),
		}
		if opts.yaml {
			rec.Spell = spell.Format(sp)
			records = append(records, rec)
			continue
		}
		fmt.Fprintf(out, "%d. %s (complexity %d, %d nodes, depth %d)\n", i+1, rec.Name, rec.Complexity, rec.Nodes, rec.Depth)
		fmt.Fprintln(out, spell.Pretty(sp, 80))
		fmt.Fprintln(out)
	}

	if opts.yaml {
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("gen: %w", err)
		}
		_, err = out.Write(data)
		return err
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

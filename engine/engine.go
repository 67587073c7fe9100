// Package engine provides the Step() orchestrator that turns typed
// commands into casts, movement and ticks against one arena.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/config"
	"github.com/nathoo/spellcore/engine/bots"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/parser"
	"github.com/nathoo/spellcore/engine/replay"
	"github.com/nathoo/spellcore/engine/rng"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/loader"
	"github.com/nathoo/spellcore/spell"
	"github.com/nathoo/spellcore/types"
)

// MaxWait caps the ticks one wait command may advance.
const MaxWait = 1000

// stride is how far one move command carries the player.
const stride = 1.0

// headings maps compass abbreviations to radians, east = 0, north = π/2.
var headings = map[string]float64{
	"e":  0,
	"ne": math.Pi / 4,
	"n":  math.Pi / 2,
	"nw": 3 * math.Pi / 4,
	"w":  math.Pi,
	"sw": -3 * math.Pi / 4,
	"s":  -math.Pi / 2,
	"se": -math.Pi / 4,
}

// Engine holds one arena and the session driving it.
type Engine struct {
	Config     config.Config
	Book       *loader.Book
	Space      *world.Space
	Player     token.Token
	Cursor     geom.Point
	Bots       []*bots.Bot
	Transcript *replay.Transcript

	sink *diag.MemorySink
}

// New creates an arena from cfg, fills the player's and the bots' spell
// lists from book, and places everyone.
func New(cfg config.Config, book *loader.Book) (*Engine, error) {
	cfg = cfg.Normalized()
	if book == nil {
		book = loader.Builtin()
	}
	sink := diag.NewMemorySink()
	e := &Engine{
		Config:     cfg,
		Book:       book,
		Space:      world.New(cfg.WorldConfig(), rng.New(cfg.Seed), sink),
		Transcript: replay.New(cfg.Seed),
		sink:       sink,
	}

	spells, err := e.spellsNamed(cfg.Player.Spells)
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", cfg.Player.Name, err)
	}
	p := world.NewPlayer(cfg.Player.Name, cfg.Player.Health, cfg.Player.Mana, spells...)
	e.Player = e.Space.PlayerEnter(geom.Point{X: cfg.Player.X, Y: cfg.Player.Y}, p)
	e.Cursor = p.Position

	for _, bc := range cfg.Bots {
		if _, err := e.addBot(bc, geom.Point{X: bc.X, Y: bc.Y}); err != nil {
			return nil, err
		}
	}
	sink.Drain()
	return e, nil
}

// LogTo copies every diagnostic the arena reports to s, alongside the
// per-step events returned in Result.Events.
func (e *Engine) LogTo(s diag.Sink) {
	e.Space.SetSink(diag.Fanout(e.sink, s))
}

// spellsNamed looks names up in the book. No names means the whole book.
func (e *Engine) spellsNamed(names []string) ([]*spell.Spell, error) {
	if len(names) == 0 {
		return append([]*spell.Spell(nil), e.Book.Spells...), nil
	}
	out := make([]*spell.Spell, 0, len(names))
	for _, n := range names {
		sp, ok := e.Book.Spell(n)
		if !ok {
			return nil, fmt.Errorf("unknown spell %q", n)
		}
		out = append(out, sp)
	}
	return out, nil
}

func (e *Engine) addBot(bc config.BotConfig, at geom.Point) (*bots.Bot, error) {
	spells, err := e.spellsNamed(bc.Spells)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bc.Name, err)
	}
	p := world.NewPlayer(bc.Name, e.Config.Player.Health, e.Config.Player.Mana, spells...)
	b := &bots.Bot{
		Name:    bc.Name,
		Token:   e.Space.PlayerEnter(at, p),
		Weights: bc.Weights,
		Every:   bc.Every,
	}
	e.Bots = append(e.Bots, b)
	return b, nil
}

// Intro returns the lines shown when a session starts.
func (e *Engine) Intro() []string {
	out := []string{
		fmt.Sprintf("spellcore arena, seed %d, %gx%g.", e.Config.Seed, e.Config.World.Width, e.Config.World.Height),
	}
	out = append(out, e.look()...)
	for _, w := range e.Book.Warnings {
		out = append(out, "warning: "+w)
	}
	return out
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 3. Log the command for replay.
	e.Transcript.Record(strings.TrimSpace(input))

	// 4. A downed player can still look around and let time pass.
	if e.down() && (intent.Verb == "cast" || intent.Verb == "move") {
		result.Output = append(result.Output, "You are down. Use /replay, /state or /quit.")
		return result
	}

	// 5. Dispatch.
	ticks := 0
	switch intent.Verb {
	case "cast":
		var ok bool
		result.Output, ok = e.cast(intent)
		if ok {
			ticks = 1
		}
	case "aim":
		result.Output = e.aim(intent)
	case "move":
		var ok bool
		result.Output, ok = e.move(intent.Object)
		if ok {
			ticks = 1
		}
	case "wait":
		var err error
		ticks, err = waitTicks(intent.Object)
		if err != nil {
			result.Output = append(result.Output, err.Error())
		} else {
			result.Output = append(result.Output, timePasses(ticks))
		}
	case "look":
		result.Output = e.look()
	case "spells":
		result.Output = e.spells(intent.Object)
	case "learn":
		result.Output = e.learn(intent.Object)
	case "gen":
		result.Output = e.gen(intent.Object)
	case "spawn":
		result.Output = e.spawn(intent)
	case "leave":
		result.Output = e.leave(intent.Object)
	default:
		result.Output = append(result.Output, fmt.Sprintf("I don't know how to %q. Type /help for commands.", intent.Verb))
	}

	// 6. Bots act and the arena moves on.
	if ticks > 0 {
		result.Output = append(result.Output, e.advance(ticks)...)
		result.Ticks = ticks
	}

	// 7. Collect what the world reported.
	result.Events = e.sink.Drain()
	result.Output = append(result.Output, narrate(result.Events)...)
	return result
}

// advance runs n rounds of bot turns followed by a tick.
func (e *Engine) advance(n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		for _, a := range bots.TakeTurns(e.Space, e.Bots) {
			out = append(out, e.botMessage(a))
		}
		e.Space.Tick()
	}
	return out
}

// Checkpoint captures the arena for replay comparison.
func (e *Engine) Checkpoint() replay.Checkpoint {
	return replay.Capture(e.Space)
}

// Replay rebuilds the arena from the seed, re-runs the transcript and
// reports whether it ends where this session is now.
func (e *Engine) Replay() (replay.Report, error) {
	fresh, err := New(e.Config, e.Book)
	if err != nil {
		return replay.Report{}, err
	}
	return replay.Run(e.Transcript, fresh, e.Checkpoint()), nil
}

func (e *Engine) self() *world.Player {
	p, _ := e.Space.Player(e.Player)
	return p
}

func (e *Engine) down() bool {
	p := e.self()
	return p == nil || p.Health <= 0
}

func (e *Engine) aim(intent types.Intent) []string {
	text := intent.Object
	if text == "" {
		text = intent.Target
	}
	if text == "" {
		return []string{fmt.Sprintf("Aiming at %s.", e.Cursor)}
	}
	at, err := e.point(text)
	if err != nil {
		return []string{err.Error()}
	}
	e.Cursor = at
	return []string{fmt.Sprintf("Aiming at %s.", at)}
}

func (e *Engine) move(dir string) ([]string, bool) {
	if dir == "" {
		return []string{"Move where? (n, s, e, w, ne, nw, se, sw)"}, false
	}
	h, ok := headings[dir]
	if !ok {
		if d, known := parser.Direction(dir); known {
			h = headings[d]
		} else {
			return []string{fmt.Sprintf("%q is not a direction.", dir)}, false
		}
	}
	p := e.self()
	to := p.Position.Add(geom.Polar(h, stride))
	if !e.inBounds(to) {
		return []string{"You can't go that way."}, false
	}
	p.Position = to
	return []string{fmt.Sprintf("You move to %s.", to)}, true
}

func (e *Engine) inBounds(p geom.Point) bool {
	const slack = 1e-9
	w, h := e.Config.World.Width, e.Config.World.Height
	return p.X >= -slack && p.Y >= -slack && p.X <= w+slack && p.Y <= h+slack
}

func waitTicks(arg string) (int, error) {
	if arg == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("wait how long? %q is not a tick count", arg)
	}
	if n > MaxWait {
		n = MaxWait
	}
	return n, nil
}

func timePasses(n int) string {
	if n == 1 {
		return "Time passes."
	}
	return fmt.Sprintf("%d ticks pass.", n)
}

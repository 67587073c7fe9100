package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/spellcore/config"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/loader"
	"github.com/nathoo/spellcore/types"
)

// testConfig puts the player at (2,2) in a quiet 40x20 arena.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Player.X, cfg.Player.Y = 2, 2
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	e, err := New(cfg, loader.Builtin())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// addDummy places a player that never acts.
func addDummy(e *Engine, name string, at geom.Point) token.Token {
	return e.Space.PlayerEnter(at, world.NewPlayer(name, 100, 100))
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestNew_WholeBookByDefault(t *testing.T) {
	e := newTestEngine(t, testConfig())
	p := e.self()
	if len(p.Spells) != 3 {
		t.Fatalf("expected 3 spells, got %d", len(p.Spells))
	}
	if p.Spells[0].Name != "combat_blink" {
		t.Errorf("expected book order, got %q first", p.Spells[0].Name)
	}
	if p.Position != (geom.Point{X: 2, Y: 2}) {
		t.Errorf("expected player at (2,2), got %v", p.Position)
	}
	if e.Cursor != p.Position {
		t.Errorf("cursor should start on the player, got %v", e.Cursor)
	}
	if e.Transcript.Seed != 7 || e.Transcript.Len() != 0 {
		t.Errorf("unexpected transcript %+v", e.Transcript)
	}
}

func TestNew_NamedSpells(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Spells = []string{"fireball"}
	e := newTestEngine(t, cfg)
	if got := len(e.self().Spells); got != 1 {
		t.Fatalf("expected 1 spell, got %d", got)
	}
}

func TestNew_UnknownSpell(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Spells = []string{"meteor"}
	_, err := New(cfg, loader.Builtin())
	if err == nil || !strings.Contains(err.Error(), "meteor") {
		t.Fatalf("expected unknown spell error, got %v", err)
	}
}

func TestNew_UnknownBotSpell(t *testing.T) {
	cfg := testConfig()
	cfg.Bots = []config.BotConfig{{Name: "imp", Spells: []string{"meteor"}}}
	_, err := New(cfg, loader.Builtin())
	if err == nil || !strings.Contains(err.Error(), "bot imp") {
		t.Fatalf("expected bot error, got %v", err)
	}
}

func TestStep_EmptyInput(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("")
	if !outputContains(result.Output, "What do you want to do?") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if e.Transcript.Len() != 0 {
		t.Error("empty input should not be logged")
	}
}

func TestStep_UnknownVerb(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("dance")
	if !outputContains(result.Output, `I don't know how to "dance"`) {
		t.Errorf("unexpected output %v", result.Output)
	}
	if e.Space.TickCount() != 0 {
		t.Error("an unknown verb should not advance time")
	}
}

func TestStep_CommandLogged(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Step("look")
	e.Step("  wait 2 ")
	if got := strings.Join(e.Transcript.Commands, "|"); got != "look|wait 2" {
		t.Errorf("transcript = %q", got)
	}
}

func TestStep_Move(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("move n")
	if result.Ticks != 1 {
		t.Errorf("expected 1 tick, got %d", result.Ticks)
	}
	p := e.self()
	if geom.Dist(p.Position, geom.Point{X: 2, Y: 3}) > 1e-9 {
		t.Errorf("expected (2,3), got %v", p.Position)
	}

	e.Step("sw")
	want := geom.Point{X: 2 - 0.7071067811865476, Y: 3 - 0.7071067811865476}
	if geom.Dist(p.Position, want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, p.Position)
	}
}

func TestStep_MoveOutOfBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Player.X, cfg.Player.Y = 0, 0
	e := newTestEngine(t, cfg)
	result := e.Step("move w")
	if !outputContains(result.Output, "can't go that way") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if e.Space.TickCount() != 0 {
		t.Error("a refused move should not advance time")
	}
}

func TestStep_MoveWithoutDirection(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("move")
	if !outputContains(result.Output, "Move where?") {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestStep_Wait(t *testing.T) {
	tests := []struct {
		input string
		ticks uint64
		out   string
	}{
		{"wait", 1, "Time passes."},
		{"z", 1, "Time passes."},
		{"tick 5", 5, "5 ticks pass."},
		{"wait 5000", MaxWait, "1000 ticks pass."},
		{"wait soon", 0, "not a tick count"},
		{"wait 0", 0, "not a tick count"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newTestEngine(t, testConfig())
			result := e.Step(tt.input)
			if e.Space.TickCount() != tt.ticks {
				t.Errorf("expected tick %d, got %d", tt.ticks, e.Space.TickCount())
			}
			if !outputContains(result.Output, tt.out) {
				t.Errorf("expected %q in %v", tt.out, result.Output)
			}
		})
	}
}

func TestStep_Aim(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Step("aim 3 4")
	if e.Cursor != (geom.Point{X: 3, Y: 4}) {
		t.Errorf("expected cursor (3,4), got %v", e.Cursor)
	}
	result := e.Step("aim nowhere")
	if !outputContains(result.Output, "neither a point nor a player") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if e.Cursor != (geom.Point{X: 3, Y: 4}) {
		t.Error("a bad aim should leave the cursor alone")
	}
}

func TestStep_AimAtPlayer(t *testing.T) {
	e := newTestEngine(t, testConfig())
	addDummy(e, "dummy", geom.Point{X: 9, Y: 1})
	e.Step("aim at dummy")
	if e.Cursor != (geom.Point{X: 9, Y: 1}) {
		t.Errorf("expected cursor on the dummy, got %v", e.Cursor)
	}
}

func TestStep_CastFireballHitsDummy(t *testing.T) {
	e := newTestEngine(t, testConfig())
	dummy := addDummy(e, "dummy", geom.Point{X: 6, Y: 2})

	result := e.Step("cast fireball at dummy")
	if !outputContains(result.Output, "You cast fireball") {
		t.Fatalf("unexpected output %v", result.Output)
	}
	if got := e.self().Mana; got != 50 {
		t.Errorf("expected mana 50 after paying, got %d", got)
	}

	e.Step("wait 20")
	d, _ := e.Space.Player(dummy)
	if d.Health < 50 || d.Health > 60 {
		t.Errorf("expected dummy health in [50,60], got %d", d.Health)
	}

	// The fireball scalded its caster when it burst, so a second cast is refused.
	result = e.Step("cast fireball")
	if !outputContains(result.Output, "can't cast fireball") {
		t.Errorf("expected a refusal, got %v", result.Output)
	}
	if got := e.self().Mana; got != 50 {
		t.Errorf("a refused cast should cost nothing, mana %d", got)
	}
}

func TestStep_CastByIndex(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("cast 3 at 10 2")
	if !outputContains(result.Output, "You cast swarm at (10.0,2.0)") {
		t.Fatalf("unexpected output %v", result.Output)
	}
	if e.Cursor != (geom.Point{X: 10, Y: 2}) {
		t.Errorf("cursor should follow the cast target, got %v", e.Cursor)
	}
	if result.Ticks != 1 {
		t.Errorf("a cast should take one tick, got %d", result.Ticks)
	}
}

func TestStep_CastUnknown(t *testing.T) {
	e := newTestEngine(t, testConfig())
	for _, in := range []string{"cast meteor", "cast 9", "cast"} {
		result := e.Step(in)
		if result.Ticks != 0 {
			t.Errorf("%q advanced time", in)
		}
		if len(result.Output) == 0 {
			t.Errorf("%q produced no output", in)
		}
	}
}

func TestStep_CastInsufficient(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.self().Mana = 10
	result := e.Step("cast fireball")
	if !outputContains(result.Output, "can't afford fireball") {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestStep_Look(t *testing.T) {
	e := newTestEngine(t, testConfig())
	addDummy(e, "dummy", geom.Point{X: 5, Y: 5})
	result := e.Step("look")
	if !outputContains(result.Output, "You: you at (2.0,2.0) hp 100/100 mp 100/100") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if !outputContains(result.Output, "dummy at (5.0,5.0)") {
		t.Errorf("expected the dummy listed, got %v", result.Output)
	}
}

func TestStep_Spells(t *testing.T) {
	e := newTestEngine(t, testConfig())
	result := e.Step("spells")
	if !outputContains(result.Output, "1. combat_blink") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if !outputContains(result.Output, "Spellbook: combat_blink, fireball, swarm.") {
		t.Errorf("expected the book listed, got %v", result.Output)
	}

	result = e.Step("spells fireball")
	if !outputContains(result.Output, "SpawnProjectileAt") {
		t.Errorf("expected a printed spell, got %v", result.Output)
	}
}

func TestStep_Learn(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Spells = []string{"fireball"}
	e := newTestEngine(t, cfg)

	result := e.Step("learn swarm")
	if !outputContains(result.Output, "You learn swarm.") {
		t.Errorf("unexpected output %v", result.Output)
	}
	result = e.Step("learn swarm")
	if !outputContains(result.Output, "already know swarm") {
		t.Errorf("unexpected output %v", result.Output)
	}
	result = e.Step("learn meteor")
	if !outputContains(result.Output, `no spell called "meteor"`) {
		t.Errorf("unexpected output %v", result.Output)
	}
	if got := len(e.self().Spells); got != 2 {
		t.Errorf("expected 2 spells, got %d", got)
	}
}

func TestStep_Gen(t *testing.T) {
	cfg := testConfig()
	cfg.Generator.MinComplexity = 1
	cfg.Generator.MaxComplexity = 100000
	e := newTestEngine(t, cfg)

	result := e.Step("gen 4")
	if !outputContains(result.Output, "You invent spell-") {
		t.Fatalf("unexpected output %v", result.Output)
	}
	if got := len(e.self().Spells); got != 4 {
		t.Errorf("expected the invention learned, got %d spells", got)
	}

	result = e.Step("gen 0")
	if !outputContains(result.Output, "not a positive depth") {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestStep_SpawnAndLeave(t *testing.T) {
	e := newTestEngine(t, testConfig())

	result := e.Step("spawn imp at 5 5")
	if !outputContains(result.Output, "imp enters the arena at (5.0,5.0)") {
		t.Fatalf("unexpected output %v", result.Output)
	}
	if len(e.Bots) != 1 {
		t.Fatalf("expected 1 bot, got %d", len(e.Bots))
	}

	result = e.Step("spawn IMP")
	if !outputContains(result.Output, "already a player called imp") {
		t.Errorf("unexpected output %v", result.Output)
	}

	result = e.Step("leave you")
	if !outputContains(result.Output, "can't leave your own arena") {
		t.Errorf("unexpected output %v", result.Output)
	}

	result = e.Step("leave imp")
	if !outputContains(result.Output, "imp leaves the arena.") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if len(e.Bots) != 0 || len(e.Space.Players()) != 1 {
		t.Errorf("imp should be gone: %d bots, %d players", len(e.Bots), len(e.Space.Players()))
	}
}

func TestStep_SpawnTrailingPoint(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Step("spawn ghost 3 4")
	st := e.Status()
	if len(st.Opponents) != 1 || st.Opponents[0].Name != "ghost" {
		t.Fatalf("expected ghost, got %+v", st.Opponents)
	}
	if st.Opponents[0].X != 3 || st.Opponents[0].Y != 4 {
		t.Errorf("expected ghost at (3,4), got (%v,%v)", st.Opponents[0].X, st.Opponents[0].Y)
	}
}

func TestStep_SpawnConfiguredBot(t *testing.T) {
	cfg := testConfig()
	cfg.Bots = []config.BotConfig{{Name: "imp", X: 8, Y: 8, Spells: []string{"fireball"}}}
	e := newTestEngine(t, cfg)
	e.Step("leave imp")
	e.Step("spawn imp")
	st := e.Status()
	if len(st.Opponents) != 1 || st.Opponents[0].X != 8 || st.Opponents[0].Y != 8 {
		t.Fatalf("expected imp back at its configured spot, got %+v", st.Opponents)
	}
	if e.Bots[0].Every != 20 {
		t.Errorf("expected the configured cast interval, got %d", e.Bots[0].Every)
	}
}

func TestStep_BotsAct(t *testing.T) {
	cfg := testConfig()
	cfg.Bots = []config.BotConfig{{Name: "imp", X: 4, Y: 2, Spells: []string{"fireball"}, Every: 10}}
	e := newTestEngine(t, cfg)

	result := e.Step("wait 30")
	if !outputContains(result.Output, "imp casts fireball at you.") {
		t.Fatalf("expected the bot to cast, got %v", result.Output)
	}
	if got := e.self().Health; got >= 100 {
		t.Errorf("expected the fireball to land, health %d", got)
	}
}

func TestStep_Downed(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.self().Health = 0

	result := e.Step("cast fireball")
	if !outputContains(result.Output, "You are down") {
		t.Errorf("unexpected output %v", result.Output)
	}
	result = e.Step("look")
	if !outputContains(result.Output, "DOWN") {
		t.Errorf("expected look to show the downed player, got %v", result.Output)
	}
}

func TestStep_NarratesDowned(t *testing.T) {
	e := newTestEngine(t, testConfig())
	dummy := addDummy(e, "dummy", geom.Point{X: 6, Y: 2})
	d, _ := e.Space.Player(dummy)
	d.Health = 30

	e.Step("cast fireball at dummy")
	result := e.Step("wait 20")
	if !outputContains(result.Output, "Dummy is down.") {
		t.Errorf("expected the knockout narrated, got %v", result.Output)
	}
	if len(result.Events) == 0 {
		t.Error("expected diagnostic events with the result")
	}
}

func TestReplay_Matches(t *testing.T) {
	cfg := testConfig()
	cfg.Generator.MinComplexity = 1
	cfg.Generator.MaxComplexity = 100000
	cfg.Bots = []config.BotConfig{{Name: "imp", X: 6, Y: 2, Every: 5}}
	e := newTestEngine(t, cfg)

	for _, cmd := range []string{
		"cast fireball at imp",
		"wait 10",
		"gen 3",
		"move ne",
		"spawn ghost at 10 10",
		"cast 4 at ghost",
		"wait 25",
		"leave ghost",
		"wait 3",
	} {
		e.Step(cmd)
	}

	r, err := e.Replay()
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !r.Match {
		t.Fatalf("replay diverged:\n%s", strings.Join(r.Diff, "\n"))
	}
	if r.Commands != 9 {
		t.Errorf("expected 9 commands replayed, got %d", r.Commands)
	}
}

func TestReplay_DetectsTampering(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Step("wait 3")
	e.self().Health = 1

	r, err := e.Replay()
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if r.Match {
		t.Fatal("expected a tampered arena to diverge")
	}
}

func TestIntro(t *testing.T) {
	e := newTestEngine(t, testConfig())
	intro := e.Intro()
	if !outputContains(intro, "seed 7") {
		t.Errorf("unexpected intro %v", intro)
	}
}

func TestLogTo_CopiesDiagnostics(t *testing.T) {
	e := newTestEngine(t, testConfig())
	logged := diag.NewMemorySink()
	e.LogTo(logged)

	res := e.Step("cast fireball at 10 2")
	if len(logged.OfType(diag.CastOK)) != 1 {
		t.Errorf("log sink got %v", logged.Events())
	}
	var inResult bool
	for _, ev := range res.Events {
		inResult = inResult || ev.Type == diag.CastOK
	}
	if !inResult {
		t.Errorf("Result.Events lost the cast: %v", res.Events)
	}
}

func TestStep_LookListsProjectiles(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Step("cast fireball at 10 2")
	result := e.Step("look")
	if !outputContains(result.Output, "1 projectile in flight.") {
		t.Errorf("expected the projectile count, got %v", result.Output)
	}
	if !outputContains(result.Output, "moving 12.0 heading 0°") {
		t.Errorf("expected the fireball's motion, got %v", result.Output)
	}
}

func TestFormatProjectile(t *testing.T) {
	tests := []struct {
		in   types.ProjectileStatus
		want string
	}{
		{types.ProjectileStatus{X: 1, Y: 2}, "projectile at (1.0,2.0) at rest"},
		{types.ProjectileStatus{X: 0, Y: 0, Speed: 3, Heading: 270}, "projectile at (0.0,0.0) moving 3.0 heading 270°"},
	}
	for _, tt := range tests {
		if got := FormatProjectile(tt.in); got != tt.want {
			t.Errorf("FormatProjectile(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

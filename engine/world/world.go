// Package world owns the live players and projectiles of one arena and
// evaluates spells against them.
//
// A Space is single-owner: callers drive it from one goroutine, or guard
// every PlayerCast and Tick with one lock.
package world

import (
	"fmt"
	"math"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/rng"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

// Config holds the simulation constants.
type Config struct {
	TickPeriod      float64 // seconds per tick
	Damping         float64 // velocity multiplier per tick
	SlowBy          float64 // speed removed per tick after damping
	CollisionRadius float64
	BuffDuration    float64 // seconds granted per BuffStacks application
	MaxExecDepth    int     // nesting limit for instruction execution
	MaxSteps        int     // instructions one cast or tick may execute
}

// DefaultConfig returns the constants the arena normally runs with.
func DefaultConfig() Config {
	return Config{
		TickPeriod:      0.05,
		Damping:         0.9,
		SlowBy:          0.05,
		CollisionRadius: 1.0,
		BuffDuration:    5,
		MaxExecDepth:    64,
		MaxSteps:        10000,
	}
}

// Player is a human-controlled entity.
type Player struct {
	Name      string
	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32
	Buffs     buff.Stacks
	Position  geom.Point
	Velocity  geom.Vector // units per second
	Spells    []*spell.Spell
}

// NewPlayer returns a player at full health and mana.
func NewPlayer(name string, health, mana int32, spells ...*spell.Spell) *Player {
	return &Player{
		Name:      name,
		Health:    health,
		MaxHealth: health,
		Mana:      mana,
		MaxMana:   mana,
		Buffs:     buff.Stacks{},
		Spells:    spells,
	}
}

// Projectile is an entity spawned from a blueprint.
type Projectile struct {
	Blueprint *spell.ProjectileBlueprint
	Caster    token.Token
	Position  geom.Point
	Velocity  geom.Vector
	Target    geom.Point
	Lifetime  float64 // seconds remaining

	dying bool
}

// Space is the arena.
type Space struct {
	cfg  Config
	rng  *rng.RNG
	sink diag.Sink
	tick uint64

	players     map[token.Token]*Player
	projectiles map[token.Token]*Projectile
	humans      token.Set
	shots       token.Set
	all         token.Set

	// Tokens freed while an evaluation is running stay unusable until it
	// finishes, since bindings in its contexts may still name them.
	busy    int
	retired token.Set
	depth   int
	steps   int  // instructions run since busy left zero
	spent   bool // steps reached MaxSteps and was reported
}

// New creates an empty arena. A nil sink discards diagnostics.
func New(cfg Config, r *rng.RNG, sink diag.Sink) *Space {
	if sink == nil {
		sink = diag.Nop()
	}
	if cfg.MaxExecDepth <= 0 {
		cfg.MaxExecDepth = DefaultConfig().MaxExecDepth
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultConfig().MaxSteps
	}
	return &Space{
		cfg:         cfg,
		rng:         r,
		sink:        sink,
		players:     map[token.Token]*Player{},
		projectiles: map[token.Token]*Projectile{},
	}
}

func (s *Space) Config() Config { return s.cfg }
func (s *Space) RNG() *rng.RNG { return s.rng }
func (s *Space) TickCount() uint64 { return s.tick }
func (s *Space) SetSink(d diag.Sink) { s.sink = d }

// Player returns the live player behind t.
func (s *Space) Player(t token.Token) (*Player, bool) {
	p, ok := s.players[t]
	return p, ok
}

// Projectile returns the live projectile behind t.
func (s *Space) Projectile(t token.Token) (*Projectile, bool) {
	pr, ok := s.projectiles[t]
	return pr, ok
}

// Players returns the live player tokens in ascending order.
func (s *Space) Players() []token.Token { return s.humans.Slice() }

// Projectiles returns the live projectile tokens in ascending order.
func (s *Space) Projectiles() []token.Token { return s.shots.Slice() }

// Universe returns every live token.
func (s *Space) Universe() token.Set { return s.all.Clone() }

// Alive reports whether t names a live entity.
func (s *Space) Alive(t token.Token) bool { return s.all.Contains(t) }

// Position returns where t is.
func (s *Space) Position(t token.Token) (geom.Point, bool) {
	if p, ok := s.players[t]; ok {
		return p.Position, true
	}
	if pr, ok := s.projectiles[t]; ok {
		return pr.Position, true
	}
	return geom.Origin, false
}

// PlayerEnter places p at pt and returns its new token.
func (s *Space) PlayerEnter(pt geom.Point, p *Player) token.Token {
	if p.Buffs == nil {
		p.Buffs = buff.Stacks{}
	}
	p.Position = pt
	t := s.allocate()
	s.players[t] = p
	s.humans.Insert(t)
	s.all.Insert(t)
	return t
}

// PlayerLeave removes the player behind t and returns its final state.
func (s *Space) PlayerLeave(t token.Token) (*Player, bool) {
	p, ok := s.players[t]
	if !ok {
		return nil, false
	}
	delete(s.players, t)
	s.humans.Remove(t)
	s.free(t)
	return p, true
}

// allocate probes upward from a random start for a token that is neither
// live, Null, nor retired.
func (s *Space) allocate() token.Token {
	t := token.Token(s.rng.Between(1, math.MaxUint32))
	for t == token.Null || s.all.Contains(t) || s.retired.Contains(t) {
		t++
	}
	return t
}

func (s *Space) free(t token.Token) {
	s.all.Remove(t)
	if s.busy > 0 {
		s.retired.Insert(t)
	}
}

func (s *Space) begin() {
	if s.busy == 0 {
		s.steps, s.spent = 0, false
	}
	s.busy++
}

func (s *Space) end() {
	s.busy--
	if s.busy == 0 {
		s.retired = token.Set{}
	}
}

func (s *Space) report(typ diag.Type, sev diag.Severity, actor token.Token, format string, args ...any) {
	s.sink.Report(diag.Event{
		Type:     typ,
		Tick:     s.tick,
		Actor:    actor,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

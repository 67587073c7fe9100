// Package bots drives computer opponents. A bot casts one of its spells,
// picked by weight, at the nearest other player every few ticks.
package bots

import (
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/engine/world"
)

// Bot is one computer-controlled player already in a Space.
type Bot struct {
	Name    string
	Token   token.Token
	Weights []int // pairs with the player's spells; missing weights count as 1
	Every   int   // ticks between casts
}

// Action records what a bot did on its turn.
type Action struct {
	Bot    string
	Spell  string
	Target token.Token // Null when the bot aimed at open ground
	At     geom.Point
	Result world.CastResult
}

// Due reports whether the bot acts at the given tick.
func (b *Bot) Due(tick uint64) bool {
	every := b.Every
	if every <= 0 {
		every = 1
	}
	return tick%uint64(every) == 0
}

// Turn lets the bot cast if it is due, alive and has something to cast.
// The spell is picked with the Space's own RNG, so a replayed session
// makes the same choices.
func (b *Bot) Turn(s *world.Space) (Action, bool) {
	if !b.Due(s.TickCount()) {
		return Action{}, false
	}
	p, ok := s.Player(b.Token)
	if !ok || p.Health <= 0 || len(p.Spells) == 0 {
		return Action{}, false
	}
	target, ok := Nearest(s, b.Token)
	if !ok {
		return Action{}, false
	}
	at, _ := s.Position(target)

	idx := s.RNG().WeightedSelect(b.weights(len(p.Spells)))
	res := s.PlayerCast(b.Token, idx, at)
	return Action{
		Bot:    b.Name,
		Spell:  p.Spells[idx].Name,
		Target: target,
		At:     at,
		Result: res,
	}, true
}

func (b *Bot) weights(n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = 1
		if i < len(b.Weights) && b.Weights[i] > 0 {
			w[i] = b.Weights[i]
		}
	}
	return w
}

// Nearest returns the living player closest to self, lowest token on ties.
func Nearest(s *world.Space, self token.Token) (token.Token, bool) {
	from, ok := s.Position(self)
	if !ok {
		return token.Null, false
	}
	best := token.Null
	bestDist := 0.0
	for _, t := range s.Players() {
		if t == self {
			continue
		}
		p, _ := s.Player(t)
		if p.Health <= 0 {
			continue
		}
		d := geom.Dist(from, p.Position)
		if best == token.Null || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, best != token.Null
}

// TakeTurns runs every due bot in order and returns what they did.
func TakeTurns(s *world.Space, bots []*Bot) []Action {
	var out []Action
	for _, b := range bots {
		if a, ok := b.Turn(s); ok {
			out = append(out, a)
		}
	}
	return out
}

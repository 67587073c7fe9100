package world

import (
	"fmt"
	"strings"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
)

// EntityView is the read-only state a host needs to draw one entity.
type EntityView struct {
	Token      token.Token
	Projectile bool
	Name       string
	Position   geom.Point
	Velocity   geom.Vector
	Health     int32
	MaxHealth  int32
	Mana       int32
	MaxMana    int32
	Buffs      []BuffView
	Lifetime   float64
	Caster     token.Token
}

// BuffView is one active buff on a player.
type BuffView struct {
	Buff      buff.Buff
	Count     uint32
	Remaining float64
}

// View lists every live entity in token order.
func (s *Space) View() []EntityView {
	out := make([]EntityView, 0, s.all.Len())
	for _, t := range s.all.Slice() {
		if p, ok := s.players[t]; ok {
			v := EntityView{
				Token:     t,
				Name:      p.Name,
				Position:  p.Position,
				Velocity:  p.Velocity,
				Health:    p.Health,
				MaxHealth: p.MaxHealth,
				Mana:      p.Mana,
				MaxMana:   p.MaxMana,
			}
			for _, b := range p.Buffs.Active() {
				st := p.Buffs[b]
				v.Buffs = append(v.Buffs, BuffView{Buff: b, Count: st.Count, Remaining: st.Duration})
			}
			out = append(out, v)
			continue
		}
		if pr, ok := s.projectiles[t]; ok {
			out = append(out, EntityView{
				Token:      t,
				Projectile: true,
				Position:   pr.Position,
				Velocity:   pr.Velocity,
				Lifetime:   pr.Lifetime,
				Caster:     pr.Caster,
			})
		}
	}
	return out
}

// Digest renders the whole arena as text. Two arenas with equal digests
// are in the same observable state.
func (s *Space) Digest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick=%d rng=%d\n", s.tick, s.rng.Position())
	for _, v := range s.View() {
		if v.Projectile {
			fmt.Fprintf(&b, "%s shot pos=%.4f,%.4f vel=%.4f,%.4f life=%.3f caster=%s\n",
				v.Token, v.Position.X, v.Position.Y, v.Velocity.X, v.Velocity.Y, v.Lifetime, v.Caster)
			continue
		}
		fmt.Fprintf(&b, "%s %s pos=%.4f,%.4f vel=%.4f,%.4f hp=%d/%d mp=%d/%d",
			v.Token, v.Name, v.Position.X, v.Position.Y, v.Velocity.X, v.Velocity.Y,
			v.Health, v.MaxHealth, v.Mana, v.MaxMana)
		for _, bv := range v.Buffs {
			fmt.Fprintf(&b, " %s:%d/%.3f", bv.Buff, bv.Count, bv.Remaining)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

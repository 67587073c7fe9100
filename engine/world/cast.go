package world

import (
	"sort"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/event"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
)

// CastResult is the outcome of PlayerCast.
type CastResult uint8

const (
	CastOK CastResult = iota
	CastNoSuchSpell
	CastDenied       // requires did not hold
	CastInsufficient // the caster could not pay
)

func (r CastResult) String() string {
	switch r {
	case CastOK:
		return "ok"
	case CastNoSuchSpell:
		return "no such spell"
	case CastDenied:
		return "denied"
	case CastInsufficient:
		return "insufficient resources"
	}
	return "unknown"
}

// Cost is the aggregated price of one cast.
type Cost struct {
	Mana   int64
	Health int64
	Buffs  map[buff.Buff]int64
}

// PlayerCast casts the caster's spell at index idx toward cursor.
//
// The caster is bound to entity slot 0 and the cursor to location slot 0.
// When requires fails or the caster cannot pay, OnCooldown runs and
// nothing is debited. Otherwise the whole cost is debited at once and
// OnCast runs against the same context.
func (s *Space) PlayerCast(caster token.Token, idx int, cursor geom.Point) CastResult {
	p, ok := s.players[caster]
	if !ok || idx < 0 || idx >= len(p.Spells) || p.Spells[idx] == nil {
		s.report(diag.NoSuchSpell, diag.SeverityDebug, caster, "spell %d", idx)
		return CastNoSuchSpell
	}
	sp := p.Spells[idx]

	s.begin()
	defer s.end()

	ctx := event.ForCast(caster, cursor)
	if !s.EvalCondition(ctx, sp.Requires) {
		s.report(diag.CastDenied, diag.SeverityInfo, caster, "%s: requirement not met", sp.Name)
		s.Execute(ctx, sp.OnCooldown)
		return CastDenied
	}

	cost := Cost{Buffs: map[buff.Buff]int64{}}
	for _, r := range sp.Consumes {
		a := s.EvalResource(ctx, r)
		if a.N <= 0 {
			continue
		}
		switch a.Kind {
		case ResMana:
			cost.Mana += int64(a.N)
		case ResHealth:
			cost.Health += int64(a.N)
		case ResBuff:
			cost.Buffs[a.Buff] += int64(a.N)
		}
	}
	if !s.canPay(p, cost) {
		s.report(diag.CastInsufficient, diag.SeverityInfo, caster, "%s: cannot pay", sp.Name)
		s.Execute(ctx, sp.OnCooldown)
		return CastInsufficient
	}
	s.pay(p, cost)

	s.report(diag.CastOK, diag.SeverityInfo, caster, "%s", sp.Name)
	s.Execute(ctx, sp.OnCast)
	return CastOK
}

func (s *Space) canPay(p *Player, c Cost) bool {
	if int64(p.Mana) < c.Mana || int64(p.Health) < c.Health {
		return false
	}
	for b, n := range c.Buffs {
		if int64(p.Buffs.Count(b)) < n {
			return false
		}
	}
	return true
}

func (s *Space) pay(p *Player, c Cost) {
	p.Mana -= int32(c.Mana)
	p.Health -= int32(c.Health)
	bs := make([]buff.Buff, 0, len(c.Buffs))
	for b := range c.Buffs {
		bs = append(bs, b)
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for _, b := range bs {
		p.Buffs.Remove(b, uint32(c.Buffs[b]))
	}
}

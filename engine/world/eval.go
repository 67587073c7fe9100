package world

import (
	"math"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/event"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

// Discrete values saturate at ±MaxValue instead of wrapping.
const MaxValue = math.MaxInt32

// divEpsilon stands in for a zero denominator.
const divEpsilon = 1e-10

func sat(v int64) int32 {
	switch {
	case v > MaxValue:
		return MaxValue
	case v < -MaxValue:
		return -MaxValue
	}
	return int32(v)
}

// pick draws an index in [0, n). A single option is taken without a draw.
func (s *Space) pick(n int) int {
	if n == 1 {
		return 0
	}
	return s.rng.Intn(n)
}

// EvalDiscrete evaluates an integer expression. Unbound slots and empty
// choices evaluate to 0.
func (s *Space) EvalDiscrete(ctx *event.Context, d spell.Discrete) int32 {
	switch d := d.(type) {
	case nil:
		return 0
	case spell.Const:
		return sat(int64(d))
	case spell.Range:
		return sat(s.rng.Between(int64(d.Lo), int64(d.Hi)))
	case spell.WithinPercent:
		return s.rng.Jitter(sat(int64(d.Value)), d.Percent)
	case spell.Div:
		num := s.EvalDiscrete(ctx, d.Num)
		den := s.EvalDiscrete(ctx, d.Den)
		if den == 0 {
			return sat(int64(math.Max(math.Min(float64(num)/divEpsilon, MaxValue), -MaxValue)))
		}
		return sat(int64(num) / int64(den))
	case spell.Sum:
		var total int64
		for _, x := range d {
			total = int64(sat(total + int64(s.EvalDiscrete(ctx, x))))
		}
		return int32(total)
	case spell.Neg:
		return -s.EvalDiscrete(ctx, d.X)
	case spell.Mult:
		total := int64(1)
		for _, x := range d {
			total = int64(sat(total * int64(s.EvalDiscrete(ctx, x))))
		}
		return int32(total)
	case spell.Max:
		return s.reduce(ctx, d, func(a, b int32) bool { return b > a })
	case spell.Min:
		return s.reduce(ctx, d, func(a, b int32) bool { return b < a })
	case spell.CountStacks:
		t := s.EvalEntity(ctx, d.Of)
		if p, ok := s.players[t]; ok {
			return sat(int64(p.Buffs.Count(d.Buff)))
		}
		return 0
	case spell.CountDur:
		t := s.EvalEntity(ctx, d.Of)
		if p, ok := s.players[t]; ok {
			return sat(int64(p.Buffs.Remaining(d.Buff)))
		}
		return 0
	case spell.ChooseDiscrete:
		if len(d) == 0 {
			s.report(diag.EmptyChoice, diag.SeverityWarn, ctx.Owner, "choose over no discretes")
			return 0
		}
		return s.EvalDiscrete(ctx, d[s.pick(len(d))])
	case spell.Cardinality:
		return sat(int64(s.EvalEntitySet(ctx, d.Set).Len()))
	case spell.LoadDiscrete:
		if v, ok := ctx.Discrete(d.Slot); ok {
			return v
		}
		s.report(diag.UnboundSlot, diag.SeverityWarn, ctx.Owner, "D_%d read before definition", d.Slot)
		return 0
	}
	return 0
}

// reduce keeps the term that better prefers over the current pick.
func (s *Space) reduce(ctx *event.Context, xs []spell.Discrete, better func(cur, next int32) bool) int32 {
	if len(xs) == 0 {
		return 0
	}
	best := s.EvalDiscrete(ctx, xs[0])
	for _, x := range xs[1:] {
		if v := s.EvalDiscrete(ctx, x); better(best, v) {
			best = v
		}
	}
	return best
}

// EvalCondition evaluates a boolean expression. A nil condition holds.
// Combinators stop at the first operand that decides the result.
func (s *Space) EvalCondition(ctx *event.Context, c spell.Condition) bool {
	switch c := c.(type) {
	case nil, spell.Top:
		return true
	case spell.Bottom:
		return false
	case spell.Nand:
		for _, x := range c {
			if s.EvalCondition(ctx, x) {
				return false
			}
		}
		return true
	case spell.And:
		for _, x := range c {
			if !s.EvalCondition(ctx, x) {
				return false
			}
		}
		return true
	case spell.Or:
		for _, x := range c {
			if s.EvalCondition(ctx, x) {
				return true
			}
		}
		return false
	case spell.Equals:
		a := s.EvalDiscrete(ctx, c.A)
		return a == s.EvalDiscrete(ctx, c.B)
	case spell.LessThan:
		a := s.EvalDiscrete(ctx, c.A)
		return a < s.EvalDiscrete(ctx, c.B)
	case spell.MoreThan:
		a := s.EvalDiscrete(ctx, c.A)
		return a > s.EvalDiscrete(ctx, c.B)
	case spell.SetCmp:
		return s.EvalEntitySetCmp(ctx, c.Cmp)
	}
	return false
}

// EvalEntitySet evaluates a set expression. The result is never shared
// with the world's own indices.
func (s *Space) EvalEntitySet(ctx *event.Context, es spell.EntitySet) token.Set {
	switch es := es.(type) {
	case nil, spell.Empty:
		return token.Set{}
	case spell.SetNand:
		var union token.Set
		for _, x := range es {
			union = union.Union(s.EvalEntitySet(ctx, x))
		}
		return s.all.Difference(union)
	case spell.SetAnd:
		if len(es) == 0 {
			return s.all.Clone()
		}
		out := s.EvalEntitySet(ctx, es[0])
		for _, x := range es[1:] {
			out = out.Intersect(s.EvalEntitySet(ctx, x))
		}
		return out
	case spell.SetOr:
		var out token.Set
		for _, x := range es {
			out = out.Union(s.EvalEntitySet(ctx, x))
		}
		return out
	case spell.Only:
		t := s.EvalEntity(ctx, es.E)
		if !s.Alive(t) {
			return token.Set{}
		}
		return token.NewSet(t)
	case spell.LoadSet:
		if set, ok := ctx.Set(es.Slot); ok {
			return set.Clone()
		}
		s.report(diag.UnboundSlot, diag.SeverityWarn, ctx.Owner, "Eset_%d read before definition", es.Slot)
		return token.Set{}
	case spell.WithinRangeOf:
		t := s.EvalEntity(ctx, es.E)
		radius := float64(s.EvalDiscrete(ctx, es.Radius))
		center, ok := s.Position(t)
		if !ok {
			s.report(diag.NoPosition, diag.SeverityWarn, ctx.Owner, "range query around %s", t)
			return token.Set{}
		}
		var out token.Set
		for _, other := range s.all.Slice() {
			if p, _ := s.Position(other); geom.Dist(center, p) <= radius {
				out.Insert(other)
			}
		}
		return out
	case spell.HasMinResource:
		want := s.EvalResource(ctx, es.Resource)
		var out token.Set
		for _, t := range s.all.Slice() {
			if s.Held(t, want.Kind, want.Buff) >= int64(want.N) {
				out.Insert(t)
			}
		}
		return out
	case spell.EnemiesOf:
		t := s.EvalEntity(ctx, es.E)
		out := s.humans.Clone()
		out.Remove(t)
		return out
	case spell.AllBut:
		t := s.EvalEntity(ctx, es.E)
		out := s.all.Clone()
		out.Remove(t)
		return out
	case spell.IsHuman:
		return s.humans.Clone()
	case spell.IsProjectile:
		return s.shots.Clone()
	case spell.Universe:
		return s.all.Clone()
	}
	return token.Set{}
}

// EvalEntitySetCmp evaluates a comparison between sets.
func (s *Space) EvalEntitySetCmp(ctx *event.Context, c spell.EntitySetCmp) bool {
	switch c := c.(type) {
	case nil:
		return true
	case spell.CmpNand:
		for _, x := range c {
			if s.EvalEntitySetCmp(ctx, x) {
				return false
			}
		}
		return true
	case spell.CmpAnd:
		for _, x := range c {
			if !s.EvalEntitySetCmp(ctx, x) {
				return false
			}
		}
		return true
	case spell.CmpOr:
		for _, x := range c {
			if s.EvalEntitySetCmp(ctx, x) {
				return true
			}
		}
		return false
	case spell.Subset:
		a := s.EvalEntitySet(ctx, c.A)
		return a.SubsetOf(s.EvalEntitySet(ctx, c.B))
	case spell.Superset:
		a := s.EvalEntitySet(ctx, c.A)
		return s.EvalEntitySet(ctx, c.B).SubsetOf(a)
	case spell.SetEqual:
		a := s.EvalEntitySet(ctx, c.A)
		return a.Equal(s.EvalEntitySet(ctx, c.B))
	case spell.Contains:
		set := s.EvalEntitySet(ctx, c.Set)
		return set.Contains(s.EvalEntity(ctx, c.E))
	}
	return false
}

// EvalEntity resolves an entity expression to a token, or Null when
// nothing qualifies.
func (s *Space) EvalEntity(ctx *event.Context, e spell.Entity) token.Token {
	switch e := e.(type) {
	case nil:
		return token.Null
	case spell.LoadEntity:
		if t, ok := ctx.Entity(e.Slot); ok {
			return t
		}
		s.report(diag.UnboundSlot, diag.SeverityWarn, ctx.Owner, "E_%d read before definition", e.Slot)
		return token.Null
	case spell.FirstOf:
		set := s.EvalEntitySet(ctx, e.Set)
		if set.Empty() {
			s.report(diag.EmptyChoice, diag.SeverityDebug, ctx.Owner, "first of empty set")
		}
		return set.First()
	case spell.LastOf:
		set := s.EvalEntitySet(ctx, e.Set)
		if set.Empty() {
			s.report(diag.EmptyChoice, diag.SeverityDebug, ctx.Owner, "last of empty set")
		}
		return set.Last()
	case spell.ChooseEntity:
		set := s.EvalEntitySet(ctx, e.Set)
		if set.Empty() {
			s.report(diag.EmptyChoice, diag.SeverityDebug, ctx.Owner, "choose from empty set")
			return token.Null
		}
		return set.At(s.pick(set.Len()))
	case spell.ClosestFrom:
		set := s.EvalEntitySet(ctx, e.Set)
		to := s.EvalLocation(ctx, e.To)
		best, bestDist := token.Null, math.Inf(1)
		for _, t := range set.Slice() {
			p, ok := s.Position(t)
			if !ok {
				continue
			}
			if d := geom.Dist(p, to); d < bestDist {
				best, bestDist = t, d
			}
		}
		if best == token.Null {
			s.report(diag.EmptyChoice, diag.SeverityDebug, ctx.Owner, "closest of empty set")
		}
		return best
	}
	return token.Null
}

// EvalLocation resolves a location expression. Unresolvable locations are
// the origin.
func (s *Space) EvalLocation(ctx *event.Context, l spell.Location) geom.Point {
	switch l := l.(type) {
	case nil:
		return geom.Origin
	case spell.AtEntity:
		t := s.EvalEntity(ctx, l.E)
		p, ok := s.Position(t)
		if !ok {
			s.report(diag.NoPosition, diag.SeverityWarn, ctx.Owner, "position of %s", t)
		}
		return p
	case spell.Midpoint:
		pts := make([]geom.Point, len(l))
		for i, x := range l {
			pts[i] = s.EvalLocation(ctx, x)
		}
		return geom.Midpoint(pts)
	case spell.ChooseLocation:
		if len(l) == 0 {
			s.report(diag.EmptyChoice, diag.SeverityWarn, ctx.Owner, "choose over no locations")
			return geom.Origin
		}
		return s.EvalLocation(ctx, l[s.pick(len(l))])
	case spell.LoadLocation:
		if p, ok := ctx.Location(l.Slot); ok {
			return p
		}
		s.report(diag.UnboundSlot, diag.SeverityWarn, ctx.Owner, "L_%d read before definition", l.Slot)
		return geom.Origin
	}
	return geom.Origin
}

// EvalDirection resolves a heading in radians. from is where a Toward
// without its own source starts.
func (s *Space) EvalDirection(ctx *event.Context, d spell.Direction, from geom.Point) float64 {
	switch d := d.(type) {
	case nil:
		return 0
	case spell.Toward:
		src := from
		if d.From != nil {
			src = s.EvalLocation(ctx, d.From)
		}
		return geom.HeadingTo(src, s.EvalLocation(ctx, d.To))
	case spell.ConstRad:
		return float64(d)
	case spell.BetweenRad:
		return s.rng.Uniform(d.Lo, d.Hi)
	case spell.ChooseDirection:
		if len(d) == 0 {
			s.report(diag.EmptyChoice, diag.SeverityWarn, ctx.Owner, "choose over no directions")
			return 0
		}
		return s.EvalDirection(ctx, d[s.pick(len(d))], from)
	case spell.WithinRadOf:
		base := s.EvalDirection(ctx, d.Base, from)
		spread := math.Abs(d.Spread)
		return base + s.rng.Uniform(-spread, spread)
	}
	return 0
}

// ResourceKind says what an Amount counts.
type ResourceKind uint8

const (
	ResMana ResourceKind = iota
	ResHealth
	ResBuff
)

// Amount is an evaluated Resource.
type Amount struct {
	Kind ResourceKind
	Buff buff.Buff // ResBuff only
	N    int32
}

// EvalResource evaluates the amount of a resource expression.
func (s *Space) EvalResource(ctx *event.Context, r spell.Resource) Amount {
	switch r := r.(type) {
	case spell.Mana:
		return Amount{Kind: ResMana, N: s.EvalDiscrete(ctx, r.Amount)}
	case spell.Health:
		return Amount{Kind: ResHealth, N: s.EvalDiscrete(ctx, r.Amount)}
	case spell.BuffStacks:
		return Amount{Kind: ResBuff, Buff: r.Buff, N: s.EvalDiscrete(ctx, r.Amount)}
	}
	return Amount{Kind: ResMana}
}

// Held returns how much of a resource t currently holds. Projectiles and
// dead tokens hold nothing.
func (s *Space) Held(t token.Token, kind ResourceKind, b buff.Buff) int64 {
	p, ok := s.players[t]
	if !ok {
		return 0
	}
	switch kind {
	case ResMana:
		return int64(p.Mana)
	case ResHealth:
		return int64(p.Health)
	case ResBuff:
		return int64(p.Buffs.Count(b))
	}
	return 0
}

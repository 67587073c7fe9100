package generate

import (
	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/spell"
)

func (g *Generator) constant() int32 {
	return int32(g.r.Between(-49, 49))
}

func (g *Generator) angle() float64 {
	return g.r.Uniform(-1.5, 1.5)
}

func (g *Generator) condition(depth int, s Slots) spell.Condition {
	g.node()
	if g.stop(depth) {
		if g.r.Bool() {
			return spell.Top{}
		}
		return spell.Bottom{}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{10, 15, 20, 10, 5, 5, 5}) {
	case 0:
		return spell.Nand(g.conditions(d, s))
	case 1:
		return spell.And(g.conditions(d, s))
	case 2:
		return spell.Or(g.conditions(d, s))
	case 3:
		return spell.Equals{A: g.discrete(d, s), B: g.discrete(d, s)}
	case 4:
		return spell.LessThan{A: g.discrete(d, s), B: g.discrete(d, s)}
	case 5:
		return spell.MoreThan{A: g.discrete(d, s), B: g.discrete(d, s)}
	default:
		return spell.SetCmp{Cmp: g.setCmp(d, s)}
	}
}

func (g *Generator) conditions(depth int, s Slots) []spell.Condition {
	var out []spell.Condition
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.condition(depth, s))
	}
	return out
}

func (g *Generator) discrete(depth int, s Slots) spell.Discrete {
	g.node()
	if g.stop(depth) {
		switch g.r.WeightedSelect([]int{20, 7, 8}) {
		case 0:
			if s.Disc > 0 {
				return spell.LoadDiscrete{Slot: spell.DSlot(g.r.Intn(int(s.Disc)))}
			}
			return spell.Const(g.constant())
		case 1:
			lo, hi := g.constant(), g.constant()
			if lo > hi {
				lo, hi = hi, lo
			}
			return spell.Range{Lo: lo, Hi: hi}
		default:
			return spell.WithinPercent{Value: g.constant(), Percent: g.r.Float64()}
		}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{5, 15, 8, 4, 6, 6, 3, 2, 3, 2}) {
	case 0:
		return spell.Div{Num: g.discrete(d, s), Den: g.discrete(d, s)}
	case 1:
		return spell.Sum(g.discretes(d, s))
	case 2:
		return spell.Neg{X: g.discrete(d, s)}
	case 3:
		return spell.Mult(g.discretes(d, s))
	case 4:
		return spell.Max(g.discretes(d, s))
	case 5:
		return spell.Min(g.discretes(d, s))
	case 6:
		return spell.CountStacks{Buff: g.buff(), Of: g.entity(d, s)}
	case 7:
		return spell.CountDur{Buff: g.buff(), Of: g.entity(d, s)}
	case 8:
		return spell.ChooseDiscrete(g.discretes(d, s))
	default:
		return spell.Cardinality{Set: g.entitySet(d, s)}
	}
}

func (g *Generator) discretes(depth int, s Slots) []spell.Discrete {
	var out []spell.Discrete
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.discrete(depth, s))
	}
	return out
}

func (g *Generator) entity(depth int, s Slots) spell.Entity {
	g.node()
	if g.stop(depth) {
		if s.Ent > 0 {
			return spell.LoadEntity{Slot: spell.ESlot(g.r.Intn(int(s.Ent)))}
		}
		g.node()
		return spell.FirstOf{Set: spell.IsHuman{}}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{10, 5, 10, 4}) {
	case 0:
		return spell.FirstOf{Set: g.entitySet(d, s)}
	case 1:
		return spell.ChooseEntity{Set: g.entitySet(d, s)}
	case 2:
		return spell.ClosestFrom{Set: g.entitySet(d, s), To: g.location(d, s)}
	default:
		return spell.LastOf{Set: g.entitySet(d, s)}
	}
}

func (g *Generator) location(depth int, s Slots) spell.Location {
	g.node()
	if g.stop(depth) {
		if s.Loc > 0 {
			return spell.LoadLocation{Slot: spell.LSlot(g.r.Intn(int(s.Loc)))}
		}
		return spell.AtEntity{E: g.entity(0, s)}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{15, 2, 3}) {
	case 0:
		return spell.AtEntity{E: g.entity(d, s)}
	case 1:
		return spell.Midpoint(g.locations(d, s))
	default:
		return spell.ChooseLocation(g.locations(d, s))
	}
}

// locations always returns at least one element.
func (g *Generator) locations(depth int, s Slots) []spell.Location {
	out := []spell.Location{g.location(depth, s)}
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.location(depth, s))
	}
	return out
}

func (g *Generator) entitySet(depth int, s Slots) spell.EntitySet {
	g.node()
	if g.stop(depth) {
		if s.Set > 0 {
			switch g.r.WeightedSelect([]int{15, 5, 5}) {
			case 0:
				return spell.LoadSet{Slot: spell.ESetSlot(g.r.Intn(int(s.Set)))}
			case 1:
				return spell.Universe{}
			default:
				return spell.Empty{}
			}
		}
		switch g.r.WeightedSelect([]int{10, 5, 5, 5}) {
		case 0:
			return spell.IsHuman{}
		case 1:
			return spell.IsProjectile{}
		case 2:
			return spell.Universe{}
		default:
			return spell.Empty{}
		}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{2, 8, 5, 3, 5, 4, 5, 3}) {
	case 0:
		return spell.SetNand(g.entitySets(d, s))
	case 1:
		return spell.SetAnd(g.entitySets(d, s))
	case 2:
		return spell.SetOr(g.entitySets(d, s))
	case 3:
		return spell.Only{E: g.entity(d, s)}
	case 4:
		return spell.WithinRangeOf{E: g.entity(d, s), Radius: g.banded(d, s, Medium)}
	case 5:
		return spell.HasMinResource{Resource: g.resource(d, s, Small)}
	case 6:
		return spell.EnemiesOf{E: g.entity(d, s)}
	default:
		return spell.AllBut{E: g.entity(d, s)}
	}
}

// entitySets always returns at least one element.
func (g *Generator) entitySets(depth int, s Slots) []spell.EntitySet {
	out := []spell.EntitySet{g.entitySet(depth, s)}
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.entitySet(depth, s))
	}
	return out
}

func (g *Generator) setCmp(depth int, s Slots) spell.EntitySetCmp {
	g.node()
	d := depth - 1
	if g.stop(depth) {
		switch g.r.WeightedSelect([]int{10, 3, 3, 4}) {
		case 0:
			return spell.Contains{Set: g.entitySet(d, s), E: g.entity(d, s)}
		case 1:
			return spell.Subset{A: g.entitySet(d, s), B: g.entitySet(d, s)}
		case 2:
			return spell.Superset{A: g.entitySet(d, s), B: g.entitySet(d, s)}
		default:
			return spell.SetEqual{A: g.entitySet(d, s), B: g.entitySet(d, s)}
		}
	}
	var cmps []spell.EntitySetCmp
	cmps = append(cmps, g.setCmp(d, s))
	for g.more(len(cmps)) {
		cmps = append(cmps, g.setCmp(d, s))
	}
	switch g.r.WeightedSelect([]int{2, 8, 7}) {
	case 0:
		return spell.CmpNand(cmps)
	case 1:
		return spell.CmpAnd(cmps)
	default:
		return spell.CmpOr(cmps)
	}
}

func (g *Generator) direction(depth int, s Slots) spell.Direction {
	g.node()
	if g.stop(depth) {
		if g.r.Bool() {
			return spell.ConstRad(g.angle())
		}
		lo, hi := g.angle(), g.angle()
		if lo > hi {
			lo, hi = hi, lo
		}
		return spell.BetweenRad{Lo: lo, Hi: hi}
	}
	d := depth - 1
	switch g.r.WeightedSelect([]int{2, 2, 3}) {
	case 0:
		out := []spell.Direction{g.direction(d, s)}
		for g.more(len(out)) {
			out = append(out, g.direction(d, s))
		}
		return spell.ChooseDirection(out)
	case 1:
		return spell.WithinRadOf{Base: g.direction(d, s), Spread: g.angle()}
	default:
		return spell.Toward{To: g.location(d, s)}
	}
}

var buffWeights = []struct {
	b buff.Buff
	w int
}{
	{buff.Swarm, 5},
	{buff.Burned, 10},
	{buff.Cold, 10},
	{buff.Chilled, 10},
	{buff.Toxified, 5},
	{buff.Envenomed, 3},
	{buff.Electrified, 7},
}

func (g *Generator) buff() buff.Buff {
	ws := make([]int, len(buffWeights))
	for i, bw := range buffWeights {
		ws[i] = bw.w
	}
	return buffWeights[g.r.WeightedSelect(ws)].b
}

// resource draws its amount from band for mana and health, and from Small
// for buff stacks.
func (g *Generator) resource(depth int, s Slots, band Band) spell.Resource {
	g.node()
	switch g.r.WeightedSelect([]int{10, 7, 7}) {
	case 0:
		return spell.Mana{Amount: g.banded(depth, s, band)}
	case 1:
		return spell.Health{Amount: g.banded(depth, s, band)}
	default:
		return spell.BuffStacks{Buff: g.buff(), Amount: g.banded(depth, s, Small)}
	}
}

// resources always returns at least one element.
func (g *Generator) resources(depth int, s Slots, band Band) []spell.Resource {
	out := []spell.Resource{g.resource(depth, s, band)}
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.resource(depth, s, band))
	}
	return out
}

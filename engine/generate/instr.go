package generate

import "github.com/nathoo/spellcore/spell"

// instructions generates a list run in sequence. Definitions bind for the
// siblings after them; s itself is never changed.
func (g *Generator) instructions(depth int, s Slots) []spell.Instruction {
	var out []spell.Instruction
	for depth > 0 && g.more(len(out)) {
		out = append(out, g.instruction(depth, &s))
	}
	return out
}

// instruction generates one instruction. A Define widens s.
func (g *Generator) instruction(depth int, s *Slots) spell.Instruction {
	g.node()
	d := depth - 1
	if g.stop(depth) || g.stop(depth) {
		switch g.r.WeightedSelect([]int{10, 3, 5, 4, 8, 4, 6}) {
		case 0:
			return spell.Define{Def: g.definition(d, s)}
		case 1:
			return spell.DestroyWithoutEvent{E: g.entity(d, *s)}
		case 2:
			return spell.Destroy{E: g.entity(d, *s)}
		case 3:
			return spell.MoveEntity{E: g.entity(d, *s), To: g.location(d, *s)}
		case 4:
			return spell.AddResource{E: g.entity(d, *s), Resource: g.resource(d, *s, Medium)}
		case 5:
			return spell.AddVelocity{E: g.entity(d, *s), Dir: g.direction(d, *s), Speed: g.banded(d, *s, Medium)}
		default:
			return spell.SpawnProjectileAt{Blueprint: g.Blueprint(d), At: g.location(d, *s)}
		}
	}
	switch g.r.WeightedSelect([]int{4, 2, 5}) {
	case 0:
		return spell.ITE{
			If:   g.condition(d, *s),
			Then: g.instructions(d, *s),
			Else: g.instructions(d, *s),
		}
	case 1:
		inner := *s
		def := g.definition(d, &inner)
		return spell.CallWith{Def: def, Body: g.instructions(d, inner)}
	default:
		inner := *s
		slot := bind(&inner.Ent)
		return spell.ForEachAs{
			Slot: spell.ESlot(slot),
			Set:  g.entitySet(d, *s),
			Body: g.instructions(d, inner),
		}
	}
}

// definition generates a binding whose expression sees only the slots
// already in s, then widens s by the new slot.
func (g *Generator) definition(depth int, s *Slots) spell.Definition {
	g.node()
	switch g.r.WeightedSelect([]int{3, 3, 2, 2}) {
	case 0:
		set := g.entitySet(depth, *s)
		return spell.DefineSet{Slot: spell.ESetSlot(bind(&s.Set)), Set: set}
	case 1:
		e := g.entity(depth, *s)
		return spell.DefineEntity{Slot: spell.ESlot(bind(&s.Ent)), E: e}
	case 2:
		x := g.discrete(depth, *s)
		return spell.DefineDiscrete{Slot: spell.DSlot(bind(&s.Disc)), X: x}
	default:
		at := g.location(depth, *s)
		return spell.DefineLocation{Slot: spell.LSlot(bind(&s.Loc)), At: at}
	}
}

// bind returns the next free slot of a kind and marks it taken. Past
// maxSlot the last slot is rebound.
func bind(n *uint8) uint8 {
	if *n > maxSlot {
		return *n - 1
	}
	*n++
	return *n - 1
}

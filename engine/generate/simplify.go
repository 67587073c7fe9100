package generate

import (
	"reflect"

	"github.com/nathoo/spellcore/spell"
)

// Simplify returns a copy of sp with redundant structure removed:
// single-operand Sum, Mult, Max, Min, And, Or, Midpoint and the choose
// forms collapse to their operand; double negation cancels; Nothing is
// dropped from instruction lists; and moving an entity onto its own
// position becomes Nothing. Evaluation results and random draws are
// unchanged.
func Simplify(sp *spell.Spell) *spell.Spell {
	if sp == nil {
		return nil
	}
	s := simplifier{seen: make(map[*spell.ProjectileBlueprint]*spell.ProjectileBlueprint)}
	out := &spell.Spell{
		Name:       sp.Name,
		OnCast:     s.instructions(sp.OnCast),
		OnCooldown: s.instructions(sp.OnCooldown),
	}
	if sp.Requires != nil {
		out.Requires = s.condition(sp.Requires)
	}
	for _, r := range sp.Consumes {
		out.Consumes = append(out.Consumes, s.resource(r))
	}
	return out
}

type simplifier struct {
	// Shared blueprints stay shared.
	seen map[*spell.ProjectileBlueprint]*spell.ProjectileBlueprint
}

func (s simplifier) blueprint(bp *spell.ProjectileBlueprint) *spell.ProjectileBlueprint {
	if bp == nil {
		return nil
	}
	if out, ok := s.seen[bp]; ok {
		return out
	}
	out := &spell.ProjectileBlueprint{}
	s.seen[bp] = out
	out.OnCreate = s.instructions(bp.OnCreate)
	out.OnCollision = s.instructions(bp.OnCollision)
	out.OnDestroy = s.instructions(bp.OnDestroy)
	if bp.CollidesWith != nil {
		out.CollidesWith = s.entitySet(bp.CollidesWith)
	}
	if bp.Lifetime != nil {
		out.Lifetime = s.discrete(bp.Lifetime)
	}
	return out
}

func (s simplifier) instructions(in []spell.Instruction) []spell.Instruction {
	var out []spell.Instruction
	for _, x := range in {
		x = s.instruction(x)
		if _, ok := x.(spell.Nothing); ok {
			continue
		}
		out = append(out, x)
	}
	return out
}

func (s simplifier) instruction(in spell.Instruction) spell.Instruction {
	switch in := in.(type) {
	case spell.Define:
		return spell.Define{Def: s.definition(in.Def)}
	case spell.ITE:
		return spell.ITE{If: s.condition(in.If), Then: s.instructions(in.Then), Else: s.instructions(in.Else)}
	case spell.CallWith:
		return spell.CallWith{Def: s.definition(in.Def), Body: s.instructions(in.Body)}
	case spell.ForEachAs:
		return spell.ForEachAs{Slot: in.Slot, Set: s.entitySet(in.Set), Body: s.instructions(in.Body)}
	case spell.Destroy:
		return spell.Destroy{E: s.entity(in.E)}
	case spell.DestroyWithoutEvent:
		return spell.DestroyWithoutEvent{E: s.entity(in.E)}
	case spell.MoveEntity:
		e, to := s.entity(in.E), s.location(in.To)
		if at, ok := to.(spell.AtEntity); ok && fixed(e) && reflect.DeepEqual(at.E, e) {
			return spell.Nothing{}
		}
		return spell.MoveEntity{E: e, To: to}
	case spell.AddResource:
		return spell.AddResource{E: s.entity(in.E), Resource: s.resource(in.Resource)}
	case spell.AddVelocity:
		return spell.AddVelocity{E: s.entity(in.E), Dir: s.direction(in.Dir), Speed: s.discrete(in.Speed)}
	case spell.SpawnProjectileAt:
		return spell.SpawnProjectileAt{Blueprint: s.blueprint(in.Blueprint), At: s.location(in.At)}
	}
	return in
}

func (s simplifier) definition(in spell.Definition) spell.Definition {
	switch in := in.(type) {
	case spell.DefineSet:
		return spell.DefineSet{Slot: in.Slot, Set: s.entitySet(in.Set)}
	case spell.DefineEntity:
		return spell.DefineEntity{Slot: in.Slot, E: s.entity(in.E)}
	case spell.DefineLocation:
		return spell.DefineLocation{Slot: in.Slot, At: s.location(in.At)}
	case spell.DefineDiscrete:
		return spell.DefineDiscrete{Slot: in.Slot, X: s.discrete(in.X)}
	}
	return in
}

func (s simplifier) discretes(in []spell.Discrete) []spell.Discrete {
	if in == nil {
		return nil
	}
	out := make([]spell.Discrete, len(in))
	for i, x := range in {
		out[i] = s.discrete(x)
	}
	return out
}

func (s simplifier) discrete(in spell.Discrete) spell.Discrete {
	switch in := in.(type) {
	case spell.Div:
		return spell.Div{Num: s.discrete(in.Num), Den: s.discrete(in.Den)}
	case spell.Sum:
		if len(in) == 1 {
			return s.discrete(in[0])
		}
		return spell.Sum(s.discretes(in))
	case spell.Neg:
		x := s.discrete(in.X)
		if inner, ok := x.(spell.Neg); ok {
			return inner.X
		}
		return spell.Neg{X: x}
	case spell.Mult:
		if len(in) == 1 {
			return s.discrete(in[0])
		}
		return spell.Mult(s.discretes(in))
	case spell.Max:
		if len(in) == 1 {
			return s.discrete(in[0])
		}
		return spell.Max(s.discretes(in))
	case spell.Min:
		if len(in) == 1 {
			return s.discrete(in[0])
		}
		return spell.Min(s.discretes(in))
	case spell.ChooseDiscrete:
		if len(in) == 1 {
			return s.discrete(in[0])
		}
		return spell.ChooseDiscrete(s.discretes(in))
	case spell.CountStacks:
		return spell.CountStacks{Buff: in.Buff, Of: s.entity(in.Of)}
	case spell.CountDur:
		return spell.CountDur{Buff: in.Buff, Of: s.entity(in.Of)}
	case spell.Cardinality:
		return spell.Cardinality{Set: s.entitySet(in.Set)}
	}
	return in
}

func (s simplifier) conditions(in []spell.Condition) []spell.Condition {
	if in == nil {
		return nil
	}
	out := make([]spell.Condition, len(in))
	for i, x := range in {
		out[i] = s.condition(x)
	}
	return out
}

func (s simplifier) condition(in spell.Condition) spell.Condition {
	switch in := in.(type) {
	case spell.Nand:
		return spell.Nand(s.conditions(in))
	case spell.And:
		if len(in) == 1 {
			return s.condition(in[0])
		}
		return spell.And(s.conditions(in))
	case spell.Or:
		if len(in) == 1 {
			return s.condition(in[0])
		}
		return spell.Or(s.conditions(in))
	case spell.Equals:
		return spell.Equals{A: s.discrete(in.A), B: s.discrete(in.B)}
	case spell.LessThan:
		return spell.LessThan{A: s.discrete(in.A), B: s.discrete(in.B)}
	case spell.MoreThan:
		return spell.MoreThan{A: s.discrete(in.A), B: s.discrete(in.B)}
	case spell.SetCmp:
		return spell.SetCmp{Cmp: s.setCmp(in.Cmp)}
	}
	return in
}

func (s simplifier) entitySets(in []spell.EntitySet) []spell.EntitySet {
	if in == nil {
		return nil
	}
	out := make([]spell.EntitySet, len(in))
	for i, x := range in {
		out[i] = s.entitySet(x)
	}
	return out
}

func (s simplifier) entitySet(in spell.EntitySet) spell.EntitySet {
	switch in := in.(type) {
	case spell.SetNand:
		return spell.SetNand(s.entitySets(in))
	case spell.SetAnd:
		if len(in) == 1 {
			return s.entitySet(in[0])
		}
		return spell.SetAnd(s.entitySets(in))
	case spell.SetOr:
		if len(in) == 1 {
			return s.entitySet(in[0])
		}
		return spell.SetOr(s.entitySets(in))
	case spell.Only:
		return spell.Only{E: s.entity(in.E)}
	case spell.WithinRangeOf:
		return spell.WithinRangeOf{E: s.entity(in.E), Radius: s.discrete(in.Radius)}
	case spell.HasMinResource:
		return spell.HasMinResource{Resource: s.resource(in.Resource)}
	case spell.EnemiesOf:
		return spell.EnemiesOf{E: s.entity(in.E)}
	case spell.AllBut:
		return spell.AllBut{E: s.entity(in.E)}
	}
	return in
}

func (s simplifier) setCmps(in []spell.EntitySetCmp) []spell.EntitySetCmp {
	if in == nil {
		return nil
	}
	out := make([]spell.EntitySetCmp, len(in))
	for i, x := range in {
		out[i] = s.setCmp(x)
	}
	return out
}

func (s simplifier) setCmp(in spell.EntitySetCmp) spell.EntitySetCmp {
	switch in := in.(type) {
	case spell.CmpNand:
		return spell.CmpNand(s.setCmps(in))
	case spell.CmpAnd:
		if len(in) == 1 {
			return s.setCmp(in[0])
		}
		return spell.CmpAnd(s.setCmps(in))
	case spell.CmpOr:
		if len(in) == 1 {
			return s.setCmp(in[0])
		}
		return spell.CmpOr(s.setCmps(in))
	case spell.Subset:
		return spell.Subset{A: s.entitySet(in.A), B: s.entitySet(in.B)}
	case spell.Superset:
		return spell.Superset{A: s.entitySet(in.A), B: s.entitySet(in.B)}
	case spell.SetEqual:
		return spell.SetEqual{A: s.entitySet(in.A), B: s.entitySet(in.B)}
	case spell.Contains:
		return spell.Contains{Set: s.entitySet(in.Set), E: s.entity(in.E)}
	}
	return in
}

func (s simplifier) entity(in spell.Entity) spell.Entity {
	switch in := in.(type) {
	case spell.FirstOf:
		return spell.FirstOf{Set: s.entitySet(in.Set)}
	case spell.ChooseEntity:
		return spell.ChooseEntity{Set: s.entitySet(in.Set)}
	case spell.ClosestFrom:
		return spell.ClosestFrom{Set: s.entitySet(in.Set), To: s.location(in.To)}
	case spell.LastOf:
		return spell.LastOf{Set: s.entitySet(in.Set)}
	}
	return in
}

func (s simplifier) locations(in []spell.Location) []spell.Location {
	if in == nil {
		return nil
	}
	out := make([]spell.Location, len(in))
	for i, x := range in {
		out[i] = s.location(x)
	}
	return out
}

func (s simplifier) location(in spell.Location) spell.Location {
	switch in := in.(type) {
	case spell.AtEntity:
		return spell.AtEntity{E: s.entity(in.E)}
	case spell.Midpoint:
		if len(in) == 1 {
			return s.location(in[0])
		}
		return spell.Midpoint(s.locations(in))
	case spell.ChooseLocation:
		if len(in) == 1 {
			return s.location(in[0])
		}
		return spell.ChooseLocation(s.locations(in))
	}
	return in
}

func (s simplifier) direction(in spell.Direction) spell.Direction {
	switch in := in.(type) {
	case spell.Toward:
		out := spell.Toward{To: s.location(in.To)}
		if in.From != nil {
			out.From = s.location(in.From)
		}
		return out
	case spell.ChooseDirection:
		if len(in) == 1 {
			return s.direction(in[0])
		}
		out := make(spell.ChooseDirection, len(in))
		for i, x := range in {
			out[i] = s.direction(x)
		}
		return out
	case spell.WithinRadOf:
		return spell.WithinRadOf{Base: s.direction(in.Base), Spread: in.Spread}
	}
	return in
}

func (s simplifier) resource(in spell.Resource) spell.Resource {
	switch in := in.(type) {
	case spell.Mana:
		return spell.Mana{Amount: s.discrete(in.Amount)}
	case spell.Health:
		return spell.Health{Amount: s.discrete(in.Amount)}
	case spell.BuffStacks:
		return spell.BuffStacks{Buff: in.Buff, Amount: s.discrete(in.Amount)}
	}
	return in
}

// fixed reports whether e names the same entity every time it is
// evaluated within one execution step.
func fixed(e spell.Entity) bool {
	_, ok := e.(spell.LoadEntity)
	return ok
}

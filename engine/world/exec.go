package world

import (
	"errors"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/event"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

// Execute runs is in order against ctx.
func (s *Space) Execute(ctx *event.Context, is []spell.Instruction) {
	s.begin()
	defer s.end()
	for _, i := range is {
		s.ExecuteInstruction(ctx, i)
	}
}

// ExecuteInstruction runs one instruction. Nesting beyond MaxExecDepth is
// skipped and reported, and so is everything after the first MaxSteps
// instructions of one top-level cast, spawn or tick.
func (s *Space) ExecuteInstruction(ctx *event.Context, in spell.Instruction) {
	s.begin()
	defer s.end()
	if s.steps >= s.cfg.MaxSteps {
		if !s.spent {
			s.spent = true
			s.report(diag.TooDeep, diag.SeverityError, ctx.Owner, "more than %d instructions in one evaluation", s.cfg.MaxSteps)
		}
		return
	}
	s.steps++
	if s.depth >= s.cfg.MaxExecDepth {
		s.report(diag.TooDeep, diag.SeverityError, ctx.Owner, "execution nested deeper than %d", s.cfg.MaxExecDepth)
		return
	}
	s.depth++
	defer func() { s.depth-- }()

	switch in := in.(type) {
	case nil, spell.Nothing:
	case spell.Define:
		s.define(ctx, in.Def)
	case spell.ITE:
		if s.EvalCondition(ctx, in.If) {
			s.Execute(ctx, in.Then)
		} else {
			s.Execute(ctx, in.Else)
		}
	case spell.CallWith:
		snap := ctx.Snapshot()
		s.define(ctx, in.Def)
		s.Execute(ctx, in.Body)
		ctx.Restore(snap)
	case spell.ForEachAs:
		members := s.EvalEntitySet(ctx, in.Set).Slice()
		snap := ctx.Snapshot()
		for _, m := range members {
			ctx.Restore(snap)
			ctx.DefineEntity(in.Slot, m)
			s.Execute(ctx, in.Body)
		}
		ctx.Restore(snap)
	case spell.Destroy:
		s.destroy(ctx, s.EvalEntity(ctx, in.E), true)
	case spell.DestroyWithoutEvent:
		s.destroy(ctx, s.EvalEntity(ctx, in.E), false)
	case spell.MoveEntity:
		t := s.EvalEntity(ctx, in.E)
		to := s.EvalLocation(ctx, in.To)
		s.moveTo(ctx, t, to)
	case spell.AddResource:
		t := s.EvalEntity(ctx, in.E)
		s.grant(ctx, t, s.EvalResource(ctx, in.Resource))
	case spell.AddVelocity:
		t := s.EvalEntity(ctx, in.E)
		from, ok := s.Position(t)
		heading := s.EvalDirection(ctx, in.Dir, from)
		speed := float64(s.EvalDiscrete(ctx, in.Speed))
		if !ok {
			s.report(diag.MissingEntity, diag.SeverityWarn, ctx.Owner, "push of %s", t)
			return
		}
		s.push(t, geom.Polar(heading, speed))
	case spell.SpawnProjectileAt:
		at := s.EvalLocation(ctx, in.At)
		s.Spawn(ctx, in.Blueprint, at)
	}
}

func (s *Space) define(ctx *event.Context, d spell.Definition) {
	switch d := d.(type) {
	case spell.DefineSet:
		ctx.DefineSet(d.Slot, s.EvalEntitySet(ctx, d.Set))
	case spell.DefineEntity:
		ctx.DefineEntity(d.Slot, s.EvalEntity(ctx, d.E))
	case spell.DefineLocation:
		ctx.DefineLocation(d.Slot, s.EvalLocation(ctx, d.At))
	case spell.DefineDiscrete:
		ctx.DefineDiscrete(d.Slot, s.EvalDiscrete(ctx, d.X))
	}
}

func (s *Space) moveTo(ctx *event.Context, t token.Token, to geom.Point) {
	if p, ok := s.players[t]; ok {
		p.Position = to
		return
	}
	if pr, ok := s.projectiles[t]; ok {
		pr.Position = to
		return
	}
	s.report(diag.MissingEntity, diag.SeverityWarn, ctx.Owner, "move of %s", t)
}

func (s *Space) push(t token.Token, v geom.Vector) {
	if p, ok := s.players[t]; ok {
		p.Velocity = p.Velocity.Plus(v)
		return
	}
	if pr, ok := s.projectiles[t]; ok {
		pr.Velocity = pr.Velocity.Plus(v)
	}
}

// grant adds a to t. Mana and health clamp to [0, max]; a negative buff
// amount removes stacks.
func (s *Space) grant(ctx *event.Context, t token.Token, a Amount) {
	p, ok := s.players[t]
	if !ok {
		if !s.Alive(t) {
			s.report(diag.MissingEntity, diag.SeverityWarn, ctx.Owner, "resource grant to %s", t)
		}
		return
	}
	switch a.Kind {
	case ResMana:
		p.Mana = clampTo(int64(p.Mana)+int64(a.N), p.MaxMana)
	case ResHealth:
		was := p.Health
		p.Health = clampTo(int64(p.Health)+int64(a.N), p.MaxHealth)
		if was > 0 && p.Health == 0 {
			s.report(diag.PlayerDowned, diag.SeverityInfo, t, "%s is down", p.Name)
		}
	case ResBuff:
		switch {
		case a.N > 0:
			err := p.Buffs.Apply(a.Buff, uint32(a.N), s.cfg.BuffDuration)
			if errors.Is(err, buff.ErrInvalidStack) {
				s.report(diag.InvalidStack, diag.SeverityWarn, ctx.Owner, "%v", err)
			}
		case a.N < 0:
			p.Buffs.Remove(a.Buff, uint32(-int64(a.N)))
		}
	}
}

func clampTo(v int64, hi int32) int32 {
	if v < 0 {
		return 0
	}
	if v > int64(hi) {
		return hi
	}
	return int32(v)
}

// destroy removes t. A projectile destroyed with its event runs OnDestroy
// first, while it still has a position. Players have no destroy event.
func (s *Space) destroy(ctx *event.Context, t token.Token, withEvent bool) {
	if p, ok := s.players[t]; ok {
		s.PlayerLeave(t)
		s.report(diag.EntityDestroyed, diag.SeverityInfo, t, "player %s destroyed", p.Name)
		return
	}
	pr, ok := s.projectiles[t]
	if !ok {
		s.report(diag.MissingEntity, diag.SeverityDebug, ctx.Owner, "destroy of %s", t)
		return
	}
	if pr.dying {
		return
	}
	pr.dying = true
	if withEvent && pr.Blueprint != nil {
		s.Execute(s.projectileContext(t, pr), pr.Blueprint.OnDestroy)
	}
	delete(s.projectiles, t)
	s.shots.Remove(t)
	s.free(t)
	s.report(diag.EntityDestroyed, diag.SeverityDebug, t, "projectile destroyed")
}

func (s *Space) projectileContext(t token.Token, pr *Projectile) *event.Context {
	return event.ForProjectile(t, pr.Caster, pr.Target)
}

// Spawn creates a projectile from bp at at on behalf of ctx's owner and
// runs its OnCreate. The projectile's target is ctx's location slot 0 when
// bound, else the spawn point.
func (s *Space) Spawn(ctx *event.Context, bp *spell.ProjectileBlueprint, at geom.Point) token.Token {
	if bp == nil {
		s.report(diag.MissingEntity, diag.SeverityWarn, ctx.Owner, "spawn without blueprint")
		return token.Null
	}
	s.begin()
	defer s.end()

	target, ok := ctx.Location(spell.SlotCursor)
	if !ok {
		target = at
	}
	t := s.allocate()
	pr := &Projectile{
		Blueprint: bp,
		Caster:    ctx.Owner,
		Position:  at,
		Target:    target,
	}
	s.projectiles[t] = pr
	s.shots.Insert(t)
	s.all.Insert(t)

	pctx := s.projectileContext(t, pr)
	pr.Lifetime = float64(s.EvalDiscrete(pctx, bp.Lifetime))
	s.report(diag.ProjectileSpawned, diag.SeverityDebug, t, "spawned at %s for %.0fs", at, pr.Lifetime)
	s.Execute(pctx, bp.OnCreate)
	return t
}

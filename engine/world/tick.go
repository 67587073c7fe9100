package world

import (
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

// Tick advances the arena by one period.
//
// Players, in token order: buffs decay and expire, position integrates
// velocity, velocity damps toward exactly zero.
//
// Projectiles, in token order: lifetime decays and an expired projectile
// is destroyed with its OnDestroy; survivors move, then every entity that
// is both within the collision radius and in CollidesWith is hit in token
// order. Each hit runs OnCollision with the entity in slot 2. Hits stop
// once the projectile is gone; a hit does not destroy it by itself.
func (s *Space) Tick() {
	s.begin()
	defer s.end()
	s.tick++
	dt := s.cfg.TickPeriod

	for _, t := range s.humans.Slice() {
		p, ok := s.players[t]
		if !ok {
			continue
		}
		p.Buffs.Decay(dt)
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.Velocity = p.Velocity.Damp(s.cfg.Damping, s.cfg.SlowBy)
	}

	for _, t := range s.shots.Slice() {
		pr, ok := s.projectiles[t]
		if !ok || pr.dying {
			continue
		}
		pr.Lifetime -= dt
		if pr.Lifetime <= 0 {
			s.report(diag.ProjectileExpired, diag.SeverityDebug, t, "lifetime over")
			s.destroy(s.projectileContext(t, pr), t, true)
			continue
		}
		pr.Position = pr.Position.Add(pr.Velocity.Scale(dt))
		s.collide(t, pr)
	}
}

func (s *Space) collide(t token.Token, pr *Projectile) {
	ctx := s.projectileContext(t, pr)
	candidates := s.EvalEntitySet(ctx, pr.Blueprint.CollidesWith)
	var hits []token.Token
	for _, other := range candidates.Slice() {
		if other == t {
			continue
		}
		if p, ok := s.Position(other); ok && geom.Dist(p, pr.Position) <= s.cfg.CollisionRadius {
			hits = append(hits, other)
		}
	}
	for _, other := range hits {
		if _, alive := s.projectiles[t]; !alive || pr.dying {
			return
		}
		if !s.Alive(other) {
			continue
		}
		s.report(diag.Collision, diag.SeverityDebug, t, "hit %s", other)
		hctx := s.projectileContext(t, pr)
		hctx.DefineEntity(spell.SlotOther, other)
		s.Execute(hctx, pr.Blueprint.OnCollision)
	}
}

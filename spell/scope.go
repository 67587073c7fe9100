package spell

import "fmt"

// SlotKind names one of the four slot index spaces.
type SlotKind uint8

const (
	KindEntity SlotKind = iota
	KindSet
	KindLocation
	KindDiscrete
)

func (k SlotKind) String() string {
	switch k {
	case KindEntity:
		return "E"
	case KindSet:
		return "Eset"
	case KindLocation:
		return "L"
	case KindDiscrete:
		return "D"
	}
	return "?"
}

type slotMask [4]uint64

func (m slotMask) has(i uint8) bool { return m[i/64]&(1<<(i%64)) != 0 }

func (m *slotMask) add(i uint8) { m[i/64] |= 1 << (i % 64) }

// Scope is the set of slots bound at some point of an instruction list.
type Scope struct {
	masks [4]slotMask
}

// Bind marks a slot as defined.
func (s *Scope) Bind(k SlotKind, slot uint8) { s.masks[k].add(slot) }

// Meet keeps only the slots bound in both s and o.
func (s Scope) Meet(o Scope) Scope {
	for k := range s.masks {
		for w := range s.masks[k] {
			s.masks[k][w] &= o.masks[k][w]
		}
	}
	return s
}

// Bound reports whether a slot is defined.
func (s Scope) Bound(k SlotKind, slot uint8) bool { return s.masks[k].has(slot) }

// CastScope is what a cast binds before running: the caster and the cursor.
func CastScope() Scope {
	var s Scope
	s.Bind(KindEntity, uint8(SlotCaster))
	s.Bind(KindLocation, uint8(SlotCursor))
	return s
}

// ProjectileScope is what every projectile event binds.
func ProjectileScope() Scope {
	var s Scope
	s.Bind(KindEntity, uint8(SlotProjectile))
	s.Bind(KindEntity, uint8(SlotOwner))
	s.Bind(KindLocation, uint8(SlotTarget))
	return s
}

// CollisionScope adds the entity hit to ProjectileScope.
func CollisionScope() Scope {
	s := ProjectileScope()
	s.Bind(KindEntity, uint8(SlotOther))
	return s
}

// ScopeError reports a load of a slot that is not bound where it is read.
type ScopeError struct {
	Where string
	Kind  SlotKind
	Slot  uint8
}

func (e ScopeError) Error() string {
	return fmt.Sprintf("%s: load of unbound slot %s_%d", e.Where, e.Kind, e.Slot)
}

// CheckSpell returns every unbound slot load in sp and the blueprints it
// spawns. Definitions bind for the rest of their list; CallWith and
// ForEachAs bind only inside their body. A slot defined by an ITE stays
// bound after it only when both branches define it.
func CheckSpell(sp *Spell) []ScopeError {
	c := &scopeChecker{seen: map[*ProjectileBlueprint]bool{}}
	cast := CastScope()
	c.where = "requires"
	c.expr(cast, sp.Requires)
	c.where = "consumes"
	for _, r := range sp.Consumes {
		c.expr(cast, r)
	}
	c.where = "on_cast"
	c.list(cast, sp.OnCast)
	c.where = "on_cooldown"
	c.list(cast, sp.OnCooldown)
	return c.errs
}

// CheckBlueprint is CheckSpell for a single blueprint.
func CheckBlueprint(bp *ProjectileBlueprint) []ScopeError {
	c := &scopeChecker{seen: map[*ProjectileBlueprint]bool{}}
	c.blueprint(bp)
	return c.errs
}

type scopeChecker struct {
	where string
	errs  []ScopeError
	seen  map[*ProjectileBlueprint]bool
	queue []*ProjectileBlueprint
}

func (c *scopeChecker) fail(k SlotKind, slot uint8) {
	c.errs = append(c.errs, ScopeError{Where: c.where, Kind: k, Slot: slot})
}

func (c *scopeChecker) list(sc Scope, is []Instruction) {
	for _, i := range is {
		c.instr(&sc, i)
	}
	for len(c.queue) > 0 {
		bp := c.queue[0]
		c.queue = c.queue[1:]
		c.blueprint(bp)
	}
}

func (c *scopeChecker) blueprint(bp *ProjectileBlueprint) {
	if bp == nil || c.seen[bp] {
		return
	}
	c.seen[bp] = true
	saved := c.where
	defer func() { c.where = saved }()

	c.where = "blueprint.on_create"
	c.list(ProjectileScope(), bp.OnCreate)
	c.where = "blueprint.on_collision"
	c.list(CollisionScope(), bp.OnCollision)
	c.where = "blueprint.on_destroy"
	c.list(ProjectileScope(), bp.OnDestroy)
	c.where = "blueprint.collides_with"
	c.expr(ProjectileScope(), bp.CollidesWith)
	c.where = "blueprint.lifetime"
	c.expr(ProjectileScope(), bp.Lifetime)
}

func (c *scopeChecker) instr(sc *Scope, i Instruction) {
	switch i := i.(type) {
	case Define:
		c.expr(*sc, i.Def)
		bind(sc, i.Def)
	case ITE:
		c.expr(*sc, i.If)
		then := c.body(*sc, i.Then)
		*sc = then.Meet(c.body(*sc, i.Else))
	case CallWith:
		c.expr(*sc, i.Def)
		inner := *sc
		bind(&inner, i.Def)
		c.body(inner, i.Body)
	case ForEachAs:
		c.expr(*sc, i.Set)
		inner := *sc
		inner.Bind(KindEntity, uint8(i.Slot))
		c.body(inner, i.Body)
	case SpawnProjectileAt:
		c.expr(*sc, i.At)
		if i.Blueprint != nil && !c.seen[i.Blueprint] {
			c.queue = append(c.queue, i.Blueprint)
		}
	default:
		c.expr(*sc, i)
	}
}

// body checks is and returns the scope after its last instruction.
func (c *scopeChecker) body(sc Scope, is []Instruction) Scope {
	for _, i := range is {
		c.instr(&sc, i)
	}
	return sc
}

// expr checks every load beneath n. Expressions never define slots.
func (c *scopeChecker) expr(sc Scope, n any) {
	Walk(n, func(n any) bool {
		switch n := n.(type) {
		case LoadEntity:
			if !sc.Bound(KindEntity, uint8(n.Slot)) {
				c.fail(KindEntity, uint8(n.Slot))
			}
		case LoadSet:
			if !sc.Bound(KindSet, uint8(n.Slot)) {
				c.fail(KindSet, uint8(n.Slot))
			}
		case LoadLocation:
			if !sc.Bound(KindLocation, uint8(n.Slot)) {
				c.fail(KindLocation, uint8(n.Slot))
			}
		case LoadDiscrete:
			if !sc.Bound(KindDiscrete, uint8(n.Slot)) {
				c.fail(KindDiscrete, uint8(n.Slot))
			}
		case *ProjectileBlueprint:
			return false
		}
		return true
	})
}

func bind(sc *Scope, d Definition) {
	switch d := d.(type) {
	case DefineSet:
		sc.Bind(KindSet, uint8(d.Slot))
	case DefineEntity:
		sc.Bind(KindEntity, uint8(d.Slot))
	case DefineLocation:
		sc.Bind(KindLocation, uint8(d.Slot))
	case DefineDiscrete:
		sc.Bind(KindDiscrete, uint8(d.Slot))
	}
}

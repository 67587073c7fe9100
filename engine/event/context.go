// Package event holds the slot bindings used while one instruction list
// executes.
package event

import (
	"maps"

	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

// Context maps each slot kind to its bound values. A fresh Context is
// built per cast and per projectile event.
type Context struct {
	// Owner is the caster on whose behalf this execution runs.
	Owner token.Token

	ents map[spell.ESlot]token.Token
	sets map[spell.ESetSlot]token.Set
	locs map[spell.LSlot]geom.Point
	nums map[spell.DSlot]int32
}

// New returns an empty context.
func New(owner token.Token) *Context {
	return &Context{
		Owner: owner,
		ents:  map[spell.ESlot]token.Token{},
		sets:  map[spell.ESetSlot]token.Set{},
		locs:  map[spell.LSlot]geom.Point{},
		nums:  map[spell.DSlot]int32{},
	}
}

// ForCast binds the caster and cursor the way every cast does.
func ForCast(caster token.Token, cursor geom.Point) *Context {
	c := New(caster)
	c.DefineEntity(spell.SlotCaster, caster)
	c.DefineLocation(spell.SlotCursor, cursor)
	return c
}

// ForProjectile binds a projectile, its caster and its target.
func ForProjectile(self, owner token.Token, target geom.Point) *Context {
	c := New(owner)
	c.DefineEntity(spell.SlotProjectile, self)
	c.DefineEntity(spell.SlotOwner, owner)
	c.DefineLocation(spell.SlotTarget, target)
	return c
}

func (c *Context) DefineEntity(s spell.ESlot, t token.Token) { c.ents[s] = t }
func (c *Context) DefineSet(s spell.ESetSlot, set token.Set) { c.sets[s] = set }
func (c *Context) DefineLocation(s spell.LSlot, p geom.Point) { c.locs[s] = p }
func (c *Context) DefineDiscrete(s spell.DSlot, v int32) { c.nums[s] = v }

func (c *Context) Entity(s spell.ESlot) (token.Token, bool) {
	t, ok := c.ents[s]
	return t, ok
}

func (c *Context) Set(s spell.ESetSlot) (token.Set, bool) {
	set, ok := c.sets[s]
	return set, ok
}

func (c *Context) Location(s spell.LSlot) (geom.Point, bool) {
	p, ok := c.locs[s]
	return p, ok
}

func (c *Context) Discrete(s spell.DSlot) (int32, bool) {
	v, ok := c.nums[s]
	return v, ok
}

// Snapshot captures every binding. Sets are immutable once bound so the
// copy is shallow.
type Snapshot struct {
	ents map[spell.ESlot]token.Token
	sets map[spell.ESetSlot]token.Set
	locs map[spell.LSlot]geom.Point
	nums map[spell.DSlot]int32
}

// Snapshot copies the current bindings.
func (c *Context) Snapshot() Snapshot {
	return Snapshot{
		ents: maps.Clone(c.ents),
		sets: maps.Clone(c.sets),
		locs: maps.Clone(c.locs),
		nums: maps.Clone(c.nums),
	}
}

// Restore puts back the bindings captured by s, dropping anything defined
// since. s stays valid and can be restored again.
func (c *Context) Restore(s Snapshot) {
	c.ents = maps.Clone(s.ents)
	c.sets = maps.Clone(s.sets)
	c.locs = maps.Clone(s.locs)
	c.nums = maps.Clone(s.nums)
}

// Len returns the number of bindings across all kinds.
func (c *Context) Len() int {
	return len(c.ents) + len(c.sets) + len(c.locs) + len(c.nums)
}

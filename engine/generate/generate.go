// Package generate synthesizes random, well-formed spells.
//
// Every generator function takes the depth budget left and the slots in
// scope. A node at depth <= 0 is always a leaf of its kind, and every
// child is generated with a smaller budget, so generation terminates for
// any depth. Loads only ever name slots that the scope says are bound.
package generate

import (
	"errors"
	"fmt"

	"github.com/nathoo/spellcore/engine/rng"
	"github.com/nathoo/spellcore/spell"
)

// ErrDepth is returned for a non-positive depth budget.
var ErrDepth = errors.New("generate: max depth must be positive")

// MaxList caps the length of any generated list.
const MaxList = 4

// maxSlot is the highest slot index a definition introduces. Beyond it
// definitions rebind the last slot.
const maxSlot = 63

// Slots counts the bound slots of each kind. Slots 0..n-1 of a kind are
// in scope.
type Slots struct {
	Ent, Set, Loc, Disc uint8
}

// Cast is what a cast binds: the caster and the cursor.
var Cast = Slots{Ent: 1, Loc: 1}

// Projectile is what projectile events bind: the projectile, its caster
// and its target.
var Projectile = Slots{Ent: 2, Loc: 1}

// Collision adds the entity hit to Projectile.
var Collision = Slots{Ent: 3, Loc: 1}

// Generator holds the random stream and the running complexity count.
type Generator struct {
	r          *rng.RNG
	complexity uint32
}

// New returns a generator drawing from r.
func New(r *rng.RNG) *Generator {
	return &Generator{r: r}
}

// Complexity returns the number of nodes constructed so far, including
// nodes discarded by estimation retries.
func (g *Generator) Complexity() uint32 {
	return g.complexity
}

func (g *Generator) node() {
	g.complexity++
}

// stop decides whether a node with the given budget becomes a leaf.
func (g *Generator) stop(depth int) bool {
	return depth <= 0 || g.r.OneIn(depth+1)
}

// more decides whether a list grows by another element.
func (g *Generator) more(n int) bool {
	return n < MaxList && g.r.OneIn(3)
}

// Spell generates a spell with the given depth budget and simplifies it.
// The complexity returned counts every node constructed.
func Spell(r *rng.RNG, maxDepth int) (*spell.Spell, uint32, error) {
	if maxDepth <= 0 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrDepth, maxDepth)
	}
	g := New(r)
	sp := g.Spell(maxDepth)
	return Simplify(sp), g.Complexity(), nil
}

// Spell generates an unsimplified spell.
func (g *Generator) Spell(maxDepth int) *spell.Spell {
	g.node()
	d := maxDepth - 1
	sp := &spell.Spell{
		OnCast:   g.instructions(d, Cast),
		Requires: g.condition(d, Cast),
		Consumes: g.resources(d, Cast, Medium),
	}
	if g.r.OneIn(4) {
		sp.OnCooldown = g.instructions(d, Cast)
	}
	sp.Name = fmt.Sprintf("spell-%04x", g.r.Intn(1<<16))
	return sp
}

// Blueprint generates a projectile blueprint.
func (g *Generator) Blueprint(depth int) *spell.ProjectileBlueprint {
	g.node()
	return &spell.ProjectileBlueprint{
		OnCreate:     g.instructions(depth-1, Projectile),
		OnCollision:  g.instructions(depth-1, Collision),
		OnDestroy:    g.instructions(depth-1, Projectile),
		CollidesWith: g.entitySet(depth-1, Projectile),
		Lifetime:     g.banded(depth-1, Projectile, Lifetime),
	}
}

// Accept generates spells until one's complexity falls within [lo, hi],
// giving up after attempts tries.
func Accept(r *rng.RNG, maxDepth int, lo, hi uint32, attempts int) (*spell.Spell, uint32, error) {
	for i := 0; i < attempts; i++ {
		sp, c, err := Spell(r, maxDepth)
		if err != nil {
			return nil, 0, err
		}
		if c >= lo && c <= hi {
			return sp, c, nil
		}
	}
	return nil, 0, fmt.Errorf("generate: no spell with complexity in [%d,%d] after %d attempts", lo, hi, attempts)
}

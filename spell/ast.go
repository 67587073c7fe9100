// Package spell defines the spell expression language: a closed set of
// mutually recursive node kinds that describe what a spell does when it is
// cast and how the projectiles it spawns behave.
//
// Every node kind is a sealed interface. The concrete node types are plain
// data; evaluation lives in engine/world and random construction lives in
// engine/generate.
package spell

import "github.com/nathoo/spellcore/engine/buff"

// Slots name bindings inside one evaluation context, one index space per kind.
type (
	ESlot    uint8 // entity
	ESetSlot uint8 // entity set
	LSlot    uint8 // location
	DSlot    uint8 // discrete
)

// Discrete is an integer-valued expression.
type Discrete interface{ discrete() }

type (
	// Const is a literal.
	Const int32
	// Range draws uniformly from [Lo, Hi].
	Range struct{ Lo, Hi int32 }
	// WithinPercent is Value jittered by up to Percent of its magnitude.
	WithinPercent struct {
		Value   int32
		Percent float64
	}
	// Div is integer division; a zero denominator divides by a tiny epsilon.
	Div struct{ Num, Den Discrete }
	// Sum adds its terms. An empty sum is 0.
	Sum []Discrete
	// Neg negates X.
	Neg struct{ X Discrete }
	// Mult multiplies its factors. An empty product is 1.
	Mult []Discrete
	// Max is the largest term, 0 when empty.
	Max []Discrete
	// Min is the smallest term, 0 when empty.
	Min []Discrete
	// CountStacks is the number of active stacks of Buff on Of.
	CountStacks struct {
		Buff buff.Buff
		Of   Entity
	}
	// CountDur is the remaining duration of Buff on Of in whole seconds.
	CountDur struct {
		Buff buff.Buff
		Of   Entity
	}
	// ChooseDiscrete picks one term uniformly, 0 when empty.
	ChooseDiscrete []Discrete
	// Cardinality is the number of members of Set.
	Cardinality struct{ Set EntitySet }
	// LoadDiscrete reads a bound discrete slot.
	LoadDiscrete struct{ Slot DSlot }
)

func (Const) discrete()          {}
func (Range) discrete()          {}
func (WithinPercent) discrete()  {}
func (Div) discrete()            {}
func (Sum) discrete()            {}
func (Neg) discrete()            {}
func (Mult) discrete()           {}
func (Max) discrete()            {}
func (Min) discrete()            {}
func (CountStacks) discrete()    {}
func (CountDur) discrete()       {}
func (ChooseDiscrete) discrete() {}
func (Cardinality) discrete()    {}
func (LoadDiscrete) discrete()   {}

// Condition is a boolean expression.
type Condition interface{ condition() }

type (
	Top    struct{}
	Bottom struct{}
	// Nand holds when none of its operands hold. With one operand it is Not.
	Nand []Condition
	And  []Condition
	Or   []Condition
	// Equals, LessThan and MoreThan compare A against B.
	Equals   struct{ A, B Discrete }
	LessThan struct{ A, B Discrete }
	MoreThan struct{ A, B Discrete }
	// SetCmp lifts an entity set comparison into a condition.
	SetCmp struct{ Cmp EntitySetCmp }
)

func (Top) condition()      {}
func (Bottom) condition()   {}
func (Nand) condition()     {}
func (And) condition()      {}
func (Or) condition()       {}
func (Equals) condition()   {}
func (LessThan) condition() {}
func (MoreThan) condition() {}
func (SetCmp) condition()   {}

// EntitySet describes a subset of the live entities.
type EntitySet interface{ entitySet() }

type (
	// SetNand is the universe minus the union of its operands.
	SetNand []EntitySet
	// SetAnd intersects its operands. An empty SetAnd is the universe.
	SetAnd []EntitySet
	// SetOr unites its operands. An empty SetOr is empty.
	SetOr []EntitySet
	// Only is the singleton holding E.
	Only struct{ E Entity }
	// LoadSet reads a bound entity set slot.
	LoadSet struct{ Slot ESetSlot }
	// WithinRangeOf is every entity no farther than Radius from E, E included.
	WithinRangeOf struct {
		E      Entity
		Radius Discrete
	}
	// HasMinResource is every entity holding at least Resource.
	HasMinResource struct{ Resource Resource }
	// EnemiesOf is every player except E.
	EnemiesOf struct{ E Entity }
	// AllBut is every entity except E.
	AllBut struct{ E Entity }
	IsHuman      struct{}
	IsProjectile struct{}
	Empty        struct{}
	Universe     struct{}
)

func (SetNand) entitySet()        {}
func (SetAnd) entitySet()         {}
func (SetOr) entitySet()          {}
func (Only) entitySet()           {}
func (LoadSet) entitySet()        {}
func (WithinRangeOf) entitySet()  {}
func (HasMinResource) entitySet() {}
func (EnemiesOf) entitySet()      {}
func (AllBut) entitySet()         {}
func (IsHuman) entitySet()        {}
func (IsProjectile) entitySet()   {}
func (Empty) entitySet()          {}
func (Universe) entitySet()       {}

// EntitySetCmp compares entity sets.
type EntitySetCmp interface{ entitySetCmp() }

type (
	CmpNand []EntitySetCmp
	CmpAnd  []EntitySetCmp
	CmpOr   []EntitySetCmp
	// Subset holds when A is a subset of B.
	Subset struct{ A, B EntitySet }
	// Superset holds when A is a superset of B.
	Superset struct{ A, B EntitySet }
	SetEqual struct{ A, B EntitySet }
	// Contains holds when E is a member of Set.
	Contains struct {
		Set EntitySet
		E   Entity
	}
)

func (CmpNand) entitySetCmp()  {}
func (CmpAnd) entitySetCmp()   {}
func (CmpOr) entitySetCmp()    {}
func (Subset) entitySetCmp()   {}
func (Superset) entitySetCmp() {}
func (SetEqual) entitySetCmp() {}
func (Contains) entitySetCmp() {}

// Entity resolves to a single token.
type Entity interface{ entity() }

type (
	LoadEntity   struct{ Slot ESlot }
	FirstOf      struct{ Set EntitySet }
	ChooseEntity struct{ Set EntitySet }
	// ClosestFrom is the member of Set nearest To.
	ClosestFrom struct {
		Set EntitySet
		To  Location
	}
	LastOf struct{ Set EntitySet }
)

func (LoadEntity) entity()   {}
func (FirstOf) entity()      {}
func (ChooseEntity) entity() {}
func (ClosestFrom) entity()  {}
func (LastOf) entity()       {}

// Location resolves to a point.
type Location interface{ location() }

type (
	AtEntity       struct{ E Entity }
	Midpoint       []Location
	ChooseLocation []Location
	LoadLocation   struct{ Slot LSlot }
)

func (AtEntity) location()       {}
func (Midpoint) location()       {}
func (ChooseLocation) location() {}
func (LoadLocation) location()   {}

// Direction resolves to a heading in radians.
type Direction interface{ direction() }

type (
	// Toward heads from From to To. A nil From starts at the entity being
	// pushed.
	Toward struct{ From, To Location }
	// ConstRad is a fixed heading.
	ConstRad float64
	// BetweenRad draws uniformly from [Lo, Hi].
	BetweenRad struct{ Lo, Hi float64 }
	ChooseDirection []Direction
	// WithinRadOf perturbs Base by up to Spread radians either way.
	WithinRadOf struct {
		Base   Direction
		Spread float64
	}
)

func (Toward) direction()          {}
func (ConstRad) direction()        {}
func (BetweenRad) direction()      {}
func (ChooseDirection) direction() {}
func (WithinRadOf) direction()     {}

// Resource is an amount of something an entity holds.
type Resource interface{ resource() }

type (
	Mana       struct{ Amount Discrete }
	Health     struct{ Amount Discrete }
	BuffStacks struct {
		Buff   buff.Buff
		Amount Discrete
	}
)

func (Mana) resource()       {}
func (Health) resource()     {}
func (BuffStacks) resource() {}

// Definition binds a value into a slot.
type Definition interface{ definition() }

type (
	DefineSet struct {
		Slot ESetSlot
		Set  EntitySet
	}
	DefineEntity struct {
		Slot ESlot
		E    Entity
	}
	DefineLocation struct {
		Slot LSlot
		At   Location
	}
	DefineDiscrete struct {
		Slot DSlot
		X    Discrete
	}
)

func (DefineSet) definition()      {}
func (DefineEntity) definition()   {}
func (DefineLocation) definition() {}
func (DefineDiscrete) definition() {}

// Instruction is the imperative unit of a spell.
type Instruction interface{ instruction() }

type (
	// Define binds a slot for the rest of the enclosing execution.
	Define struct{ Def Definition }
	// ITE runs Then when If holds, Else otherwise.
	ITE struct {
		If   Condition
		Then []Instruction
		Else []Instruction
	}
	// CallWith binds Def for the duration of Body only.
	CallWith struct {
		Def  Definition
		Body []Instruction
	}
	// ForEachAs runs Body once per member of Set with the member in Slot.
	ForEachAs struct {
		Slot ESlot
		Set  EntitySet
		Body []Instruction
	}
	// Destroy removes E and runs its destroy event.
	Destroy struct{ E Entity }
	// DestroyWithoutEvent removes E silently.
	DestroyWithoutEvent struct{ E Entity }
	// MoveEntity places E at To.
	MoveEntity struct {
		E  Entity
		To Location
	}
	// AddResource grants Resource to E. Negative amounts take it away.
	AddResource struct {
		E        Entity
		Resource Resource
	}
	AddVelocity struct {
		E     Entity
		Dir   Direction
		Speed Discrete
	}
	SpawnProjectileAt struct {
		Blueprint *ProjectileBlueprint
		At        Location
	}
	Nothing struct{}
)

func (Define) instruction()              {}
func (ITE) instruction()                 {}
func (CallWith) instruction()            {}
func (ForEachAs) instruction()           {}
func (Destroy) instruction()             {}
func (DestroyWithoutEvent) instruction() {}
func (MoveEntity) instruction()          {}
func (AddResource) instruction()         {}
func (AddVelocity) instruction()         {}
func (SpawnProjectileAt) instruction()   {}
func (Nothing) instruction()             {}

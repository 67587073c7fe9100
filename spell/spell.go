package spell

import "github.com/nathoo/spellcore/engine/buff"

// Spell is an immutable template owned by a player. Casts share the same
// *Spell and never modify it.
//
// A cast binds the caster to entity slot 0 and the cursor to location
// slot 0 before Requires, Consumes and OnCast are evaluated.
type Spell struct {
	Name       string
	OnCast     []Instruction
	Requires   Condition
	OnCooldown []Instruction // runs when a cast is refused
	Consumes   []Resource
}

// ProjectileBlueprint is the shared template every projectile spawned from
// it follows.
//
// Projectile events bind the projectile to entity slot 0, its caster to
// entity slot 1 and its target point to location slot 0. OnCollision also
// binds the entity hit to entity slot 2.
type ProjectileBlueprint struct {
	OnCreate     []Instruction
	OnCollision  []Instruction
	OnDestroy    []Instruction
	CollidesWith EntitySet
	Lifetime     Discrete // seconds
}

// Well-known slots.
const (
	SlotCaster     ESlot = 0 // cast context
	SlotProjectile ESlot = 0 // projectile context
	SlotOwner      ESlot = 1 // projectile context
	SlotOther      ESlot = 2 // collision context
	SlotCursor     LSlot = 0 // cast context
	SlotTarget     LSlot = 0 // projectile context
)

// Shorthands for the well-known bindings.
var (
	Caster = LoadEntity{Slot: SlotCaster}
	This   = LoadEntity{Slot: SlotProjectile}
	Owner  = LoadEntity{Slot: SlotOwner}
	Other  = LoadEntity{Slot: SlotOther}
	Cursor = LoadLocation{Slot: SlotCursor}
	Target = LoadLocation{Slot: SlotTarget}
)

// Swarm distributes 20 stacks of swarm among the caster's enemies within
// 4 plus the caster's toxified stacks.
func Swarm() *Spell {
	nearby := Define{Def: DefineSet{
		Slot: 0,
		Set: SetAnd{
			WithinRangeOf{
				E:      Caster,
				Radius: Sum{Const(4), CountStacks{Buff: buff.Toxified, Of: Caster}},
			},
			EnemiesOf{E: Caster},
		},
	}}
	share := Define{Def: DefineDiscrete{
		Slot: 0,
		X:    Div{Num: Const(20), Den: Cardinality{Set: LoadSet{Slot: 0}}},
	}}
	spread := ForEachAs{
		Slot: 1,
		Set:  LoadSet{Slot: 0},
		Body: []Instruction{
			AddResource{
				E:        LoadEntity{Slot: 1},
				Resource: BuffStacks{Buff: buff.Swarm, Amount: LoadDiscrete{Slot: 0}},
			},
		},
	}
	return &Spell{
		Name:     "swarm",
		OnCast:   []Instruction{nearby, share, spread},
		Requires: Top{},
		Consumes: []Resource{Mana{Amount: Const(50)}},
	}
}

// BlinkProjectile flies toward its target. When it dies, the electrified
// entity closest to it is pulled to where it died.
func BlinkProjectile() *ProjectileBlueprint {
	here := AtEntity{E: This}
	return &ProjectileBlueprint{
		OnCreate: []Instruction{
			AddVelocity{E: This, Dir: Toward{To: Target}, Speed: Const(10)},
		},
		OnCollision: []Instruction{Destroy{E: This}},
		OnDestroy: []Instruction{
			MoveEntity{
				E: ClosestFrom{
					Set: SetAnd{
						HasMinResource{Resource: BuffStacks{Buff: buff.Electrified, Amount: Const(1)}},
						AllBut{E: This},
					},
					To: here,
				},
				To: here,
			},
		},
		CollidesWith: SetAnd{AllBut{E: This}, AllBut{E: Owner}},
		Lifetime:     Const(3),
	}
}

// CombatBlink electrifies the caster and fires a blink projectile. It can
// only be cast with an enemy within 10 and costs more per electrified stack.
func CombatBlink() *Spell {
	return &Spell{
		Name: "combat_blink",
		OnCast: []Instruction{
			AddResource{E: Caster, Resource: BuffStacks{Buff: buff.Electrified, Amount: Const(1)}},
			SpawnProjectileAt{Blueprint: BlinkProjectile(), At: AtEntity{E: Caster}},
		},
		Requires: MoreThan{
			A: Cardinality{Set: SetAnd{
				WithinRangeOf{E: Caster, Radius: Const(10)},
				EnemiesOf{E: Caster},
			}},
			B: Const(0),
		},
		Consumes: []Resource{
			Mana{Amount: Sum{
				Const(30),
				Mult{CountStacks{Buff: buff.Electrified, Of: Caster}, Const(10)},
			}},
		},
	}
}

// FireballProjectile burns what it hits, then scalds its caster when it
// is gone.
func FireballProjectile() *ProjectileBlueprint {
	return &ProjectileBlueprint{
		OnCreate: []Instruction{
			AddVelocity{E: This, Dir: Toward{To: Target}, Speed: Const(12)},
		},
		OnCollision: []Instruction{
			AddResource{E: Other, Resource: Health{Amount: Range{Lo: -50, Hi: -40}}},
			AddResource{E: Other, Resource: BuffStacks{Buff: buff.Burned, Amount: Const(2)}},
			Destroy{E: This},
		},
		OnDestroy: []Instruction{
			AddResource{E: Owner, Resource: BuffStacks{Buff: buff.Scalded, Amount: Const(1)}},
		},
		CollidesWith: SetAnd{AllBut{E: This}, AllBut{E: Owner}},
		Lifetime:     Const(3),
	}
}

// Fireball throws a fireball at the cursor. A scalded caster cannot cast it.
func Fireball() *Spell {
	return &Spell{
		Name:   "fireball",
		OnCast: []Instruction{SpawnProjectileAt{Blueprint: FireballProjectile(), At: AtEntity{E: Caster}}},
		Requires: Equals{
			A: CountStacks{Buff: buff.Scalded, Of: Caster},
			B: Const(0),
		},
		OnCooldown: []Instruction{
			AddResource{E: Caster, Resource: BuffStacks{Buff: buff.Hot, Amount: Const(1)}},
		},
		Consumes: []Resource{Mana{Amount: Const(50)}},
	}
}

// Canonical returns the hand-authored spells by name.
func Canonical() map[string]func() *Spell {
	return map[string]func() *Spell{
		"swarm":        Swarm,
		"combat_blink": CombatBlink,
		"fireball":     Fireball,
	}
}

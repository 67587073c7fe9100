package spell

import (
	"strings"
	"testing"

	"github.com/nathoo/spellcore/engine/buff"
)

func TestCanonicalSpells_ScopeClean(t *testing.T) {
	for name, mk := range Canonical() {
		sp := mk()
		if sp.Name != name {
			t.Errorf("spell %q has Name %q", name, sp.Name)
		}
		if errs := CheckSpell(sp); len(errs) > 0 {
			t.Errorf("%s: unexpected scope errors: %v", name, errs)
		}
	}
}

func TestCheckSpell_UnboundLoads(t *testing.T) {
	sp := &Spell{
		Name:     "broken",
		Requires: MoreThan{A: LoadDiscrete{Slot: 3}, B: Const(0)},
		OnCast: []Instruction{
			MoveEntity{E: LoadEntity{Slot: 1}, To: Cursor},
			CallWith{
				Def:  DefineEntity{Slot: 1, E: Caster},
				Body: []Instruction{MoveEntity{E: LoadEntity{Slot: 1}, To: Cursor}},
			},
			// Slot 1 is unbound again after CallWith.
			Destroy{E: LoadEntity{Slot: 1}},
		},
	}
	errs := CheckSpell(sp)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	if errs[0].Where != "requires" || errs[0].Kind != KindDiscrete || errs[0].Slot != 3 {
		t.Errorf("errs[0] = %+v", errs[0])
	}
	for _, e := range errs[1:] {
		if e.Where != "on_cast" || e.Kind != KindEntity || e.Slot != 1 {
			t.Errorf("unexpected error %+v", e)
		}
	}
}

func TestCheckSpell_DefineFlowsForward(t *testing.T) {
	sp := &Spell{
		Requires: Top{},
		OnCast: []Instruction{
			Define{Def: DefineDiscrete{Slot: 0, X: Const(3)}},
			AddResource{E: Caster, Resource: Mana{Amount: LoadDiscrete{Slot: 0}}},
			ITE{
				If:   Top{},
				Then: []Instruction{Define{Def: DefineLocation{Slot: 1, At: Cursor}}},
			},
			MoveEntity{E: Caster, To: LoadLocation{Slot: 1}},
		},
	}
	errs := CheckSpell(sp)
	if len(errs) != 1 || errs[0].Kind != KindLocation || errs[0].Slot != 1 {
		t.Errorf("errs = %v, want one unbound L_1", errs)
	}
}

func TestCheckSpell_ITEBindsWhenBothBranchesDefine(t *testing.T) {
	sp := &Spell{
		Requires: Top{},
		OnCast: []Instruction{
			ITE{
				If: Top{},
				Then: []Instruction{
					Define{Def: DefineDiscrete{Slot: 2, X: Const(1)}},
					Define{Def: DefineEntity{Slot: 5, E: Caster}},
				},
				Else: []Instruction{
					Define{Def: DefineDiscrete{Slot: 2, X: Const(4)}},
				},
			},
			AddResource{E: Caster, Resource: Mana{Amount: LoadDiscrete{Slot: 2}}},
			Destroy{E: LoadEntity{Slot: 5}},
		},
	}
	errs := CheckSpell(sp)
	if len(errs) != 1 || errs[0].Kind != KindEntity || errs[0].Slot != 5 {
		t.Errorf("errs = %v, want only E_5 unbound", errs)
	}
}

func TestScopeMeet(t *testing.T) {
	a := CastScope()
	a.Bind(KindDiscrete, 70)
	b := CastScope()
	b.Bind(KindSet, 1)
	m := a.Meet(b)
	if !m.Bound(KindEntity, uint8(SlotCaster)) || !m.Bound(KindLocation, uint8(SlotCursor)) {
		t.Error("shared slots should survive")
	}
	if m.Bound(KindDiscrete, 70) || m.Bound(KindSet, 1) {
		t.Error("one-sided slots should not survive")
	}
	if !a.Bound(KindDiscrete, 70) {
		t.Error("Meet should not modify its receiver")
	}
}

func TestCheckBlueprint_CollisionSlot(t *testing.T) {
	bp := &ProjectileBlueprint{
		OnCreate:     []Instruction{Destroy{E: Other}},
		OnCollision:  []Instruction{Destroy{E: Other}},
		CollidesWith: Universe{},
		Lifetime:     Const(1),
	}
	errs := CheckBlueprint(bp)
	if len(errs) != 1 || errs[0].Where != "blueprint.on_create" {
		t.Errorf("errs = %v, want one in on_create", errs)
	}
}

func TestCount(t *testing.T) {
	n := Sum{Const(1), Neg{X: Const(2)}}
	if got := Count(n); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
	if got := Depth(n); got != 3 {
		t.Errorf("Depth = %d, want 3", got)
	}
	if got := Count(Swarm()); got < 15 {
		t.Errorf("Count(swarm) = %d, suspiciously small", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		node any
		want string
	}{
		{Const(-3), "Const(-3)"},
		{Sum{Const(4), LoadDiscrete{Slot: 0}}, "Sum(Const(4), LoadFrom(D_0))"},
		{BuffStacks{Buff: buff.Swarm, Amount: Const(1)}, "BuffStacks(swarm, Const(1))"},
		{Toward{To: Target}, "TowardLocation(LoadLocation(L_0))"},
		{Nothing{}, "Nothing"},
		{SetAnd{}, "And()"},
	}
	for _, tt := range tests {
		if got := Format(tt.node); got != tt.want {
			t.Errorf("Format = %q, want %q", got, tt.want)
		}
	}
}

func TestPretty_Wraps(t *testing.T) {
	out := Pretty(CombatBlink(), 40)
	if !strings.HasPrefix(out, "Spell(\n") {
		t.Errorf("Pretty should break the spell, got %q", out[:20])
	}
	if !strings.Contains(out, "SpawnProjectileAt(") {
		t.Errorf("Pretty lost the spawn instruction:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			t.Fatalf("blank line in output:\n%s", out)
		}
	}
}

func TestFormat_SelfSpawningBlueprint(t *testing.T) {
	bp := &ProjectileBlueprint{Lifetime: Const(1)}
	bp.OnCreate = []Instruction{SpawnProjectileAt{Blueprint: bp, At: Target}}
	sp := &Spell{Name: "loop", OnCast: []Instruction{SpawnProjectileAt{Blueprint: bp, At: Cursor}}, Requires: Top{}}

	out := Format(sp)
	if strings.Count(out, "Blueprint(...)") != 1 {
		t.Errorf("Format = %s", out)
	}
	if p := Pretty(sp, 30); !strings.Contains(p, "Blueprint(...)") {
		t.Errorf("Pretty = %s", p)
	}
}

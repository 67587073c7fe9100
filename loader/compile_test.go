package loader

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/spell"
	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// eval runs "return <expr>" and hands back the value.
func eval(t *testing.T, L *lua.LState, expr string) lua.LValue {
	t.Helper()
	if err := L.DoString("return " + expr); err != nil {
		t.Fatalf("%s: %v", expr, err)
	}
	v := L.Get(-1)
	L.Pop(1)
	return v
}

func TestCompileDiscrete(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	tests := []struct {
		src  string
		want spell.Discrete
	}{
		{"7", spell.Const(7)},
		{"Const(-3)", spell.Const(-3)},
		{"Range(1, 6)", spell.Range{Lo: 1, Hi: 6}},
		{"WithinPercent(100, 0.2)", spell.WithinPercent{Value: 100, Percent: 0.2}},
		{"Div(9, 2)", spell.Div{Num: spell.Const(9), Den: spell.Const(2)}},
		{"Neg(LoadDiscrete(3))", spell.Neg{X: spell.LoadDiscrete{Slot: 3}}},
		{"Sum { 1, 2, 3 }", spell.Sum{spell.Const(1), spell.Const(2), spell.Const(3)}},
		{"Max { 1 }", spell.Max{spell.Const(1)}},
		{"Min {}", spell.Min{}},
		{"ChooseDiscrete { 4, 5 }", spell.ChooseDiscrete{spell.Const(4), spell.Const(5)}},
		{`CountDur("burned", Caster)`, spell.CountDur{Buff: buff.Burned, Of: spell.Caster}},
		{"Cardinality(Universe)", spell.Cardinality{Set: spell.Universe{}}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := c.discrete(eval(t, L, tt.src))
			if err != nil {
				t.Fatalf("discrete: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %s, want %s", spell.Format(got), spell.Format(tt.want))
			}
		})
	}
}

func TestCompileDiscrete_Errors(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	tests := []struct {
		src  string
		want string
	}{
		{"2.5", "not a whole number"},
		{"4294967296", "not a whole number"},
		{`Range("a", 2)`, "argument 1 must be a number"},
		{"IsHuman", "expected discrete, got IsHuman"},
		{`"ten"`, "expected discrete, got string"},
		{"Sum { 1, Top }", "item 2"},
		{`CountStacks(1, Caster)`, "must be a buff name"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := c.discrete(eval(t, L, tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCompileCondition(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	tests := []struct {
		src  string
		want spell.Condition
	}{
		{"true", spell.Top{}},
		{"false", spell.Bottom{}},
		{"Top", spell.Top{}},
		{"And { Top, Bottom }", spell.And{spell.Top{}, spell.Bottom{}}},
		{"Nand { Top }", spell.Nand{spell.Top{}}},
		{"Or {}", spell.Or{}},
		{"LessThan(1, 2)", spell.LessThan{A: spell.Const(1), B: spell.Const(2)}},
		{
			"Contains(IsHuman, Caster)",
			spell.SetCmp{Cmp: spell.Contains{Set: spell.IsHuman{}, E: spell.Caster}},
		},
		{
			"SetCmp(Subset(Empty, Universe))",
			spell.SetCmp{Cmp: spell.Subset{A: spell.Empty{}, B: spell.Universe{}}},
		},
		{
			"CmpOr { SetEqual(Empty, Empty), Superset(Universe, IsProjectile) }",
			spell.SetCmp{Cmp: spell.CmpOr{
				spell.SetEqual{A: spell.Empty{}, B: spell.Empty{}},
				spell.Superset{A: spell.Universe{}, B: spell.IsProjectile{}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := c.condition(eval(t, L, tt.src))
			if err != nil {
				t.Fatalf("condition: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %s, want %s", spell.Format(got), spell.Format(tt.want))
			}
		})
	}
}

func TestCompileEntityAndSets(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	got, err := c.entity(eval(t, L, "LastOf(SetOr { Only(Owner), LoadSet(2) })"))
	if err != nil {
		t.Fatal(err)
	}
	want := spell.LastOf{Set: spell.SetOr{spell.Only{E: spell.Owner}, spell.LoadSet{Slot: 2}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s", spell.Format(got))
	}

	set, err := c.entitySet(eval(t, L, "SetNand { HasMinResource(Mana(10)), WithinRangeOf(Other, 2) }"))
	if err != nil {
		t.Fatal(err)
	}
	wantSet := spell.SetNand{
		spell.HasMinResource{Resource: spell.Mana{Amount: spell.Const(10)}},
		spell.WithinRangeOf{E: spell.Other, Radius: spell.Const(2)},
	}
	if !reflect.DeepEqual(set, wantSet) {
		t.Errorf("got %s", spell.Format(set))
	}

	if _, err := c.entitySet(eval(t, L, "Caster")); err == nil {
		t.Error("an entity is not a set")
	}
}

func TestCompileLocationAndDirection(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	loc, err := c.location(eval(t, L, "Midpoint { Cursor, AtEntity(Caster), ChooseLocation { LoadLocation(1) } }"))
	if err != nil {
		t.Fatal(err)
	}
	wantLoc := spell.Midpoint{
		spell.Cursor,
		spell.AtEntity{E: spell.Caster},
		spell.ChooseLocation{spell.LoadLocation{Slot: 1}},
	}
	if !reflect.DeepEqual(loc, wantLoc) {
		t.Errorf("got %s", spell.Format(loc))
	}

	tests := []struct {
		src  string
		want spell.Direction
	}{
		{"1.5", spell.ConstRad(1.5)},
		{"Rad(0)", spell.ConstRad(0)},
		{"Toward(Target)", spell.Toward{To: spell.Target}},
		{"TowardFrom(Cursor, Target)", spell.Toward{From: spell.Cursor, To: spell.Target}},
		{"BetweenRad(0, math.pi)", spell.BetweenRad{Lo: 0, Hi: math.Pi}},
		{"WithinRadOf(Toward(Cursor), 0.5)", spell.WithinRadOf{Base: spell.Toward{To: spell.Cursor}, Spread: 0.5}},
		{"ChooseDirection { 0, Rad(1) }", spell.ChooseDirection{spell.ConstRad(0), spell.ConstRad(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := c.direction(eval(t, L, tt.src))
			if err != nil {
				t.Fatalf("direction: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %s, want %s", spell.Format(got), spell.Format(tt.want))
			}
		})
	}
}

func TestCompileInstructions(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	got, err := c.instructions(eval(t, L, `{
		If(Equals(1, 1), { Nothing }, { DestroyWithoutEvent(Caster) }),
		Define(DefineLocation(2, Cursor)),
		CallWith(DefineDiscrete(1, 3), { AddResource(Caster, Health(LoadDiscrete(1))) }),
		MoveEntity(Caster, LoadLocation(2)),
	}`), "on_cast")
	if err != nil {
		t.Fatal(err)
	}
	want := []spell.Instruction{
		spell.ITE{
			If:   spell.Equals{A: spell.Const(1), B: spell.Const(1)},
			Then: []spell.Instruction{spell.Nothing{}},
			Else: []spell.Instruction{spell.DestroyWithoutEvent{E: spell.Caster}},
		},
		spell.Define{Def: spell.DefineLocation{Slot: 2, At: spell.Cursor}},
		spell.CallWith{
			Def:  spell.DefineDiscrete{Slot: 1, X: spell.Const(3)},
			Body: []spell.Instruction{spell.AddResource{E: spell.Caster, Resource: spell.Health{Amount: spell.LoadDiscrete{Slot: 1}}}},
		},
		spell.MoveEntity{E: spell.Caster, To: spell.LoadLocation{Slot: 2}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s\nwant %s", spell.Format(got), spell.Format(want))
	}
}

func TestCompileInstructions_MissingIsNil(t *testing.T) {
	c := newCompiler()
	got, err := c.instructions(lua.LNil, "on_cooldown")
	if err != nil || got != nil {
		t.Errorf("instructions(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestCompileIf_MissingElse(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	got, err := c.instruction(eval(t, L, "If(Top, { Nothing })"))
	if err != nil {
		t.Fatal(err)
	}
	ite := got.(spell.ITE)
	if ite.Else != nil {
		t.Errorf("Else = %v, want nil", ite.Else)
	}
}

func TestCompileDefinition_Rejects(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	_, err := c.instruction(eval(t, L, "CallWith(Nothing, {})"))
	if err == nil || !strings.Contains(err.Error(), "expected definition, got Nothing") {
		t.Errorf("error = %v", err)
	}
}

func TestCompileBlueprint_Defaults(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	c := newCompiler()

	v := eval(t, L, "Projectile {}")
	bp, err := c.blueprint(v)
	if err != nil {
		t.Fatal(err)
	}
	if bp.Lifetime != spell.Const(DefaultLifetime) {
		t.Errorf("Lifetime = %v, want %d", bp.Lifetime, DefaultLifetime)
	}
	if _, ok := bp.CollidesWith.(spell.Empty); !ok {
		t.Errorf("CollidesWith = %T, want Empty", bp.CollidesWith)
	}
	if bp.OnCreate != nil || bp.OnCollision != nil || bp.OnDestroy != nil {
		t.Error("unset events should be nil")
	}

	again, _ := c.blueprint(v)
	if again != bp {
		t.Error("the same table should compile to the same blueprint")
	}
}

func TestCompileSpell_Defaults(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`Spell "plain" { on_cast = { Nothing } }`); err != nil {
		t.Fatal(err)
	}
	spells, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	sp := spells[0]
	if _, ok := sp.Requires.(spell.Top); !ok {
		t.Errorf("Requires = %T, want Top", sp.Requires)
	}
	if sp.Consumes != nil || sp.OnCooldown != nil {
		t.Errorf("unexpected costs or cooldown: %s", spell.Format(sp))
	}
}

func TestCompile_SourceOrder(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Spell "c" { on_cast = { Nothing } }
		Spell "a" { on_cast = { Nothing } }
		Spell "b" { on_cast = { Nothing } }
	`); err != nil {
		t.Fatal(err)
	}
	spells, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, sp := range spells {
		names = append(names, sp.Name)
	}
	if got := strings.Join(names, ","); got != "c,a,b" {
		t.Errorf("order = %s, want c,a,b", got)
	}
}

func TestCompile_ErrorNamesSpell(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`Spell "oops" { consumes = { Stacks("swarm", Top) } }`); err != nil {
		t.Fatal(err)
	}
	_, err := compile(coll)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"compiling spell oops", "consumes[1]", "expected discrete, got Top"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err, want)
		}
	}
}

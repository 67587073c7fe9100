package world

import (
	"testing"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/event"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/rng"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/spell"
)

func newSpace(seed int64) (*Space, *diag.MemorySink) {
	sink := diag.NewMemorySink()
	return New(DefaultConfig(), rng.New(seed), sink), sink
}

func TestPlayerEnter_UniqueTokens(t *testing.T) {
	s, _ := newSpace(1)
	seen := map[token.Token]bool{}
	for i := 0; i < 50; i++ {
		tok := s.PlayerEnter(geom.Point{X: float64(i)}, NewPlayer("p", 100, 100))
		if tok == token.Null {
			t.Fatal("PlayerEnter returned Null")
		}
		if seen[tok] {
			t.Fatalf("token %v assigned twice", tok)
		}
		seen[tok] = true
	}
	if n := s.Universe().Len(); n != 50 {
		t.Errorf("Universe = %d, want 50", n)
	}
}

func TestPlayerLeave(t *testing.T) {
	s, _ := newSpace(1)
	tok := s.PlayerEnter(geom.Point{X: 3, Y: 4}, NewPlayer("ann", 100, 50))
	p, ok := s.PlayerLeave(tok)
	if !ok || p.Name != "ann" || p.Position != (geom.Point{X: 3, Y: 4}) {
		t.Fatalf("PlayerLeave = %+v, %v", p, ok)
	}
	if s.Alive(tok) || len(s.Players()) != 0 {
		t.Error("player still indexed after leaving")
	}
	if _, ok := s.PlayerLeave(tok); ok {
		t.Error("second PlayerLeave should fail")
	}
}

func TestRetiredTokensHeldDuringEvaluation(t *testing.T) {
	s, _ := newSpace(2)
	tok := s.PlayerEnter(geom.Origin, NewPlayer("a", 10, 10))
	s.begin()
	s.PlayerLeave(tok)
	if !s.retired.Contains(tok) {
		t.Fatal("token freed mid-evaluation should be retired")
	}
	s.end()
	if s.retired.Contains(tok) {
		t.Error("retired tokens should clear when evaluation ends")
	}
}

func TestEvalDiscrete(t *testing.T) {
	s, _ := newSpace(3)
	ctx := event.New(token.Null)
	ctx.DefineDiscrete(0, 12)
	tests := []struct {
		name string
		d    spell.Discrete
		want int32
	}{
		{"const", spell.Const(17), 17},
		{"const negative", spell.Const(-5), -5},
		{"const saturates", spell.Const(-2147483648), -MaxValue},
		{"sum empty", spell.Sum{}, 0},
		{"sum single", spell.Sum{spell.Const(9)}, 9},
		{"sum", spell.Sum{spell.Const(2), spell.Const(3), spell.Neg{X: spell.Const(1)}}, 4},
		{"sum saturates", spell.Sum{spell.Const(MaxValue), spell.Const(MaxValue)}, MaxValue},
		{"mult empty", spell.Mult{}, 1},
		{"mult", spell.Mult{spell.Const(3), spell.Const(-4)}, -12},
		{"mult saturates", spell.Mult{spell.Const(100000), spell.Const(-100000)}, -MaxValue},
		{"div", spell.Div{Num: spell.Const(7), Den: spell.Const(2)}, 3},
		{"div negative", spell.Div{Num: spell.Const(-7), Den: spell.Const(2)}, -3},
		{"div zero", spell.Div{Num: spell.Const(5), Den: spell.Const(0)}, MaxValue},
		{"div zero negative", spell.Div{Num: spell.Const(-1), Den: spell.Const(0)}, -MaxValue},
		{"div zero of zero", spell.Div{Num: spell.Const(0), Den: spell.Const(0)}, 0},
		{"max", spell.Max{spell.Const(1), spell.Const(8), spell.Const(3)}, 8},
		{"min", spell.Min{spell.Const(1), spell.Const(8), spell.Const(-3)}, -3},
		{"max empty", spell.Max{}, 0},
		{"choose empty", spell.ChooseDiscrete{}, 0},
		{"choose single", spell.ChooseDiscrete{spell.Const(6)}, 6},
		{"load", spell.LoadDiscrete{Slot: 0}, 12},
		{"load unbound", spell.LoadDiscrete{Slot: 9}, 0},
		{"cardinality empty", spell.Cardinality{Set: spell.Universe{}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.EvalDiscrete(ctx, tt.d); got != tt.want {
				t.Errorf("EvalDiscrete(%s) = %d, want %d", spell.Format(tt.d), got, tt.want)
			}
		})
	}
}

func TestEvalDiscrete_Random(t *testing.T) {
	s, _ := newSpace(4)
	ctx := event.New(token.Null)
	for i := 0; i < 500; i++ {
		if v := s.EvalDiscrete(ctx, spell.Range{Lo: 5, Hi: -3}); v < -3 || v > 5 {
			t.Fatalf("Range = %d out of [-3,5]", v)
		}
		if v := s.EvalDiscrete(ctx, spell.WithinPercent{Value: 20, Percent: 0.5}); v < 10 || v > 30 {
			t.Fatalf("WithinPercent = %d out of [10,30]", v)
		}
	}
}

func TestEvalEntitySet(t *testing.T) {
	s, _ := newSpace(5)
	a := s.PlayerEnter(geom.Point{X: 0}, NewPlayer("a", 100, 100))
	b := s.PlayerEnter(geom.Point{X: 3}, NewPlayer("b", 100, 20))
	c := s.PlayerEnter(geom.Point{X: 30}, NewPlayer("c", 100, 100))
	ctx := event.ForCast(a, geom.Origin)
	shot := s.Spawn(ctx, &spell.ProjectileBlueprint{Lifetime: spell.Const(5)}, geom.Point{X: 1})

	tests := []struct {
		name string
		set  spell.EntitySet
		want token.Set
	}{
		{"universe", spell.Universe{}, token.NewSet(a, b, c, shot)},
		{"empty", spell.Empty{}, token.Set{}},
		{"humans", spell.IsHuman{}, token.NewSet(a, b, c)},
		{"projectiles", spell.IsProjectile{}, token.NewSet(shot)},
		{"all but caster", spell.AllBut{E: spell.Caster}, token.NewSet(b, c, shot)},
		{"enemies", spell.EnemiesOf{E: spell.Caster}, token.NewSet(b, c)},
		{"only", spell.Only{E: spell.Caster}, token.NewSet(a)},
		{"within range", spell.WithinRangeOf{E: spell.Caster, Radius: spell.Const(5)}, token.NewSet(a, b, shot)},
		{"and empty", spell.SetAnd{}, token.NewSet(a, b, c, shot)},
		{"or empty", spell.SetOr{}, token.Set{}},
		{"nand humans", spell.SetNand{spell.IsHuman{}}, token.NewSet(shot)},
		{"and", spell.SetAnd{spell.IsHuman{}, spell.WithinRangeOf{E: spell.Caster, Radius: spell.Const(5)}}, token.NewSet(a, b)},
		{"min mana", spell.HasMinResource{Resource: spell.Mana{Amount: spell.Const(50)}}, token.NewSet(a, c)},
		{"load unbound", spell.LoadSet{Slot: 3}, token.Set{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.EvalEntitySet(ctx, tt.set); !got.Equal(tt.want) {
				t.Errorf("EvalEntitySet(%s) = %v, want %v", spell.Format(tt.set), got, tt.want)
			}
		})
	}

	if n := s.EvalEntitySet(ctx, spell.AllBut{E: spell.Caster}).Len(); n != s.Universe().Len()-1 {
		t.Errorf("AllBut cardinality = %d, want Universe-1", n)
	}
}

func TestEvalEntity(t *testing.T) {
	s, _ := newSpace(6)
	a := s.PlayerEnter(geom.Point{X: 0}, NewPlayer("a", 100, 100))
	b := s.PlayerEnter(geom.Point{X: 3}, NewPlayer("b", 100, 100))
	c := s.PlayerEnter(geom.Point{X: 9}, NewPlayer("c", 100, 100))
	ctx := event.ForCast(a, geom.Point{X: 8})
	sorted := token.NewSet(a, b, c)

	if got := s.EvalEntity(ctx, spell.FirstOf{Set: spell.IsHuman{}}); got != sorted.First() {
		t.Errorf("FirstOf = %v, want %v", got, sorted.First())
	}
	if got := s.EvalEntity(ctx, spell.LastOf{Set: spell.IsHuman{}}); got != sorted.Last() {
		t.Errorf("LastOf = %v, want %v", got, sorted.Last())
	}
	if got := s.EvalEntity(ctx, spell.ClosestFrom{Set: spell.IsHuman{}, To: spell.Cursor}); got != c {
		t.Errorf("ClosestFrom cursor = %v, want %v", got, c)
	}
	if got := s.EvalEntity(ctx, spell.ChooseEntity{Set: spell.Empty{}}); got != token.Null {
		t.Errorf("Choose of empty = %v, want Null", got)
	}
	for i := 0; i < 20; i++ {
		if got := s.EvalEntity(ctx, spell.ChooseEntity{Set: spell.IsHuman{}}); !sorted.Contains(got) {
			t.Fatalf("Choose = %v, not a member", got)
		}
	}
}

func TestEvalLocationAndDirection(t *testing.T) {
	s, sink := newSpace(7)
	a := s.PlayerEnter(geom.Point{X: 2, Y: 2}, NewPlayer("a", 100, 100))
	ctx := event.ForCast(a, geom.Point{X: 4, Y: 2})

	mid := s.EvalLocation(ctx, spell.Midpoint{spell.AtEntity{E: spell.Caster}, spell.Cursor})
	if mid != (geom.Point{X: 3, Y: 2}) {
		t.Errorf("Midpoint = %v", mid)
	}
	if p := s.EvalLocation(ctx, spell.AtEntity{E: spell.LoadEntity{Slot: 5}}); p != geom.Origin {
		t.Errorf("AtEntity(unbound) = %v, want origin", p)
	}
	if len(sink.OfType(diag.UnboundSlot)) != 1 || len(sink.OfType(diag.NoPosition)) != 1 {
		t.Errorf("expected unbound and no-position diagnostics, got %v", sink.Events())
	}

	if h := s.EvalDirection(ctx, spell.Toward{To: spell.Cursor}, geom.Point{X: 2, Y: 2}); h != 0 {
		t.Errorf("Toward east = %v, want 0", h)
	}
	for i := 0; i < 100; i++ {
		h := s.EvalDirection(ctx, spell.WithinRadOf{Base: spell.ConstRad(1), Spread: -0.5}, geom.Origin)
		if h < 0.5 || h > 1.5 {
			t.Fatalf("WithinRadOf = %v out of [0.5,1.5]", h)
		}
		if h := s.EvalDirection(ctx, spell.BetweenRad{Lo: 2, Hi: 1}, geom.Origin); h < 1 || h > 2 {
			t.Fatalf("BetweenRad = %v out of [1,2]", h)
		}
	}
}

func TestEvalCondition(t *testing.T) {
	s, _ := newSpace(8)
	a := s.PlayerEnter(geom.Origin, NewPlayer("a", 100, 100))
	ctx := event.ForCast(a, geom.Origin)
	tests := []struct {
		name string
		c    spell.Condition
		want bool
	}{
		{"top", spell.Top{}, true},
		{"bottom", spell.Bottom{}, false},
		{"not top", spell.Nand{spell.Top{}}, false},
		{"nand none", spell.Nand{spell.Bottom{}, spell.Bottom{}}, true},
		{"and", spell.And{spell.Top{}, spell.Bottom{}}, false},
		{"or", spell.Or{spell.Bottom{}, spell.Top{}}, true},
		{"equals", spell.Equals{A: spell.Const(2), B: spell.Sum{spell.Const(1), spell.Const(1)}}, true},
		{"less", spell.LessThan{A: spell.Const(1), B: spell.Const(2)}, true},
		{"more", spell.MoreThan{A: spell.Const(1), B: spell.Const(2)}, false},
		{"contains", spell.SetCmp{Cmp: spell.Contains{Set: spell.IsHuman{}, E: spell.Caster}}, true},
		{"subset", spell.SetCmp{Cmp: spell.Subset{A: spell.IsHuman{}, B: spell.Universe{}}}, true},
		{"superset", spell.SetCmp{Cmp: spell.Superset{A: spell.Empty{}, B: spell.IsHuman{}}}, false},
		{"equal", spell.SetCmp{Cmp: spell.SetEqual{A: spell.IsHuman{}, B: spell.Universe{}}}, true},
		{"cmp nand", spell.SetCmp{Cmp: spell.CmpNand{spell.SetEqual{A: spell.Empty{}, B: spell.IsProjectile{}}}}, false},
	}
	for _, tt := range tests {
		if got := s.EvalCondition(ctx, tt.c); got != tt.want {
			t.Errorf("%s: EvalCondition = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResourceGrantClamps(t *testing.T) {
	s, sink := newSpace(9)
	a := s.PlayerEnter(geom.Origin, NewPlayer("a", 100, 50))
	ctx := event.ForCast(a, geom.Origin)
	s.Execute(ctx, []spell.Instruction{
		spell.AddResource{E: spell.Caster, Resource: spell.Mana{Amount: spell.Const(500)}},
		spell.AddResource{E: spell.Caster, Resource: spell.Health{Amount: spell.Const(-500)}},
		spell.AddResource{E: spell.Caster, Resource: spell.BuffStacks{Buff: buff.Cold, Amount: spell.Const(3)}},
		spell.AddResource{E: spell.Caster, Resource: spell.BuffStacks{Buff: buff.Cold, Amount: spell.Const(-1)}},
	})
	p, _ := s.Player(a)
	if p.Mana != 50 || p.Health != 0 {
		t.Errorf("mana/health = %d/%d, want 50/0", p.Mana, p.Health)
	}
	if st := p.Buffs[buff.Cold]; st.Count != 2 || st.Duration != s.Config().BuffDuration {
		t.Errorf("cold = %+v", st)
	}
	if len(sink.OfType(diag.PlayerDowned)) != 1 {
		t.Error("expected a player_downed diagnostic")
	}
}

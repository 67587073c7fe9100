// Package loader loads Lua spellbooks into spell trees at load time.
// The Lua VM is discarded after loading, so no Lua runs at play time.
package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/nathoo/spellcore/engine/buff"
	"github.com/nathoo/spellcore/spell"
	lua "github.com/yuin/gopher-lua"
)

// rawSpell holds a spell table before compilation.
type rawSpell struct {
	name  string
	table *lua.LTable
	order int
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// node splits a constructor table into its tag and itself.
func node(v lua.LValue) (string, *lua.LTable) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return "", nil
	}
	return getString(tbl, "type"), tbl
}

// compiler turns constructor tables into spell nodes.
type compiler struct {
	// One blueprint per Projectile table.
	blueprints map[*lua.LTable]*spell.ProjectileBlueprint
}

func newCompiler() *compiler {
	return &compiler{blueprints: map[*lua.LTable]*spell.ProjectileBlueprint{}}
}

// compile converts all collected spell tables, in source order.
func compile(coll *collector) ([]*spell.Spell, error) {
	raws := append([]rawSpell(nil), coll.spells...)
	sort.SliceStable(raws, func(i, j int) bool { return raws[i].order < raws[j].order })

	c := newCompiler()
	out := make([]*spell.Spell, 0, len(raws))
	for _, raw := range raws {
		sp, err := c.spell(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling spell %s: %w", raw.name, err)
		}
		out = append(out, sp)
	}
	return out, nil
}

func (c *compiler) spell(raw rawSpell) (*spell.Spell, error) {
	tbl := raw.table
	sp := &spell.Spell{Name: raw.name, Requires: spell.Top{}}
	var err error
	if sp.OnCast, err = c.instructions(tbl.RawGetString("on_cast"), "on_cast"); err != nil {
		return nil, err
	}
	if sp.OnCooldown, err = c.instructions(tbl.RawGetString("on_cooldown"), "on_cooldown"); err != nil {
		return nil, err
	}
	if v := tbl.RawGetString("requires"); v != lua.LNil {
		if sp.Requires, err = c.condition(v); err != nil {
			return nil, fmt.Errorf("requires: %w", err)
		}
	}
	if costs := getTable(tbl, "consumes"); costs != nil {
		for i := 1; i <= costs.MaxN(); i++ {
			r, err := c.resource(costs.RawGetInt(i))
			if err != nil {
				return nil, fmt.Errorf("consumes[%d]: %w", i, err)
			}
			sp.Consumes = append(sp.Consumes, r)
		}
	}
	return sp, nil
}

func (c *compiler) blueprint(v lua.LValue) (*spell.ProjectileBlueprint, error) {
	typ, tbl := node(v)
	if typ != "Projectile" {
		return nil, fmt.Errorf("expected Projectile{}, got %s", describe(v))
	}
	if bp, ok := c.blueprints[tbl]; ok {
		return bp, nil
	}
	bp := &spell.ProjectileBlueprint{}
	// Registered first so a projectile that spawns itself terminates.
	c.blueprints[tbl] = bp

	var err error
	if bp.OnCreate, err = c.instructions(tbl.RawGetString("on_create"), "on_create"); err != nil {
		return nil, err
	}
	if bp.OnCollision, err = c.instructions(tbl.RawGetString("on_collision"), "on_collision"); err != nil {
		return nil, err
	}
	if bp.OnDestroy, err = c.instructions(tbl.RawGetString("on_destroy"), "on_destroy"); err != nil {
		return nil, err
	}
	bp.CollidesWith = spell.Empty{}
	if v := tbl.RawGetString("collides_with"); v != lua.LNil {
		if bp.CollidesWith, err = c.entitySet(v); err != nil {
			return nil, fmt.Errorf("collides_with: %w", err)
		}
	}
	bp.Lifetime = spell.Const(DefaultLifetime)
	if v := tbl.RawGetString("lifetime"); v != lua.LNil {
		if bp.Lifetime, err = c.discrete(v); err != nil {
			return nil, fmt.Errorf("lifetime: %w", err)
		}
	}
	return bp, nil
}

// DefaultLifetime is the lifetime in seconds of a Projectile{} that does
// not set one.
const DefaultLifetime = 3

func (c *compiler) instructions(v lua.LValue, where string) ([]spell.Instruction, error) {
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of instructions, got %s", where, describe(v))
	}
	if typ := getString(tbl, "type"); typ != "" {
		return nil, fmt.Errorf("%s: expected a list of instructions, got a single %s", where, typ)
	}
	out := make([]spell.Instruction, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		in, err := c.instruction(tbl.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", where, i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (c *compiler) instruction(v lua.LValue) (spell.Instruction, error) {
	typ, tbl := node(v)
	switch typ {
	case "Define":
		def, err := c.definition(tbl.RawGetInt(1))
		return spell.Define{Def: def}, err
	case "DefineSet", "DefineEntity", "DefineLocation", "DefineDiscrete":
		def, err := c.definition(v)
		return spell.Define{Def: def}, err
	case "If":
		cond, err := c.condition(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		then, err := c.instructions(tbl.RawGetInt(2), "then")
		if err != nil {
			return nil, err
		}
		els, err := c.instructions(tbl.RawGetInt(3), "else")
		return spell.ITE{If: cond, Then: then, Else: els}, err
	case "CallWith":
		def, err := c.definition(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		body, err := c.instructions(tbl.RawGetInt(2), "body")
		return spell.CallWith{Def: def, Body: body}, err
	case "ForEachAs":
		slot, err := slotArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		set, err := c.entitySet(tbl.RawGetInt(2))
		if err != nil {
			return nil, err
		}
		body, err := c.instructions(tbl.RawGetInt(3), "body")
		return spell.ForEachAs{Slot: spell.ESlot(slot), Set: set, Body: body}, err
	case "Destroy":
		e, err := c.entity(tbl.RawGetInt(1))
		return spell.Destroy{E: e}, err
	case "DestroyWithoutEvent":
		e, err := c.entity(tbl.RawGetInt(1))
		return spell.DestroyWithoutEvent{E: e}, err
	case "MoveEntity":
		e, err := c.entity(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		to, err := c.location(tbl.RawGetInt(2))
		return spell.MoveEntity{E: e, To: to}, err
	case "AddResource":
		e, err := c.entity(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		r, err := c.resource(tbl.RawGetInt(2))
		return spell.AddResource{E: e, Resource: r}, err
	case "AddVelocity":
		e, err := c.entity(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		dir, err := c.direction(tbl.RawGetInt(2))
		if err != nil {
			return nil, err
		}
		speed, err := c.discrete(tbl.RawGetInt(3))
		return spell.AddVelocity{E: e, Dir: dir, Speed: speed}, err
	case "SpawnAt":
		bp, err := c.blueprint(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		at, err := c.location(tbl.RawGetInt(2))
		return spell.SpawnProjectileAt{Blueprint: bp, At: at}, err
	case "Nothing":
		return spell.Nothing{}, nil
	}
	return nil, unexpected("instruction", v)
}

func (c *compiler) definition(v lua.LValue) (spell.Definition, error) {
	typ, tbl := node(v)
	switch typ {
	case "DefineSet", "DefineEntity", "DefineLocation", "DefineDiscrete":
	default:
		return nil, unexpected("definition", v)
	}
	slot, err := slotArg(tbl, 1)
	if err != nil {
		return nil, err
	}
	arg := tbl.RawGetInt(2)
	switch typ {
	case "DefineSet":
		set, err := c.entitySet(arg)
		return spell.DefineSet{Slot: spell.ESetSlot(slot), Set: set}, err
	case "DefineEntity":
		e, err := c.entity(arg)
		return spell.DefineEntity{Slot: spell.ESlot(slot), E: e}, err
	case "DefineLocation":
		at, err := c.location(arg)
		return spell.DefineLocation{Slot: spell.LSlot(slot), At: at}, err
	default:
		x, err := c.discrete(arg)
		return spell.DefineDiscrete{Slot: spell.DSlot(slot), X: x}, err
	}
}

func (c *compiler) discrete(v lua.LValue) (spell.Discrete, error) {
	if n, ok := v.(lua.LNumber); ok {
		x, err := int32Of(n)
		return spell.Const(x), err
	}
	typ, tbl := node(v)
	switch typ {
	case "Const":
		n, err := numberArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		x, err := int32Of(lua.LNumber(n))
		return spell.Const(x), err
	case "Range":
		lo, err := intArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		hi, err := intArg(tbl, 2)
		return spell.Range{Lo: lo, Hi: hi}, err
	case "WithinPercent":
		x, err := intArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		pct, err := numberArg(tbl, 2)
		return spell.WithinPercent{Value: x, Percent: pct}, err
	case "Div":
		num, err := c.discrete(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		den, err := c.discrete(tbl.RawGetInt(2))
		return spell.Div{Num: num, Den: den}, err
	case "Neg":
		x, err := c.discrete(tbl.RawGetInt(1))
		return spell.Neg{X: x}, err
	case "Sum", "Mult", "Max", "Min", "ChooseDiscrete":
		xs, err := items(tbl, c.discrete)
		if err != nil {
			return nil, err
		}
		switch typ {
		case "Sum":
			return spell.Sum(xs), nil
		case "Mult":
			return spell.Mult(xs), nil
		case "Max":
			return spell.Max(xs), nil
		case "Min":
			return spell.Min(xs), nil
		}
		return spell.ChooseDiscrete(xs), nil
	case "CountStacks", "CountDur":
		b, err := buffArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		of, err := c.entity(tbl.RawGetInt(2))
		if typ == "CountDur" {
			return spell.CountDur{Buff: b, Of: of}, err
		}
		return spell.CountStacks{Buff: b, Of: of}, err
	case "Cardinality":
		set, err := c.entitySet(tbl.RawGetInt(1))
		return spell.Cardinality{Set: set}, err
	case "LoadDiscrete":
		slot, err := slotArg(tbl, 1)
		return spell.LoadDiscrete{Slot: spell.DSlot(slot)}, err
	}
	return nil, unexpected("discrete", v)
}

func (c *compiler) condition(v lua.LValue) (spell.Condition, error) {
	if b, ok := v.(lua.LBool); ok {
		if b {
			return spell.Top{}, nil
		}
		return spell.Bottom{}, nil
	}
	typ, tbl := node(v)
	switch typ {
	case "Top":
		return spell.Top{}, nil
	case "Bottom":
		return spell.Bottom{}, nil
	case "Nand", "And", "Or":
		cs, err := items(tbl, c.condition)
		if err != nil {
			return nil, err
		}
		switch typ {
		case "Nand":
			return spell.Nand(cs), nil
		case "And":
			return spell.And(cs), nil
		}
		return spell.Or(cs), nil
	case "Equals", "LessThan", "MoreThan":
		a, err := c.discrete(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		b, err := c.discrete(tbl.RawGetInt(2))
		if err != nil {
			return nil, err
		}
		switch typ {
		case "Equals":
			return spell.Equals{A: a, B: b}, nil
		case "LessThan":
			return spell.LessThan{A: a, B: b}, nil
		}
		return spell.MoreThan{A: a, B: b}, nil
	case "SetCmp":
		cmp, err := c.setCmp(tbl.RawGetInt(1))
		return spell.SetCmp{Cmp: cmp}, err
	case "CmpNand", "CmpAnd", "CmpOr", "Subset", "Superset", "SetEqual", "Contains":
		cmp, err := c.setCmp(v)
		return spell.SetCmp{Cmp: cmp}, err
	}
	return nil, unexpected("condition", v)
}

func (c *compiler) entitySet(v lua.LValue) (spell.EntitySet, error) {
	typ, tbl := node(v)
	switch typ {
	case "SetNand", "SetAnd", "SetOr":
		ss, err := items(tbl, c.entitySet)
		if err != nil {
			return nil, err
		}
		switch typ {
		case "SetNand":
			return spell.SetNand(ss), nil
		case "SetAnd":
			return spell.SetAnd(ss), nil
		}
		return spell.SetOr(ss), nil
	case "Only", "EnemiesOf", "AllBut":
		e, err := c.entity(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		switch typ {
		case "Only":
			return spell.Only{E: e}, nil
		case "EnemiesOf":
			return spell.EnemiesOf{E: e}, nil
		}
		return spell.AllBut{E: e}, nil
	case "LoadSet":
		slot, err := slotArg(tbl, 1)
		return spell.LoadSet{Slot: spell.ESetSlot(slot)}, err
	case "WithinRangeOf":
		e, err := c.entity(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		r, err := c.discrete(tbl.RawGetInt(2))
		return spell.WithinRangeOf{E: e, Radius: r}, err
	case "HasMinResource":
		r, err := c.resource(tbl.RawGetInt(1))
		return spell.HasMinResource{Resource: r}, err
	case "IsHuman":
		return spell.IsHuman{}, nil
	case "IsProjectile":
		return spell.IsProjectile{}, nil
	case "Empty":
		return spell.Empty{}, nil
	case "Universe":
		return spell.Universe{}, nil
	}
	return nil, unexpected("entity set", v)
}

func (c *compiler) setCmp(v lua.LValue) (spell.EntitySetCmp, error) {
	typ, tbl := node(v)
	switch typ {
	case "CmpNand", "CmpAnd", "CmpOr":
		cs, err := items(tbl, c.setCmp)
		if err != nil {
			return nil, err
		}
		switch typ {
		case "CmpNand":
			return spell.CmpNand(cs), nil
		case "CmpAnd":
			return spell.CmpAnd(cs), nil
		}
		return spell.CmpOr(cs), nil
	case "Subset", "Superset", "SetEqual":
		a, err := c.entitySet(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		b, err := c.entitySet(tbl.RawGetInt(2))
		if err != nil {
			return nil, err
		}
		switch typ {
		case "Subset":
			return spell.Subset{A: a, B: b}, nil
		case "Superset":
			return spell.Superset{A: a, B: b}, nil
		}
		return spell.SetEqual{A: a, B: b}, nil
	case "Contains":
		set, err := c.entitySet(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		e, err := c.entity(tbl.RawGetInt(2))
		return spell.Contains{Set: set, E: e}, err
	}
	return nil, unexpected("set comparison", v)
}

func (c *compiler) entity(v lua.LValue) (spell.Entity, error) {
	typ, tbl := node(v)
	switch typ {
	case "LoadEntity":
		slot, err := slotArg(tbl, 1)
		return spell.LoadEntity{Slot: spell.ESlot(slot)}, err
	case "FirstOf", "ChooseEntity", "LastOf":
		set, err := c.entitySet(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		switch typ {
		case "FirstOf":
			return spell.FirstOf{Set: set}, nil
		case "ChooseEntity":
			return spell.ChooseEntity{Set: set}, nil
		}
		return spell.LastOf{Set: set}, nil
	case "ClosestFrom":
		set, err := c.entitySet(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		to, err := c.location(tbl.RawGetInt(2))
		return spell.ClosestFrom{Set: set, To: to}, err
	}
	return nil, unexpected("entity", v)
}

func (c *compiler) location(v lua.LValue) (spell.Location, error) {
	typ, tbl := node(v)
	switch typ {
	case "AtEntity":
		e, err := c.entity(tbl.RawGetInt(1))
		return spell.AtEntity{E: e}, err
	case "Midpoint", "ChooseLocation":
		ls, err := items(tbl, c.location)
		if err != nil {
			return nil, err
		}
		if typ == "Midpoint" {
			return spell.Midpoint(ls), nil
		}
		return spell.ChooseLocation(ls), nil
	case "LoadLocation":
		slot, err := slotArg(tbl, 1)
		return spell.LoadLocation{Slot: spell.LSlot(slot)}, err
	}
	return nil, unexpected("location", v)
}

func (c *compiler) direction(v lua.LValue) (spell.Direction, error) {
	if n, ok := v.(lua.LNumber); ok {
		return spell.ConstRad(float64(n)), nil
	}
	typ, tbl := node(v)
	switch typ {
	case "Toward":
		to, err := c.location(tbl.RawGetInt(1))
		return spell.Toward{To: to}, err
	case "TowardFrom":
		from, err := c.location(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		to, err := c.location(tbl.RawGetInt(2))
		return spell.Toward{From: from, To: to}, err
	case "Rad":
		x, err := numberArg(tbl, 1)
		return spell.ConstRad(x), err
	case "BetweenRad":
		lo, err := numberArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		hi, err := numberArg(tbl, 2)
		return spell.BetweenRad{Lo: lo, Hi: hi}, err
	case "ChooseDirection":
		ds, err := items(tbl, c.direction)
		return spell.ChooseDirection(ds), err
	case "WithinRadOf":
		base, err := c.direction(tbl.RawGetInt(1))
		if err != nil {
			return nil, err
		}
		spread, err := numberArg(tbl, 2)
		return spell.WithinRadOf{Base: base, Spread: spread}, err
	}
	return nil, unexpected("direction", v)
}

func (c *compiler) resource(v lua.LValue) (spell.Resource, error) {
	typ, tbl := node(v)
	switch typ {
	case "Mana", "Health":
		x, err := c.discrete(tbl.RawGetInt(1))
		if typ == "Mana" {
			return spell.Mana{Amount: x}, err
		}
		return spell.Health{Amount: x}, err
	case "Stacks":
		b, err := buffArg(tbl, 1)
		if err != nil {
			return nil, err
		}
		x, err := c.discrete(tbl.RawGetInt(2))
		return spell.BuffStacks{Buff: b, Amount: x}, err
	}
	return nil, unexpected("resource", v)
}

// items compiles the "items" list of a list constructor.
func items[T any](tbl *lua.LTable, each func(lua.LValue) (T, error)) ([]T, error) {
	list := getTable(tbl, "items")
	if list == nil {
		return nil, nil
	}
	out := make([]T, 0, list.MaxN())
	for i := 1; i <= list.MaxN(); i++ {
		x, err := each(list.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, x)
	}
	return out, nil
}

func numberArg(tbl *lua.LTable, i int) (float64, error) {
	n, ok := tbl.RawGetInt(i).(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number, got %s", getString(tbl, "type"), i, describe(tbl.RawGetInt(i)))
	}
	return float64(n), nil
}

func intArg(tbl *lua.LTable, i int) (int32, error) {
	n, err := numberArg(tbl, i)
	if err != nil {
		return 0, err
	}
	return int32Of(lua.LNumber(n))
}

func int32Of(n lua.LNumber) (int32, error) {
	f := float64(n)
	if f != math.Trunc(f) || f > math.MaxInt32 || f < -math.MaxInt32 {
		return 0, fmt.Errorf("%v is not a whole number in range", f)
	}
	return int32(f), nil
}

func slotArg(tbl *lua.LTable, i int) (uint8, error) {
	n, err := numberArg(tbl, i)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("%s: slot %v out of range 0..255", getString(tbl, "type"), n)
	}
	return uint8(n), nil
}

func buffArg(tbl *lua.LTable, i int) (buff.Buff, error) {
	s, ok := tbl.RawGetInt(i).(lua.LString)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a buff name", getString(tbl, "type"), i)
	}
	b, ok := buff.Parse(string(s))
	if !ok {
		return 0, fmt.Errorf("%s: unknown buff %q", getString(tbl, "type"), string(s))
	}
	return b, nil
}

func unexpected(want string, v lua.LValue) error {
	return fmt.Errorf("expected %s, got %s", want, describe(v))
}

func describe(v lua.LValue) string {
	if typ, _ := node(v); typ != "" {
		return typ
	}
	if v == lua.LNil {
		return "nil"
	}
	return v.Type().String()
}

// sortedLuaFiles returns .lua files with book.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var bookFile string
	var others []string
	for _, f := range files {
		if f == "book.lua" {
			bookFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if bookFile != "" {
		return append([]string{bookFile}, others...)
	}
	return others
}

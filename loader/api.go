package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// Node constructors by shape. Every constructor returns a table tagged
// with its name in the "type" field; compile turns the tables into spell
// nodes.
var (
	// Name(a, b, ...) stores its arguments positionally.
	fixedNodes = map[string]int{
		"Const": 1, "Range": 2, "WithinPercent": 2, "Div": 2, "Neg": 1,
		"CountStacks": 2, "CountDur": 2, "Cardinality": 1, "LoadDiscrete": 1,

		"Equals": 2, "LessThan": 2, "MoreThan": 2, "SetCmp": 1,

		"Only": 1, "LoadSet": 1, "WithinRangeOf": 2, "HasMinResource": 1,
		"EnemiesOf": 1, "AllBut": 1,

		"Subset": 2, "Superset": 2, "SetEqual": 2, "Contains": 2,

		"LoadEntity": 1, "FirstOf": 1, "ChooseEntity": 1, "ClosestFrom": 2, "LastOf": 1,

		"AtEntity": 1, "LoadLocation": 1,

		"Toward": 1, "TowardFrom": 2, "Rad": 1, "BetweenRad": 2, "WithinRadOf": 2,

		"Mana": 1, "Health": 1, "Stacks": 2,

		"DefineSet": 2, "DefineEntity": 2, "DefineLocation": 2, "DefineDiscrete": 2,

		"Define": 1, "If": 3, "CallWith": 2, "ForEachAs": 3, "Destroy": 1,
		"DestroyWithoutEvent": 1, "MoveEntity": 2, "AddResource": 2,
		"AddVelocity": 3, "SpawnAt": 2,
	}

	// Name{...} stores its list under "items".
	listNodes = []string{
		"Sum", "Mult", "Max", "Min", "ChooseDiscrete",
		"Nand", "And", "Or",
		"SetNand", "SetAnd", "SetOr",
		"CmpNand", "CmpAnd", "CmpOr",
		"Midpoint", "ChooseLocation",
		"ChooseDirection",
	}

	// Name is a constant.
	unitNodes = []string{
		"Top", "Bottom",
		"IsHuman", "IsProjectile", "Empty", "Universe",
		"Nothing",
	}
)

// Well-known slot loads.
var slotGlobals = []struct {
	name string
	typ  string
	slot int
}{
	{"Caster", "LoadEntity", 0},
	{"This", "LoadEntity", 0},
	{"Owner", "LoadEntity", 1},
	{"Other", "LoadEntity", 2},
	{"Cursor", "LoadLocation", 0},
	{"Target", "LoadLocation", 0},
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerNodes(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Spell "name" { ... } is curried: Spell("name") returns a function
	// that takes the spell table.
	L.SetGlobal("Spell", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.spells = append(coll.spells, rawSpell{
				name:  name,
				table: tbl,
				order: coll.nextSourceOrder(),
			})
			return 0
		}))
		return 1
	}))

	// Projectile { ... } tags and returns its table. The same table
	// spawned twice yields one shared blueprint.
	L.SetGlobal("Projectile", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("type", lua.LString("Projectile"))
		L.Push(tbl)
		return 1
	}))
}

func registerNodes(L *lua.LState) {
	for name, arity := range fixedNodes {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(name))
			for i := 1; i <= arity; i++ {
				tbl.RawSetInt(i, L.Get(i))
			}
			L.Push(tbl)
			return 1
		}))
	}

	for _, name := range listNodes {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			items := L.OptTable(1, L.NewTable())
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(name))
			tbl.RawSetString("items", items)
			L.Push(tbl)
			return 1
		}))
	}

	for _, name := range unitNodes {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(name))
		L.SetGlobal(name, tbl)
	}

	for _, g := range slotGlobals {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(g.typ))
		tbl.RawSetInt(1, lua.LNumber(g.slot))
		L.SetGlobal(g.name, tbl)
	}
}

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/spellcore/spell"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	spells []rawSpell
	order  int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Book is a loaded, validated set of spells.
type Book struct {
	Spells   []*spell.Spell // source order
	Warnings []string
	byName   map[string]*spell.Spell
}

func newBook(spells []*spell.Spell) *Book {
	b := &Book{Spells: spells, byName: make(map[string]*spell.Spell, len(spells))}
	for _, sp := range spells {
		b.byName[sp.Name] = sp
	}
	return b
}

// Spell returns the spell with the given name.
func (b *Book) Spell(name string) (*spell.Spell, bool) {
	sp, ok := b.byName[name]
	return sp, ok
}

// Names returns the spell names in source order.
func (b *Book) Names() []string {
	out := make([]string, len(b.Spells))
	for i, sp := range b.Spells {
		out[i] = sp.Name
	}
	return out
}

// Builtin returns a book of the built-in spells, sorted by name.
func Builtin() *Book {
	canon := spell.Canonical()
	names := make([]string, 0, len(canon))
	for name := range canon {
		names = append(names, name)
	}
	sort.Strings(names)
	spells := make([]*spell.Spell, len(names))
	for i, name := range names {
		spells[i] = canon[name]()
	}
	return newBook(spells)
}

// Load reads all .lua files from dir, compiles them into spells,
// validates slot scoping, and returns the immutable Book. The Lua VM is
// discarded after loading.
func Load(dir string) (*Book, error) {
	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spellbook directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: book.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	return run(func(L *lua.LState) error {
		for _, f := range luaFiles {
			if err := L.DoFile(filepath.Join(dir, f)); err != nil {
				return fmt.Errorf("executing %s: %w", f, err)
			}
		}
		return nil
	})
}

// LoadString compiles a single chunk of spellbook source.
func LoadString(name, src string) (*Book, error) {
	return run(func(L *lua.LState) error {
		fn, err := L.Load(strings.NewReader(src), name)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return fmt.Errorf("executing %s: %w", name, err)
		}
		return nil
	})
}

// run executes source in a fresh sandboxed VM, then compiles and
// validates what it defined.
func run(exec func(L *lua.LState) error) (*Book, error) {
	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	if err := exec(L); err != nil {
		return nil, err
	}
	if len(coll.spells) == 0 {
		return nil, fmt.Errorf("no Spell definitions found")
	}

	spells, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling spellbook: %w", err)
	}

	warnings, err := validate(spells)
	if err != nil {
		return nil, err
	}
	b := newBook(spells)
	b.Warnings = warnings
	return b, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Spells must be deterministic; randomness belongs to the world.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

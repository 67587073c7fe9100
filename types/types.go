// Package types defines the shared data structures passed between the
// spellcore engine and its hosts. It holds type definitions only.
package types

import "github.com/nathoo/spellcore/engine/diag"

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional, the words after "at"
}

// Result is the output of a single engine step.
type Result struct {
	Output []string
	Events []diag.Event // diagnostics reported while the step ran
	Ticks  int          // world ticks the step advanced
}

// PlayerStatus is the read-only summary a host shows for one player.
type PlayerStatus struct {
	Name      string
	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32
	X, Y      float64
	Buffs     []string // "chilled x2 (3.1s)"
	Down      bool
}

// Status is the snapshot a status bar draws after each step.
type Status struct {
	Tick        uint64
	Player      PlayerStatus
	Cursor      [2]float64
	Opponents   []PlayerStatus
	Projectiles []ProjectileStatus
}

// ProjectileStatus is one projectile in flight. Heading is in degrees,
// counterclockwise from the +x axis, in [0, 360).
type ProjectileStatus struct {
	X, Y    float64
	Speed   float64
	Heading float64
}

package engine

import (
	"testing"

	"github.com/nathoo/spellcore/engine/bots"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/world"
)

func TestNarrate(t *testing.T) {
	events := []diag.Event{
		{Type: diag.PlayerDowned, Severity: diag.SeverityInfo, Message: "imp is down"},
		{Type: diag.EntityDestroyed, Severity: diag.SeverityDebug, Message: "projectile destroyed"},
		{Type: diag.EntityDestroyed, Severity: diag.SeverityInfo, Message: "player imp destroyed"},
		{Type: diag.CastOK, Severity: diag.SeverityInfo, Message: "fireball"},
		{Type: diag.UnboundSlot, Severity: diag.SeverityWarn, Message: "E_4 read before definition"},
	}
	got := narrate(events)
	want := []string{"Imp is down.", "Player imp destroyed."}
	if len(got) != len(want) {
		t.Fatalf("narrate = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBotMessage(t *testing.T) {
	e := newTestEngine(t, testConfig())
	imp := addDummy(e, "imp", geom.Point{X: 1, Y: 1})

	tests := []struct {
		action bots.Action
		want   string
	}{
		{bots.Action{Bot: "imp", Spell: "fireball", Target: e.Player, Result: world.CastOK}, "imp casts fireball at you."},
		{bots.Action{Bot: "ogre", Spell: "swarm", Target: imp, Result: world.CastOK}, "ogre casts swarm at imp."},
		{bots.Action{Bot: "imp", Spell: "fireball", Result: world.CastDenied}, "imp tries to cast fireball but cannot."},
		{bots.Action{Bot: "imp", Spell: "swarm", Result: world.CastInsufficient}, "imp is too spent to cast swarm."},
	}
	for _, tt := range tests {
		if got := e.botMessage(tt.action); got != tt.want {
			t.Errorf("botMessage = %q, want %q", got, tt.want)
		}
	}
}

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/spellcore/engine/bots"
	"github.com/nathoo/spellcore/engine/diag"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/resolve"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// cast resolves the spell and the optional target and casts it. The bool
// reports whether a cast was attempted, which costs the player a tick.
func (e *Engine) cast(intent types.Intent) ([]string, bool) {
	if intent.Object == "" {
		return []string{"Cast what?"}, false
	}
	p := e.self()
	idx, err := resolve.Spell(p.Spells, intent.Object)
	if err != nil {
		return []string{err.Error()}, false
	}
	if intent.Target != "" {
		at, err := e.point(intent.Target)
		if err != nil {
			return []string{err.Error()}, false
		}
		e.Cursor = at
	}

	name := p.Spells[idx].Name
	res := e.Space.PlayerCast(e.Player, idx, e.Cursor)
	switch res {
	case world.CastOK:
		return []string{fmt.Sprintf("You cast %s at %s.", name, e.Cursor)}, true
	case world.CastDenied:
		return []string{fmt.Sprintf("You can't cast %s right now.", name)}, true
	case world.CastInsufficient:
		return []string{fmt.Sprintf("You can't afford %s.", name)}, true
	default:
		return []string{"You don't know that spell."}, false
	}
}

// point reads a target as coordinates, falling back to a player's name.
func (e *Engine) point(text string) (geom.Point, error) {
	at, perr := resolve.Point(text)
	if perr == nil {
		return at, nil
	}
	t, err := resolve.Player(e.Space, text)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			return geom.Point{}, fmt.Errorf("aim where? %q is neither a point nor a player", text)
		}
		return geom.Point{}, err
	}
	at, _ = e.Space.Position(t)
	return at, nil
}

func (e *Engine) botMessage(a bots.Action) string {
	target := e.nameOf(a.Target)
	switch a.Result {
	case world.CastOK:
		return fmt.Sprintf("%s casts %s at %s.", a.Bot, a.Spell, target)
	case world.CastDenied:
		return fmt.Sprintf("%s tries to cast %s but cannot.", a.Bot, a.Spell)
	case world.CastInsufficient:
		return fmt.Sprintf("%s is too spent to cast %s.", a.Bot, a.Spell)
	default:
		return fmt.Sprintf("%s fumbles.", a.Bot)
	}
}

// nameOf is how output refers to a token.
func (e *Engine) nameOf(t token.Token) string {
	if t == e.Player {
		return "you"
	}
	if p, ok := e.Space.Player(t); ok {
		return p.Name
	}
	return t.String()
}

// narrate turns the world events a player should hear about into lines.
func narrate(events []diag.Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Severity < diag.SeverityInfo {
			continue
		}
		switch ev.Type {
		case diag.PlayerDowned, diag.EntityDestroyed:
			out = append(out, sentence(ev.Message))
		}
	}
	return out
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

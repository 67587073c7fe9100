package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/config"
	"github.com/nathoo/spellcore/engine/generate"
	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/resolve"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/spell"
	"github.com/nathoo/spellcore/types"
)

// prettyWidth is the line width spell listings wrap at.
const prettyWidth = 72

// defaultBotEvery is the cast interval of bots spawned without a config entry.
const defaultBotEvery = 20

// Status summarizes the arena for a status bar.
func (e *Engine) Status() types.Status {
	st := types.Status{
		Tick:   e.Space.TickCount(),
		Cursor: [2]float64{e.Cursor.X, e.Cursor.Y},
		Player: types.PlayerStatus{Name: e.Config.Player.Name, Down: true},
	}
	for _, v := range e.Space.View() {
		if v.Projectile {
			st.Projectiles = append(st.Projectiles, projectileStatus(v))
			continue
		}
		ps := playerStatus(v)
		if v.Token == e.Player {
			st.Player = ps
		} else {
			st.Opponents = append(st.Opponents, ps)
		}
	}
	return st
}

func projectileStatus(v world.EntityView) types.ProjectileStatus {
	deg := v.Velocity.Heading() * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return types.ProjectileStatus{
		X:       v.Position.X,
		Y:       v.Position.Y,
		Speed:   v.Velocity.Speed(),
		Heading: deg,
	}
}

func playerStatus(v world.EntityView) types.PlayerStatus {
	ps := types.PlayerStatus{
		Name:      v.Name,
		Health:    v.Health,
		MaxHealth: v.MaxHealth,
		Mana:      v.Mana,
		MaxMana:   v.MaxMana,
		X:         v.Position.X,
		Y:         v.Position.Y,
		Down:      v.Health <= 0,
	}
	for _, b := range v.Buffs {
		ps.Buffs = append(ps.Buffs, fmt.Sprintf("%s x%d (%.1fs)", b.Buff, b.Count, b.Remaining))
	}
	return ps
}

// FormatPlayer renders one status line.
func FormatPlayer(ps types.PlayerStatus) string {
	line := fmt.Sprintf("%s at (%.1f,%.1f) hp %d/%d mp %d/%d",
		ps.Name, ps.X, ps.Y, ps.Health, ps.MaxHealth, ps.Mana, ps.MaxMana)
	if len(ps.Buffs) > 0 {
		line += " [" + strings.Join(ps.Buffs, ", ") + "]"
	}
	if ps.Down {
		line += " DOWN"
	}
	return line
}

// FormatProjectile renders one projectile line.
func FormatProjectile(ps types.ProjectileStatus) string {
	line := fmt.Sprintf("projectile at (%.1f,%.1f)", ps.X, ps.Y)
	if ps.Speed == 0 {
		return line + " at rest"
	}
	return line + fmt.Sprintf(" moving %.1f heading %.0f°", ps.Speed, ps.Heading)
}

func (e *Engine) look() []string {
	st := e.Status()
	out := []string{fmt.Sprintf("Tick %d. Aiming at (%.1f,%.1f).", st.Tick, st.Cursor[0], st.Cursor[1])}
	if e.self() == nil {
		out = append(out, "You are gone from the arena.")
	} else {
		out = append(out, "You: "+FormatPlayer(st.Player))
	}
	for _, o := range st.Opponents {
		out = append(out, "  "+FormatPlayer(o))
	}
	switch n := len(st.Projectiles); n {
	case 0:
	case 1:
		out = append(out, "1 projectile in flight.")
	default:
		out = append(out, fmt.Sprintf("%d projectiles in flight.", n))
	}
	for _, pr := range st.Projectiles {
		out = append(out, "  "+FormatProjectile(pr))
	}
	return out
}

// spells lists the player's spells, or prints one in full.
func (e *Engine) spells(name string) []string {
	p := e.self()
	var known []*spell.Spell
	if p != nil {
		known = p.Spells
	}
	if name != "" {
		sp, err := e.findSpell(known, name)
		if err != nil {
			return []string{err.Error()}
		}
		return strings.Split(spell.Pretty(sp, prettyWidth), "\n")
	}

	var out []string
	if len(known) == 0 {
		out = append(out, "You know no spells.")
	} else {
		out = append(out, "Your spells:")
		for i, sp := range known {
			out = append(out, fmt.Sprintf("  %d. %s (%d nodes)", i+1, sp.Name, spell.Count(sp)))
		}
	}
	if names := e.Book.Names(); len(names) > 0 {
		out = append(out, "Spellbook: "+strings.Join(names, ", ")+".")
	}
	return out
}

// findSpell looks among known spells first, then in the book.
func (e *Engine) findSpell(known []*spell.Spell, name string) (*spell.Spell, error) {
	if i, err := resolve.Spell(known, name); err == nil {
		return known[i], nil
	}
	i, err := resolve.Spell(e.Book.Spells, name)
	if err != nil {
		return nil, err
	}
	return e.Book.Spells[i], nil
}

func (e *Engine) learn(name string) []string {
	if name == "" {
		return []string{"Learn what?"}
	}
	p := e.self()
	if p == nil {
		return []string{"You are gone from the arena."}
	}
	i, err := resolve.Spell(e.Book.Spells, name)
	if err != nil {
		return []string{err.Error()}
	}
	sp := e.Book.Spells[i]
	for _, k := range p.Spells {
		if k == sp || k.Name == sp.Name {
			return []string{fmt.Sprintf("You already know %s.", sp.Name)}
		}
	}
	p.Spells = append(p.Spells, sp)
	return []string{fmt.Sprintf("You learn %s.", sp.Name)}
}

// gen invents a spell with the arena's random stream and teaches it to
// the player.
func (e *Engine) gen(arg string) []string {
	p := e.self()
	if p == nil {
		return []string{"You are gone from the arena."}
	}
	gc := e.Config.Generator
	depth := gc.MaxDepth
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return []string{fmt.Sprintf("gen: %q is not a positive depth", arg)}
		}
		depth = n
	}
	sp, c, err := generate.Accept(e.Space.RNG(), depth, gc.MinComplexity, gc.MaxComplexity, gc.Attempts)
	if err != nil {
		return []string{err.Error()}
	}
	p.Spells = append(p.Spells, sp)
	out := []string{fmt.Sprintf("You invent %s (complexity %d). It is spell %d.", sp.Name, c, len(p.Spells))}
	return append(out, strings.Split(spell.Pretty(sp, prettyWidth), "\n")...)
}

func (e *Engine) spawn(intent types.Intent) []string {
	name, where := intent.Object, intent.Target
	if where == "" {
		name, where = splitTrailingPoint(name)
	}
	if name == "" {
		return []string{"Spawn whom?"}
	}
	for _, t := range e.Space.Players() {
		if p, _ := e.Space.Player(t); strings.EqualFold(p.Name, name) {
			return []string{fmt.Sprintf("There is already a player called %s.", p.Name)}
		}
	}

	bc, configured := e.botConfig(name)
	at := e.Cursor
	if configured {
		at = geom.Point{X: bc.X, Y: bc.Y}
	}
	if where != "" {
		p, err := resolve.Point(where)
		if err != nil {
			return []string{err.Error()}
		}
		at = p
	}
	b, err := e.addBot(bc, at)
	if err != nil {
		return []string{err.Error()}
	}
	return []string{fmt.Sprintf("%s enters the arena at %s.", b.Name, at)}
}

// botConfig finds the configured bot called name, or makes one up that
// knows the whole book.
func (e *Engine) botConfig(name string) (config.BotConfig, bool) {
	for _, bc := range e.Config.Bots {
		if strings.EqualFold(bc.Name, name) {
			return bc, true
		}
	}
	return config.BotConfig{Name: name, Every: defaultBotEvery}, false
}

func (e *Engine) leave(name string) []string {
	if name == "" {
		return []string{"Who should leave?"}
	}
	t, err := resolve.Player(e.Space, name)
	if err != nil {
		return []string{err.Error()}
	}
	if t == e.Player {
		return []string{"You can't leave your own arena."}
	}
	p, _ := e.Space.PlayerLeave(t)
	for i, b := range e.Bots {
		if b.Token == t {
			e.Bots = append(e.Bots[:i], e.Bots[i+1:]...)
			break
		}
	}
	return []string{fmt.Sprintf("%s leaves the arena.", p.Name)}
}

// splitTrailingPoint splits "imp 5 5" into "imp" and "5 5".
func splitTrailingPoint(s string) (name, point string) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return s, ""
	}
	tail := strings.Join(fields[len(fields)-2:], " ")
	if _, err := resolve.Point(tail); err != nil {
		return s, ""
	}
	return strings.Join(fields[:len(fields)-2], " "), tail
}

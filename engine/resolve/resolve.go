// Package resolve maps names typed by the player to spells, players and
// arena points.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/engine/geom"
	"github.com/nathoo/spellcore/engine/token"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/spell"
)

// AmbiguityError indicates multiple candidates matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no candidate matched a name.
type NotFoundError struct {
	Kind string // "spell" or "player"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s called %q", e.Kind, e.Name)
}

// Spell finds ref among spells and returns its index. ref is either a
// 1-based position or a name.
func Spell(spells []*spell.Spell, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(spells) {
			return 0, &NotFoundError{Kind: "spell", Name: ref}
		}
		return n - 1, nil
	}
	names := make([]string, len(spells))
	for i, sp := range spells {
		names[i] = sp.Name
	}
	i, err := match(names, ref)
	if err != nil {
		return 0, decorate(err, "spell")
	}
	return i, nil
}

// Player finds the live player called name.
func Player(s *world.Space, name string) (token.Token, error) {
	toks := s.Players()
	names := make([]string, len(toks))
	for i, t := range toks {
		p, _ := s.Player(t)
		names[i] = p.Name
	}
	i, err := match(names, name)
	if err != nil {
		return token.Null, decorate(err, "player")
	}
	return toks[i], nil
}

// Point parses "x y" or "x,y".
func Point(text string) (geom.Point, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return geom.Point{}, fmt.Errorf("expected <x> <y>, got %q", text)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("bad x coordinate %q", fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("bad y coordinate %q", fields[1])
	}
	return geom.Point{X: x, Y: y}, nil
}

// match returns the index of the only name matching query. An exact match
// wins outright; otherwise the query may name any one word of a candidate.
func match(names []string, query string) (int, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, &NotFoundError{Name: query}
	}
	norm := strings.ReplaceAll(q, " ", "_")
	for i, n := range names {
		lower := strings.ToLower(n)
		if lower == q || lower == norm {
			return i, nil
		}
	}

	var hits []int
	for i, n := range names {
		for _, word := range words(strings.ToLower(n)) {
			if word == q {
				hits = append(hits, i)
				break
			}
		}
	}
	switch len(hits) {
	case 0:
		return 0, &NotFoundError{Name: query}
	case 1:
		return hits[0], nil
	default:
		cands := make([]string, len(hits))
		for i, h := range hits {
			cands[i] = names[h]
		}
		return 0, &AmbiguityError{Name: query, Candidates: cands}
	}
}

// words splits a name on spaces, underscores and hyphens.
func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
}

func decorate(err error, kind string) error {
	if nf, ok := err.(*NotFoundError); ok {
		nf.Kind = kind
	}
	return err
}

// Package token provides entity identifiers and sorted token sets.
package token

import (
	"sort"
	"strconv"
	"strings"
)

// Token identifies one live entity in a world. Null is never assigned.
type Token uint32

// Null means "no entity".
const Null Token = 0

func (t Token) String() string {
	if t == Null {
		return "#null"
	}
	return "#" + strconv.FormatUint(uint64(t), 10)
}

// Set is an ordered, duplicate-free collection of tokens. The zero value
// is an empty set ready for use.
type Set struct {
	toks []Token
}

// NewSet builds a set from toks, sorting and removing duplicates.
func NewSet(toks ...Token) Set {
	var s Set
	for _, t := range toks {
		s.Insert(t)
	}
	return s
}

func (s *Set) search(t Token) int {
	return sort.Search(len(s.toks), func(i int) bool { return s.toks[i] >= t })
}

// Insert adds t and reports whether the set changed.
func (s *Set) Insert(t Token) bool {
	i := s.search(t)
	if i < len(s.toks) && s.toks[i] == t {
		return false
	}
	s.toks = append(s.toks, 0)
	copy(s.toks[i+1:], s.toks[i:])
	s.toks[i] = t
	return true
}

// Remove deletes t and reports whether it was present.
func (s *Set) Remove(t Token) bool {
	i := s.search(t)
	if i >= len(s.toks) || s.toks[i] != t {
		return false
	}
	s.toks = append(s.toks[:i], s.toks[i+1:]...)
	return true
}

// Contains reports whether t is a member.
func (s Set) Contains(t Token) bool {
	i := s.search(t)
	return i < len(s.toks) && s.toks[i] == t
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.toks) }

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return len(s.toks) == 0 }

// Slice returns a copy of the members in ascending order.
func (s Set) Slice() []Token {
	out := make([]Token, len(s.toks))
	copy(out, s.toks)
	return out
}

// At returns the i-th smallest member.
func (s Set) At(i int) Token { return s.toks[i] }

// First returns the smallest member, or Null when empty.
func (s Set) First() Token {
	if len(s.toks) == 0 {
		return Null
	}
	return s.toks[0]
}

// Last returns the largest member, or Null when empty.
func (s Set) Last() Token {
	if len(s.toks) == 0 {
		return Null
	}
	return s.toks[len(s.toks)-1]
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	return Set{toks: s.Slice()}
}

// Union returns the members of either set.
func (s Set) Union(o Set) Set {
	out := make([]Token, 0, len(s.toks)+len(o.toks))
	i, j := 0, 0
	for i < len(s.toks) && j < len(o.toks) {
		switch {
		case s.toks[i] < o.toks[j]:
			out = append(out, s.toks[i])
			i++
		case s.toks[i] > o.toks[j]:
			out = append(out, o.toks[j])
			j++
		default:
			out = append(out, s.toks[i])
			i++
			j++
		}
	}
	out = append(out, s.toks[i:]...)
	out = append(out, o.toks[j:]...)
	return Set{toks: out}
}

// Intersect returns the members of both sets.
func (s Set) Intersect(o Set) Set {
	var out []Token
	i, j := 0, 0
	for i < len(s.toks) && j < len(o.toks) {
		switch {
		case s.toks[i] < o.toks[j]:
			i++
		case s.toks[i] > o.toks[j]:
			j++
		default:
			out = append(out, s.toks[i])
			i++
			j++
		}
	}
	return Set{toks: out}
}

// Difference returns the members of s not in o.
func (s Set) Difference(o Set) Set {
	var out []Token
	j := 0
	for _, t := range s.toks {
		for j < len(o.toks) && o.toks[j] < t {
			j++
		}
		if j < len(o.toks) && o.toks[j] == t {
			continue
		}
		out = append(out, t)
	}
	return Set{toks: out}
}

// SubsetOf reports whether every member of s is in o.
func (s Set) SubsetOf(o Set) bool {
	if len(s.toks) > len(o.toks) {
		return false
	}
	return s.Difference(o).Empty()
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(o Set) bool {
	if len(s.toks) != len(o.toks) {
		return false
	}
	for i := range s.toks {
		if s.toks[i] != o.toks[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s.toks))
	for i, t := range s.toks {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

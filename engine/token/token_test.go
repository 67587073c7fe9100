package token

import (
	"math/rand"
	"testing"
)

func TestSet_InsertRemoveContains(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var s Set
	live := map[Token]bool{}
	for i := 0; i < 2000; i++ {
		tok := Token(r.Intn(64))
		if r.Intn(3) == 0 {
			removed := s.Remove(tok)
			if removed != live[tok] {
				t.Fatalf("Remove(%v) = %v, want %v", tok, removed, live[tok])
			}
			delete(live, tok)
		} else {
			added := s.Insert(tok)
			if added == live[tok] {
				t.Fatalf("Insert(%v) = %v with live=%v", tok, added, live[tok])
			}
			live[tok] = true
		}
		if s.Len() != len(live) {
			t.Fatalf("Len = %d, want %d", s.Len(), len(live))
		}
	}
	for tok := Token(0); tok < 64; tok++ {
		if s.Contains(tok) != live[tok] {
			t.Errorf("Contains(%v) = %v, want %v", tok, s.Contains(tok), live[tok])
		}
	}
	toks := s.Slice()
	for i := 1; i < len(toks); i++ {
		if toks[i-1] >= toks[i] {
			t.Fatalf("not strictly sorted: %v", toks)
		}
	}
}

func TestSet_DuplicateInsert(t *testing.T) {
	s := NewSet(3, 1, 3, 2, 1)
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if s.Insert(2) {
		t.Error("duplicate Insert reported a change")
	}
	if s.Len() != 3 {
		t.Errorf("Len after duplicate = %d, want 3", s.Len())
	}
}

func TestSet_Algebra(t *testing.T) {
	a := NewSet(1, 2, 3, 5)
	b := NewSet(2, 4, 5, 6)
	tests := []struct {
		name string
		got  Set
		want Set
	}{
		{"union", a.Union(b), NewSet(1, 2, 3, 4, 5, 6)},
		{"intersect", a.Intersect(b), NewSet(2, 5)},
		{"difference", a.Difference(b), NewSet(1, 3)},
		{"difference reversed", b.Difference(a), NewSet(4, 6)},
		{"empty union", Set{}.Union(a), a},
		{"empty intersect", a.Intersect(Set{}), Set{}},
	}
	for _, tt := range tests {
		if !tt.got.Equal(tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSet_SubsetFirstLast(t *testing.T) {
	a := NewSet(2, 5)
	b := NewSet(1, 2, 5, 9)
	if !a.SubsetOf(b) || b.SubsetOf(a) {
		t.Error("SubsetOf wrong")
	}
	if b.First() != 1 || b.Last() != 9 {
		t.Errorf("First/Last = %v/%v", b.First(), b.Last())
	}
	var empty Set
	if empty.First() != Null || empty.Last() != Null {
		t.Error("empty First/Last should be Null")
	}
}

func TestSet_CloneIndependent(t *testing.T) {
	a := NewSet(1, 2)
	c := a.Clone()
	c.Insert(3)
	if a.Contains(3) {
		t.Error("Clone shares storage")
	}
}

// Package buff defines the catalogue of status effects, their stacking
// policies, and the per-entity stack table that merges applications.
package buff

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Buff is one kind of status effect.
type Buff uint8

const (
	// Assorted.
	Swarm Buff = iota
	Mute
	Wet
	Stealth

	// Psychological buffs.
	Wary
	Wise
	Unpredictable
	Resolute
	Calm

	// Psychological debuffs.
	Dizzy
	Tired
	Confused
	Panicked

	// Physical debuffs.
	Bleeding
	Bruised
	Limping
	Delicate

	// Physical buffs.
	Steady
	Tough

	// Heat.
	Hot
	Burning
	Burned
	Scalded
	Warm

	// Cold.
	Cold
	Shivering
	Chilled
	Cool

	// Chemical debuffs.
	Electrified
	Toxified
	Poisoned
	Envenomed

	numBuffs
)

var names = [numBuffs]string{
	"swarm", "mute", "wet", "stealth",
	"wary", "wise", "unpredictable", "resolute", "calm",
	"dizzy", "tired", "confused", "panicked",
	"bleeding", "bruised", "limping", "delicate",
	"steady", "tough",
	"hot", "burning", "burned", "scalded", "warm",
	"cold", "shivering", "chilled", "cool",
	"electrified", "toxified", "poisoned", "envenomed",
}

// All returns every buff in declaration order.
func All() []Buff {
	out := make([]Buff, numBuffs)
	for i := range out {
		out[i] = Buff(i)
	}
	return out
}

// Valid reports whether b names a catalogued buff.
func (b Buff) Valid() bool {
	return b < numBuffs
}

func (b Buff) String() string {
	if !b.Valid() {
		return fmt.Sprintf("buff(%d)", uint8(b))
	}
	return names[b]
}

// Parse looks up a buff by name, case-insensitively.
func Parse(name string) (Buff, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return Buff(i), true
		}
	}
	return 0, false
}

// Stacking is the rule for merging a new application with an active one.
type Stacking uint8

const (
	// Max sums stacks and keeps the longer duration.
	Max Stacking = iota
	// Min sums stacks and keeps the shorter duration.
	Min
	// Replace sums stacks and takes the new duration.
	Replace
	// IfMax sums stacks only when the new duration is at least the old one.
	// The old duration is kept either way.
	IfMax
)

func (s Stacking) String() string {
	switch s {
	case Max:
		return "max"
	case Min:
		return "min"
	case Replace:
		return "replace"
	case IfMax:
		return "if_max"
	}
	return fmt.Sprintf("stacking(%d)", uint8(s))
}

// StackingOf returns the policy for b. Any value, catalogued or not,
// yields a policy; the default is Max.
func StackingOf(b Buff) Stacking {
	switch b {
	case Toxified:
		return Min
	case Envenomed:
		return IfMax
	case Electrified:
		return Replace
	default:
		return Max
	}
}

// ErrInvalidStack is returned for applications with a non-positive count
// or duration.
var ErrInvalidStack = errors.New("buff: stack count and duration must be positive")

// Stack is the active instance of one buff on one entity.
type Stack struct {
	Count    uint32
	Duration float64 // seconds remaining
}

// Stacks maps each active buff to its stack. An entry exists only while
// both its count and duration are positive.
type Stacks map[Buff]Stack

// Apply merges count stacks lasting dur seconds into the table following
// the buff's stacking policy.
func (s Stacks) Apply(b Buff, count uint32, dur float64) error {
	if count == 0 || !(dur > 0) {
		return fmt.Errorf("%w: %s x%d for %.2fs", ErrInvalidStack, b, count, dur)
	}
	old, ok := s[b]
	if !ok {
		s[b] = Stack{Count: count, Duration: dur}
		return nil
	}
	switch StackingOf(b) {
	case Min:
		old.Count = addSat(old.Count, count)
		old.Duration = math.Min(old.Duration, dur)
	case Replace:
		old.Count = addSat(old.Count, count)
		old.Duration = dur
	case IfMax:
		if dur >= old.Duration {
			old.Count = addSat(old.Count, count)
		}
	default:
		old.Count = addSat(old.Count, count)
		old.Duration = math.Max(old.Duration, dur)
	}
	s[b] = old
	return nil
}

// Decay subtracts dt seconds from every active buff and drops the ones
// that run out. It returns the buffs removed, in catalogue order.
func (s Stacks) Decay(dt float64) []Buff {
	var expired []Buff
	for b, st := range s {
		st.Duration -= dt
		if st.Duration <= 0 {
			delete(s, b)
			expired = append(expired, b)
			continue
		}
		s[b] = st
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// Count returns the number of active stacks of b.
func (s Stacks) Count(b Buff) uint32 {
	return s[b].Count
}

// Remaining returns the seconds left on b, or 0 when inactive.
func (s Stacks) Remaining(b Buff) float64 {
	return s[b].Duration
}

// Remove takes up to n stacks of b away and returns how many were removed.
// The entry disappears when its count reaches zero.
func (s Stacks) Remove(b Buff, n uint32) uint32 {
	st, ok := s[b]
	if !ok || n == 0 {
		return 0
	}
	if n >= st.Count {
		delete(s, b)
		return st.Count
	}
	st.Count -= n
	s[b] = st
	return n
}

// Active returns the active buffs in catalogue order.
func (s Stacks) Active() []Buff {
	out := make([]Buff, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the table.
func (s Stacks) Clone() Stacks {
	out := make(Stacks, len(s))
	for b, st := range s {
		out[b] = st
	}
	return out
}

func addSat(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

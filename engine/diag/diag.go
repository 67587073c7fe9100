// Package diag carries diagnostic events out of the world evaluator:
// authoring mistakes that were papered over, cast outcomes, and entity
// lifecycle. Nothing in the evaluator fails by panicking; it reports here.
package diag

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/nathoo/spellcore/engine/token"
)

type Type string

const (
	UnboundSlot       Type = "unbound_slot"
	NoPosition        Type = "no_position"
	EmptyChoice       Type = "empty_choice"
	InvalidStack      Type = "invalid_stack"
	NoSuchSpell       Type = "no_such_spell"
	CastDenied        Type = "cast_denied"
	CastInsufficient  Type = "cast_insufficient"
	CastOK            Type = "cast_ok"
	EntityDestroyed   Type = "entity_destroyed"
	ProjectileSpawned Type = "projectile_spawned"
	ProjectileExpired Type = "projectile_expired"
	Collision         Type = "collision"
	PlayerDowned      Type = "player_downed"
	MissingEntity     Type = "missing_entity"
	TooDeep           Type = "too_deep"
)

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity reads a severity name as printed by Severity.String.
func ParseSeverity(name string) (Severity, error) {
	for s := SeverityDebug; s <= SeverityError; s++ {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q (want debug, info, warn or error)", name)
}

type Event struct {
	Type     Type
	Tick     uint64
	Actor    token.Token
	Severity Severity
	Message  string
	Extra    map[string]any
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] tick=%d actor=%s severity=%s", e.Type, e.Tick, e.Actor, e.Severity)
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if len(e.Extra) > 0 {
		keys := make([]string, 0, len(e.Extra))
		for k := range e.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Extra[k])
		}
	}
	return b.String()
}

// Sink receives events.
type Sink interface {
	Report(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Report(e Event) {
	if f == nil {
		return
	}
	f(e)
}

type nopSink struct{}

func (nopSink) Report(Event) {}

// Nop discards everything.
func Nop() Sink {
	return nopSink{}
}

// LogSink writes one line per event through a log.Logger.
type LogSink struct {
	logger *log.Logger
	min    Severity
}

// NewLogSink logs events at or above min to w.
func NewLogSink(w io.Writer, min Severity) *LogSink {
	return &LogSink{logger: log.New(w, "", 0), min: min}
}

func (s *LogSink) Report(e Event) {
	if s.logger == nil || e.Severity < s.min {
		return
	}
	s.logger.Print(e.String())
}

// MemorySink keeps every event it receives.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{events: make([]Event, 0)}
}

func (s *MemorySink) Report(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Extra != nil {
		copied := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			copied[k] = v
		}
		e.Extra = copied
	}
	s.events = append(s.events, e)
}

func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Event, len(s.events))
	copy(copied, s.events)
	return copied
}

// OfType returns the recorded events of type t.
func (s *MemorySink) OfType(t Type) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Drain returns the recorded events and forgets them.
func (s *MemorySink) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = make([]Event, 0)
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

type fanout []Sink

func (f fanout) Report(e Event) {
	for _, s := range f {
		s.Report(e)
	}
}

// Fanout forwards every event to each non-nil sink.
func Fanout(sinks ...Sink) Sink {
	var out fanout
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

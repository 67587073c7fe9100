// Package replay keeps the command transcript of one session in memory and
// re-runs it from the seed to check that the session is reproducible.
package replay

import (
	"fmt"
	"strings"

	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
	"gopkg.in/yaml.v3"
)

// Transcript is everything needed to rebuild a session: the seed the
// arena started from and every command fed to it since.
type Transcript struct {
	Seed     int64    `yaml:"seed"`
	Commands []string `yaml:"commands"`
}

// New starts an empty transcript for seed.
func New(seed int64) *Transcript {
	return &Transcript{Seed: seed, Commands: []string{}}
}

// Record appends one command.
func (t *Transcript) Record(cmd string) {
	t.Commands = append(t.Commands, cmd)
}

func (t *Transcript) Len() int { return len(t.Commands) }

// Marshal renders the transcript as YAML.
func (t *Transcript) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Unmarshal parses a transcript rendered by Marshal.
func Unmarshal(data []byte) (*Transcript, error) {
	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if t.Commands == nil {
		t.Commands = []string{}
	}
	return &t, nil
}

// Vital is one player's health and mana at a checkpoint.
type Vital struct {
	Name   string `yaml:"name"`
	Health int32  `yaml:"health"`
	Mana   int32  `yaml:"mana"`
}

// Checkpoint is the observable state of an arena.
type Checkpoint struct {
	Tick   uint64  `yaml:"tick"`
	RNG    int64   `yaml:"rng"`
	Vitals []Vital `yaml:"vitals"`
	Digest string  `yaml:"-"`
}

// Capture records the current state of s.
func Capture(s *world.Space) Checkpoint {
	cp := Checkpoint{
		Tick:   s.TickCount(),
		RNG:    s.RNG().Position(),
		Digest: s.Digest(),
	}
	for _, t := range s.Players() {
		p, _ := s.Player(t)
		cp.Vitals = append(cp.Vitals, Vital{Name: p.Name, Health: p.Health, Mana: p.Mana})
	}
	return cp
}

// Stepper is a session replay can drive.
type Stepper interface {
	Step(input string) types.Result
	Checkpoint() Checkpoint
}

// Report compares a replayed session against the live one.
type Report struct {
	Commands int
	Want     Checkpoint
	Got      Checkpoint
	Match    bool
	Diff     []string // digest lines that differ, "-" live and "+" replayed
}

// maxDiff bounds the lines a report quotes.
const maxDiff = 8

// Run feeds every command of t into fresh, which must have been built from
// t.Seed, and compares where it ends up with want.
func Run(t *Transcript, fresh Stepper, want Checkpoint) Report {
	for _, cmd := range t.Commands {
		fresh.Step(cmd)
	}
	got := fresh.Checkpoint()
	r := Report{
		Commands: len(t.Commands),
		Want:     want,
		Got:      got,
	}
	r.Diff = diff(want.Digest, got.Digest)
	r.Match = len(r.Diff) == 0 && want.Tick == got.Tick && want.RNG == got.RNG
	return r
}

// Summary is the one-line verdict shown to the player.
func (r Report) Summary() string {
	if r.Match {
		return fmt.Sprintf("Replayed %d commands: arena matches (tick %d, rng %d).", r.Commands, r.Got.Tick, r.Got.RNG)
	}
	return fmt.Sprintf("Replayed %d commands: arena DIVERGED (tick %d vs %d, rng %d vs %d).",
		r.Commands, r.Want.Tick, r.Got.Tick, r.Want.RNG, r.Got.RNG)
}

func diff(want, got string) []string {
	if want == got {
		return nil
	}
	a := strings.Split(want, "\n")
	b := strings.Split(got, "\n")
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var out []string
	for i := 0; i < n && len(out) < maxDiff; i++ {
		var x, y string
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x == y {
			continue
		}
		if x != "" {
			out = append(out, "-"+x)
		}
		if y != "" {
			out = append(out, "+"+y)
		}
	}
	return out
}

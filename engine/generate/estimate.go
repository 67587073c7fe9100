package generate

import (
	"math"

	"github.com/nathoo/spellcore/spell"
)

// Band is an inclusive range of acceptable estimated magnitudes.
type Band struct {
	Lo, Hi float64
}

var (
	// Small suits stack counts.
	Small = Band{0, 5}
	// Medium suits speeds, radii and mana or health amounts.
	Medium = Band{3, 33}
	// Lifetime suits projectile lifetimes in seconds.
	Lifetime = Band{1, 5}
)

// Contains reports whether |v| lies in the band.
func (b Band) Contains(v float64) bool {
	v = math.Abs(v)
	return v >= b.Lo && v <= b.Hi
}

// maxRetries bounds how often a banded expression is regenerated before
// falling back to a constant.
const maxRetries = 8

// Unknown is the estimate given to values only known at evaluation time.
const Unknown = 5.0

// Estimate returns a rough expected value of d without evaluating it.
func Estimate(d spell.Discrete) float64 {
	switch d := d.(type) {
	case spell.Const:
		return float64(d)
	case spell.Range:
		return (float64(d.Lo) + float64(d.Hi)) / 2
	case spell.WithinPercent:
		return float64(d.Value)
	case spell.Div:
		den := Estimate(d.Den)
		if math.Abs(den) < 1 {
			den = 1
		}
		return Estimate(d.Num) / den
	case spell.Sum:
		var v float64
		for _, x := range d {
			v += Estimate(x)
		}
		return v
	case spell.Neg:
		return -Estimate(d.X)
	case spell.Mult:
		v := 1.0
		for _, x := range d {
			v *= Estimate(x)
		}
		return v
	case spell.Max:
		return fold(d, math.Max)
	case spell.Min:
		return fold(d, math.Min)
	case spell.ChooseDiscrete:
		if len(d) == 0 {
			return 0
		}
		var v float64
		for _, x := range d {
			v += Estimate(x)
		}
		return v / float64(len(d))
	case spell.CountStacks:
		return 1
	case spell.CountDur:
		return 2
	case spell.Cardinality:
		return 2
	case spell.LoadDiscrete:
		return Unknown
	}
	return 0
}

func fold(xs []spell.Discrete, f func(a, b float64) float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	v := Estimate(xs[0])
	for _, x := range xs[1:] {
		v = f(v, Estimate(x))
	}
	return v
}

// banded generates a discrete whose estimate falls in b, regenerating up
// to maxRetries times and then settling for a constant inside the band.
func (g *Generator) banded(depth int, s Slots, b Band) spell.Discrete {
	for i := 0; i < maxRetries; i++ {
		d := g.discrete(depth, s)
		if b.Contains(Estimate(d)) {
			return d
		}
	}
	g.node()
	return spell.Const(g.r.Between(int64(math.Ceil(b.Lo)), int64(math.Floor(b.Hi))))
}

// Package geom provides the 2D point and velocity math used by the world
// evaluator for spatial predicates and motion.
package geom

import (
	"fmt"
	"math"
)

// Point is a position in the arena.
type Point struct {
	X float64
	Y float64
}

// Origin is the zero point. Unresolvable locations evaluate to it.
var Origin = Point{}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the centroid of pts. An empty list yields Origin.
func Midpoint(pts []Point) Point {
	if len(pts) == 0 {
		return Origin
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}
}

// HeadingTo returns the heading in radians from a toward b.
// Coincident points yield 0.
func HeadingTo(a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx)
}

// Add moves p by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

// Vector is a velocity in arena units per tick.
type Vector struct {
	X float64
	Y float64
}

// Zero is the stationary velocity.
var Zero = Vector{}

// Polar builds a vector from a heading in radians and a speed.
func Polar(heading, speed float64) Vector {
	return Vector{X: math.Cos(heading) * speed, Y: math.Sin(heading) * speed}
}

// Speed returns the magnitude of v.
func (v Vector) Speed() float64 {
	return math.Hypot(v.X, v.Y)
}

// Heading returns the direction of v in radians.
func (v Vector) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Plus composes two vectors.
func (v Vector) Plus(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale multiplies v by k.
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k}
}

// SlowBy reduces the speed of v by amount, keeping its heading.
// A vector slower than amount becomes exactly Zero.
func (v Vector) SlowBy(amount float64) Vector {
	speed := v.Speed()
	if speed == 0 || speed <= amount {
		return Zero
	}
	return v.Scale((speed - amount) / speed)
}

// Damp applies multiplicative damping followed by the additive floor.
func (v Vector) Damp(factor, floor float64) Vector {
	return v.Scale(factor).SlowBy(floor)
}

func (v Vector) String() string {
	return fmt.Sprintf("<%.2f,%.2f>", v.X, v.Y)
}

package spell

import (
	"fmt"
	"strconv"
	"strings"
)

// atom is a leaf argument printed verbatim.
type atom string

// Format renders n on a single line, e.g. Sum(Const(4), LoadDiscrete(D_0)).
// A blueprint nested inside itself prints as Blueprint(...).
func Format(n any) string {
	p := printer{open: map[*ProjectileBlueprint]bool{}}
	p.flat(n)
	return p.b.String()
}

// Pretty renders n across lines, inlining any node whose flat form fits
// in width columns.
func Pretty(n any, width int) string {
	p := printer{open: map[*ProjectileBlueprint]bool{}, width: width}
	p.pretty(n, 0)
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	width int
	open  map[*ProjectileBlueprint]bool
}

// enter marks a blueprint as being printed. It reports false for one
// already open, which must print as a stub.
func (p *printer) enter(n any) (leave func(), ok bool) {
	bp, isBP := n.(*ProjectileBlueprint)
	if !isBP || bp == nil {
		return func() {}, true
	}
	if p.open[bp] {
		return nil, false
	}
	p.open[bp] = true
	return func() { delete(p.open, bp) }, true
}

func (p *printer) flat(n any) {
	if a, ok := n.(atom); ok {
		p.b.WriteString(string(a))
		return
	}
	leave, ok := p.enter(n)
	if !ok {
		p.b.WriteString("Blueprint(...)")
		return
	}
	defer leave()
	name, args := describe(n)
	p.b.WriteString(name)
	if args == nil {
		return
	}
	p.b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.flat(a)
	}
	p.b.WriteByte(')')
}

func (p *printer) pretty(n any, indent int) {
	sub := printer{open: p.open}
	sub.flat(n)
	flat := sub.b.String()
	if _, ok := n.(atom); ok || indent*2+len(flat) <= p.width {
		p.b.WriteString(flat)
		return
	}
	leave, ok := p.enter(n)
	if !ok {
		p.b.WriteString("Blueprint(...)")
		return
	}
	defer leave()
	name, args := describe(n)
	p.b.WriteString(name)
	p.b.WriteString("(\n")
	for _, a := range args {
		p.b.WriteString(strings.Repeat("  ", indent+1))
		p.pretty(a, indent+1)
		p.b.WriteString(",\n")
	}
	p.b.WriteString(strings.Repeat("  ", indent))
	p.b.WriteByte(')')
}

func list[T any](name string, xs []T) (string, []any) {
	args := make([]any, len(xs))
	for i, x := range xs {
		args[i] = x
	}
	return name, args
}

func block(name string, is []Instruction) any {
	_, args := list(name, is)
	return labelled{name: name, args: args}
}

// labelled groups instruction lists so they print as Then[...] etc.
type labelled struct {
	name string
	args []any
}

func num(v float64) atom {
	return atom(strconv.FormatFloat(v, 'g', 4, 64))
}

func describe(n any) (string, []any) {
	switch n := n.(type) {
	case nil:
		return "nil", nil
	case labelled:
		return n.name, append([]any{}, n.args...)
	case []Instruction:
		return list("List", n)
	case *Spell:
		args := []any{atom(strconv.Quote(n.Name)), block("OnCast", n.OnCast), n.Requires}
		if len(n.OnCooldown) > 0 {
			args = append(args, block("OnCooldown", n.OnCooldown))
		}
		_, cons := list("", n.Consumes)
		args = append(args, labelled{name: "Consumes", args: cons})
		return "Spell", args
	case *ProjectileBlueprint:
		if n == nil {
			return "nil", nil
		}
		return "Blueprint", []any{
			block("OnCreate", n.OnCreate),
			block("OnCollision", n.OnCollision),
			block("OnDestroy", n.OnDestroy),
			n.CollidesWith,
			n.Lifetime,
		}

	case Const:
		return "Const", []any{atom(strconv.Itoa(int(n)))}
	case Range:
		return "Range", []any{atom(strconv.Itoa(int(n.Lo))), atom(strconv.Itoa(int(n.Hi)))}
	case WithinPercent:
		return "WithinPercent", []any{atom(strconv.Itoa(int(n.Value))), num(n.Percent)}
	case Div:
		return "Div", []any{n.Num, n.Den}
	case Sum:
		return list("Sum", n)
	case Neg:
		return "Neg", []any{n.X}
	case Mult:
		return list("Mult", n)
	case Max:
		return list("Max", n)
	case Min:
		return list("Min", n)
	case CountStacks:
		return "CountStacks", []any{atom(n.Buff.String()), n.Of}
	case CountDur:
		return "CountDur", []any{atom(n.Buff.String()), n.Of}
	case ChooseDiscrete:
		return list("Choose", n)
	case Cardinality:
		return "Cardinality", []any{n.Set}
	case LoadDiscrete:
		return "LoadFrom", []any{atom(fmt.Sprintf("D_%d", n.Slot))}

	case Top:
		return "Top", nil
	case Bottom:
		return "Bottom", nil
	case Nand:
		return list("Nand", n)
	case And:
		return list("And", n)
	case Or:
		return list("Or", n)
	case Equals:
		return "Equals", []any{n.A, n.B}
	case LessThan:
		return "LessThan", []any{n.A, n.B}
	case MoreThan:
		return "MoreThan", []any{n.A, n.B}
	case SetCmp:
		return "SetCmp", []any{n.Cmp}

	case SetNand:
		return list("Nand", n)
	case SetAnd:
		return list("And", n)
	case SetOr:
		return list("Or", n)
	case Only:
		return "Only", []any{n.E}
	case LoadSet:
		return "IsInSlot", []any{atom(fmt.Sprintf("Eset_%d", n.Slot))}
	case WithinRangeOf:
		return "WithinRangeOf", []any{n.E, n.Radius}
	case HasMinResource:
		return "HasMinResource", []any{n.Resource}
	case EnemiesOf:
		return "EnemiesOf", []any{n.E}
	case AllBut:
		return "AllBut", []any{n.E}
	case IsHuman:
		return "IsHuman", nil
	case IsProjectile:
		return "IsProjectile", nil
	case Empty:
		return "Empty", nil
	case Universe:
		return "Universe", nil

	case CmpNand:
		return list("Nand", n)
	case CmpAnd:
		return list("And", n)
	case CmpOr:
		return list("Or", n)
	case Subset:
		return "Subset", []any{n.A, n.B}
	case Superset:
		return "Superset", []any{n.A, n.B}
	case SetEqual:
		return "Equal", []any{n.A, n.B}
	case Contains:
		return "Contains", []any{n.Set, n.E}

	case LoadEntity:
		return "LoadEntity", []any{atom(fmt.Sprintf("E_%d", n.Slot))}
	case FirstOf:
		return "FirstOf", []any{n.Set}
	case ChooseEntity:
		return "Choose", []any{n.Set}
	case ClosestFrom:
		return "ClosestFrom", []any{n.Set, n.To}
	case LastOf:
		return "LastOf", []any{n.Set}

	case AtEntity:
		return "AtEntity", []any{n.E}
	case Midpoint:
		return list("Midpoint", n)
	case ChooseLocation:
		return list("Choose", n)
	case LoadLocation:
		return "LoadLocation", []any{atom(fmt.Sprintf("L_%d", n.Slot))}

	case Toward:
		if n.From == nil {
			return "TowardLocation", []any{n.To}
		}
		return "Toward", []any{n.From, n.To}
	case ConstRad:
		return "ConstRad", []any{num(float64(n))}
	case BetweenRad:
		return "BetweenRad", []any{num(n.Lo), num(n.Hi)}
	case ChooseDirection:
		return list("Choose", n)
	case WithinRadOf:
		return "ChooseWithinRadOf", []any{n.Base, num(n.Spread)}

	case Mana:
		return "Mana", []any{n.Amount}
	case Health:
		return "Health", []any{n.Amount}
	case BuffStacks:
		return "BuffStacks", []any{atom(n.Buff.String()), n.Amount}

	case DefineSet:
		return "ESet", []any{atom(fmt.Sprintf("Eset_%d", n.Slot)), n.Set}
	case DefineEntity:
		return "E", []any{atom(fmt.Sprintf("E_%d", n.Slot)), n.E}
	case DefineLocation:
		return "L", []any{atom(fmt.Sprintf("L_%d", n.Slot)), n.At}
	case DefineDiscrete:
		return "D", []any{atom(fmt.Sprintf("D_%d", n.Slot)), n.X}

	case Define:
		return "Define", []any{n.Def}
	case ITE:
		return "ITE", []any{n.If, block("Then", n.Then), block("Else", n.Else)}
	case CallWith:
		return "CallWith", []any{n.Def, block("Do", n.Body)}
	case ForEachAs:
		return "ForEachAs", []any{atom(fmt.Sprintf("E_%d", n.Slot)), n.Set, block("Do", n.Body)}
	case Destroy:
		return "Destroy", []any{n.E}
	case DestroyWithoutEvent:
		return "DestroyWithoutEvent", []any{n.E}
	case MoveEntity:
		return "MoveEntity", []any{n.E, n.To}
	case AddResource:
		return "AddResource", []any{n.E, n.Resource}
	case AddVelocity:
		return "AddVelocity", []any{n.E, n.Dir, n.Speed}
	case SpawnProjectileAt:
		return "SpawnProjectileAt", []any{n.Blueprint, n.At}
	case Nothing:
		return "Nothing", nil
	}
	return fmt.Sprintf("%T", n), nil
}

package spell

// Children returns the direct sub-nodes of n in source order. Blueprints
// reached through SpawnProjectileAt count as children; Spell and
// *ProjectileBlueprint are accepted as roots.
func Children(n any) []any {
	switch n := n.(type) {
	case *Spell:
		out := instrs(nil, n.OnCast)
		if n.Requires != nil {
			out = append(out, n.Requires)
		}
		out = instrs(out, n.OnCooldown)
		for _, r := range n.Consumes {
			out = append(out, r)
		}
		return out
	case *ProjectileBlueprint:
		out := instrs(nil, n.OnCreate)
		out = instrs(out, n.OnCollision)
		out = instrs(out, n.OnDestroy)
		if n.CollidesWith != nil {
			out = append(out, n.CollidesWith)
		}
		if n.Lifetime != nil {
			out = append(out, n.Lifetime)
		}
		return out

	// Discrete.
	case Div:
		return []any{n.Num, n.Den}
	case Sum:
		return discretes(n)
	case Neg:
		return []any{n.X}
	case Mult:
		return discretes(n)
	case Max:
		return discretes(n)
	case Min:
		return discretes(n)
	case CountStacks:
		return []any{n.Of}
	case CountDur:
		return []any{n.Of}
	case ChooseDiscrete:
		return discretes(n)
	case Cardinality:
		return []any{n.Set}

	// Condition.
	case Nand:
		return conditions(n)
	case And:
		return conditions(n)
	case Or:
		return conditions(n)
	case Equals:
		return []any{n.A, n.B}
	case LessThan:
		return []any{n.A, n.B}
	case MoreThan:
		return []any{n.A, n.B}
	case SetCmp:
		return []any{n.Cmp}

	// EntitySet.
	case SetNand:
		return sets(n)
	case SetAnd:
		return sets(n)
	case SetOr:
		return sets(n)
	case Only:
		return []any{n.E}
	case WithinRangeOf:
		return []any{n.E, n.Radius}
	case HasMinResource:
		return []any{n.Resource}
	case EnemiesOf:
		return []any{n.E}
	case AllBut:
		return []any{n.E}

	// EntitySetCmp.
	case CmpNand:
		return cmps(n)
	case CmpAnd:
		return cmps(n)
	case CmpOr:
		return cmps(n)
	case Subset:
		return []any{n.A, n.B}
	case Superset:
		return []any{n.A, n.B}
	case SetEqual:
		return []any{n.A, n.B}
	case Contains:
		return []any{n.Set, n.E}

	// Entity.
	case FirstOf:
		return []any{n.Set}
	case ChooseEntity:
		return []any{n.Set}
	case ClosestFrom:
		return []any{n.Set, n.To}
	case LastOf:
		return []any{n.Set}

	// Location.
	case AtEntity:
		return []any{n.E}
	case Midpoint:
		return locations(n)
	case ChooseLocation:
		return locations(n)

	// Direction.
	case Toward:
		if n.From == nil {
			return []any{n.To}
		}
		return []any{n.From, n.To}
	case ChooseDirection:
		out := make([]any, len(n))
		for i, d := range n {
			out[i] = d
		}
		return out
	case WithinRadOf:
		return []any{n.Base}

	// Resource.
	case Mana:
		return []any{n.Amount}
	case Health:
		return []any{n.Amount}
	case BuffStacks:
		return []any{n.Amount}

	// Definition.
	case DefineSet:
		return []any{n.Set}
	case DefineEntity:
		return []any{n.E}
	case DefineLocation:
		return []any{n.At}
	case DefineDiscrete:
		return []any{n.X}

	// Instruction.
	case Define:
		return []any{n.Def}
	case ITE:
		return instrs(instrs([]any{n.If}, n.Then), n.Else)
	case CallWith:
		return instrs([]any{n.Def}, n.Body)
	case ForEachAs:
		return instrs([]any{n.Set}, n.Body)
	case Destroy:
		return []any{n.E}
	case DestroyWithoutEvent:
		return []any{n.E}
	case MoveEntity:
		return []any{n.E, n.To}
	case AddResource:
		return []any{n.E, n.Resource}
	case AddVelocity:
		return []any{n.E, n.Dir, n.Speed}
	case SpawnProjectileAt:
		if n.Blueprint == nil {
			return []any{n.At}
		}
		return []any{n.Blueprint, n.At}
	}
	return nil
}

// Walk calls fn for n and every node beneath it, depth first. Returning
// false from fn skips that node's children.
func Walk(n any, fn func(any) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n, n included.
// A blueprint reached more than once is counted once.
func Count(n any) int {
	total := 0
	seen := map[*ProjectileBlueprint]bool{}
	Walk(n, func(n any) bool {
		if bp, ok := n.(*ProjectileBlueprint); ok {
			if seen[bp] {
				return false
			}
			seen[bp] = true
		}
		total++
		return true
	})
	return total
}

// Depth returns the height of the tree rooted at n. A leaf has depth 1,
// and so does a blueprint nested inside itself.
func Depth(n any) int {
	return depth(n, map[*ProjectileBlueprint]bool{})
}

func depth(n any, open map[*ProjectileBlueprint]bool) int {
	if bp, ok := n.(*ProjectileBlueprint); ok {
		if open[bp] {
			return 1
		}
		open[bp] = true
		defer delete(open, bp)
	}
	best := 0
	for _, c := range Children(n) {
		if d := depth(c, open); d > best {
			best = d
		}
	}
	return best + 1
}

func instrs(out []any, is []Instruction) []any {
	for _, i := range is {
		out = append(out, i)
	}
	return out
}

func discretes(ds []Discrete) []any {
	out := make([]any, len(ds))
	for i, d := range ds {
		out[i] = d
	}
	return out
}

func conditions(cs []Condition) []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func sets(ss []EntitySet) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func cmps(cs []EntitySetCmp) []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func locations(ls []Location) []any {
	out := make([]any, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

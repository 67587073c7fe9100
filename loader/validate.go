package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/spellcore/spell"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks compiled spells for unique names and slot scoping. It
// returns the warnings when there are no errors.
func validate(spells []*spell.Spell) ([]string, error) {
	ve := &ValidationError{}

	names := map[string]bool{}
	for _, sp := range spells {
		if sp.Name == "" {
			ve.Errors = append(ve.Errors, "spell with empty name")
		}
		if names[sp.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate spell name %q", sp.Name))
		}
		names[sp.Name] = true

		for _, se := range spell.CheckSpell(sp) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("spell %q: %v", sp.Name, se))
		}

		if len(sp.OnCast) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("spell %q does nothing when cast", sp.Name))
		}
		validateBlueprints(sp, ve)
	}

	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return ve.Warnings, nil
}

// validateBlueprints warns about projectiles that expire on creation.
func validateBlueprints(sp *spell.Spell, ve *ValidationError) {
	seen := map[*spell.ProjectileBlueprint]bool{}
	spell.Walk(sp, func(n any) bool {
		bp, ok := n.(*spell.ProjectileBlueprint)
		if !ok {
			return true
		}
		if seen[bp] {
			return false
		}
		seen[bp] = true
		if c, ok := bp.Lifetime.(spell.Const); ok && c <= 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"spell %q spawns a projectile with lifetime %d", sp.Name, c))
		}
		return true
	})
}

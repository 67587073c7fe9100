// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/spellcore/types"
)

// directions maps every accepted spelling to its compass abbreviation.
var directions = map[string]string{
	"n":         "n",
	"s":         "s",
	"e":         "e",
	"w":         "w",
	"ne":        "ne",
	"nw":        "nw",
	"se":        "se",
	"sw":        "sw",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"northeast": "ne",
	"northwest": "nw",
	"southeast": "se",
	"southwest": "sw",
	"up":        "n",
	"down":      "s",
	"left":      "w",
	"right":     "e",
}

var verbAliases = map[string]string{
	// Cast
	"c":      "cast",
	"fire":   "cast",
	"invoke": "cast",
	"use":    "cast",
	"throw":  "cast",
	"hurl":   "cast",

	// Aim
	"target": "aim",
	"point":  "aim",
	"cursor": "aim",

	// Movement
	"go":   "move",
	"walk": "move",
	"run":  "move",
	"step": "move",
	"head": "move",
	"m":    "move",

	// Time
	"z":    "wait",
	"tick": "wait",
	"t":    "wait",
	"rest": "wait",
	"pass": "wait",

	// Look
	"l":      "look",
	"status": "look",
	"st":     "look",
	"who":    "look",
	"map":    "look",

	// Spells
	"book":      "spells",
	"spellbook": "spells",
	"sb":        "spells",
	"list":      "spells",

	// Learn / Generate
	"study":    "learn",
	"memorize": "learn",
	"memorise": "learn",
	"generate": "gen",
	"invent":   "gen",
	"roll":     "gen",

	// Arena membership
	"summon":  "spawn",
	"add":     "spawn",
	"join":    "spawn",
	"kick":    "leave",
	"dismiss": "leave",
	"remove":  "leave",
}

var prepositions = map[string]bool{
	"at": true, "toward": true, "towards": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Direction shortcut: bare "n", "southwest", etc. → move <direction>
	if len(words) == 1 {
		if dir, ok := directions[words[0]]; ok {
			return types.Intent{Verb: "move", Object: dir}
		}
	}

	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	if verb == "move" && len(rest) == 1 {
		if dir, ok := directions[rest[0]]; ok {
			return types.Intent{Verb: verb, Object: dir}
		}
	}

	object, target := splitOnPreposition(rest)
	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// Direction returns the compass abbreviation for a spelled-out direction.
func Direction(word string) (string, bool) {
	dir, ok := directions[strings.ToLower(word)]
	return dir, ok
}

// expandMultiWordVerbs handles "aim at", "look around", "cast spell" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "aim", "point", "target":
		if words[1] == "at" {
			return append([]string{"aim"}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	case "cast", "c":
		if words[1] == "spell" && len(words) > 2 {
			return append([]string{"cast"}, words[2:]...)
		}
	case "wait":
		if words[1] == "for" {
			return append([]string{"wait"}, words[2:]...)
		}
	case "move", "go", "walk", "run":
		if words[1] == "to" || words[1] == "toward" || words[1] == "towards" {
			return append([]string{"move"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}

package cli

import (
	"fmt"
	"strings"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/types"
)

// Meta runs a slash command against eng. trace is toggled by /trace. The
// bool reports whether the session should end.
func Meta(eng *engine.Engine, input string, trace *bool) ([]string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	switch cmd := strings.ToLower(parts[0]); cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return Help(), false

	case "/state":
		return State(eng), false

	case "/trace":
		*trace = !*trace
		if *trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	case "/replay":
		return replayLines(eng), false

	case "/transcript":
		data, err := eng.Transcript.Marshal()
		if err != nil {
			return []string{fmt.Sprintf("Transcript failed: %v", err)}, false
		}
		return strings.Split(strings.TrimRight(string(data), "\n"), "\n"), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func replayLines(eng *engine.Engine) []string {
	r, err := eng.Replay()
	if err != nil {
		return []string{fmt.Sprintf("Replay failed: %v", err)}
	}
	out := []string{r.Summary()}
	for _, d := range r.Diff {
		out = append(out, "  "+d)
	}
	return out
}

// Help lists the meta and arena commands.
func Help() []string {
	return []string{
		"System:",
		"  /replay      Re-run this session from its seed and compare",
		"  /transcript  Show the commands typed so far",
		"  /state       Debug: dump the arena",
		"  /trace       Toggle world event output",
		"  /help        Show this help",
		"  /quit        Leave the arena",
		"",
		"Arena commands:",
		"  cast <spell> [at <x> <y>|<player>]   Cast by number or name (c)",
		"  aim <x> <y> | aim at <player>         Move the cursor",
		"  move <dir>                            Step n/s/e/w/ne/nw/se/sw (or just type it)",
		"  wait [n]                              Let n ticks pass (z)",
		"  look                                  Show everyone in the arena (l)",
		"  spells [name]                         List your spells or print one",
		"  learn <name>                          Learn a spell from the book",
		"  gen [depth]                           Invent a random spell",
		"  spawn <name> [<x> <y>]                Add a bot",
		"  leave <name>                          Remove a bot",
		"  again (g)                             Repeat your last command",
	}
}

// State dumps the arena for debugging.
func State(eng *engine.Engine) []string {
	cp := eng.Checkpoint()
	out := []string{
		fmt.Sprintf("Tick: %d", cp.Tick),
		fmt.Sprintf("RNG position: %d", cp.RNG),
		fmt.Sprintf("Cursor: %s", eng.Cursor),
		fmt.Sprintf("Bots: %d", len(eng.Bots)),
		fmt.Sprintf("Transcript: %d commands", eng.Transcript.Len()),
	}
	for _, line := range strings.Split(strings.TrimRight(cp.Digest, "\n"), "\n") {
		out = append(out, "  "+line)
	}
	return out
}

// TraceLines renders the world events of one step.
func TraceLines(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, "[trace]   "+e.String())
	}
	return lines
}

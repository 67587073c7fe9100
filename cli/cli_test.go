package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/spellcore/config"
	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/replay"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Player.X, cfg.Player.Y = 2, 2
	return cfg
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.New(testConfig(), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	var out bytes.Buffer
	c := &CLI{
		Engine: eng,
		In:     strings.NewReader(input),
		Out:    &out,
	}
	return c, &out
}

func TestCLI_Intro(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "spellcore arena, seed 7") {
		t.Errorf("expected arena banner, got:\n%s", output)
	}
	if !strings.Contains(output, "You: you at (2.0,2.0)") {
		t.Errorf("expected the player in the opening look, got:\n%s", output)
	}
}

func TestCLI_Move(t *testing.T) {
	c, out := newTestCLI(t, "e\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "You move to (3.0,2.0).") {
		t.Errorf("expected a step east, got:\n%s", out.String())
	}
}

func TestCLI_QuitStopsInput(t *testing.T) {
	c, out := newTestCLI(t, "/quit\nwait\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye")
	}
	if strings.Contains(output, "Time passes.") {
		t.Error("commands after /quit should not run")
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"/replay", "/transcript", "/quit", "cast <spell>", "gen [depth]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/save\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command: /save") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\ncast fireball at 10 2\n/trace\nwait\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
	if n := strings.Count(output, "[trace] Events:"); n != 1 {
		t.Errorf("expected one traced step, got %d:\n%s", n, output)
	}
	if !strings.Contains(output, "cast_ok") {
		t.Errorf("expected the cast event in the trace:\n%s", output)
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "wait 3\n/state\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"[Tick: 3]", "[RNG position:", "[Transcript: 1 commands]", "you pos=2.0000,2.0000"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in state output:\n%s", want, output)
		}
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	c, out := newTestCLI(t, "\n\n/quit\n")
	c.Run()

	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines should be silently skipped by CLI")
	}
	if c.Engine.Transcript.Len() != 0 {
		t.Error("empty lines should not be recorded")
	}
}

func TestCLI_CommentsSkipped(t *testing.T) {
	c, out := newTestCLI(t, "# wait 5\nwait\n/quit\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if strings.Contains(output, "5 ticks pass") || strings.Contains(output, "# wait") {
		t.Errorf("comment should be neither run nor echoed:\n%s", output)
	}
	if !strings.Contains(output, "> wait\n") {
		t.Errorf("expected the command echoed after the prompt:\n%s", output)
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	for _, again := range []string{"again", "g", "G"} {
		t.Run(again, func(t *testing.T) {
			c, out := newTestCLI(t, "wait\n"+again+"\n/quit\n")
			c.Run()

			if n := strings.Count(out.String(), "Time passes."); n != 2 {
				t.Errorf("expected 2 waits, got %d", n)
			}
			if got := c.Engine.Space.TickCount(); got != 2 {
				t.Errorf("tick = %d, want 2", got)
			}
		})
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_Replay(t *testing.T) {
	c, out := newTestCLI(t, "spawn imp 8 2\ncast fireball at imp\nwait 10\ngen\n/replay\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Replayed 4 commands: arena matches") {
		t.Errorf("expected a matching replay:\n%s", output)
	}
}

func TestCLI_Transcript(t *testing.T) {
	c, out := newTestCLI(t, "wait 2\naim 5 5\n/transcript\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"[seed: 7]", "[    - wait 2]", "[    - aim 5 5]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in transcript output:\n%s", want, output)
		}
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	eng, err := engine.New(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.Step("wait")
	eng.Step("move n")

	data, err := eng.Transcript.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := replay.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Seed != 7 || strings.Join(back.Commands, "|") != "wait|move n" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestMeta_Trace(t *testing.T) {
	eng, err := engine.New(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	trace := false
	if _, quit := Meta(eng, "/TRACE", &trace); quit || !trace {
		t.Errorf("trace = %v, quit = %v", trace, quit)
	}
	if out, quit := Meta(eng, "/exit", &trace); !quit || out[0] != "Goodbye." {
		t.Errorf("/exit = %v, %v", out, quit)
	}
}

// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the spellcore arena.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/types"
)

// CLI handles line-based interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the session loop. It shows the intro, then loops: prompt,
// input, dispatch, output.
func (c *CLI) Run() {
	for _, line := range c.Engine.Intro() {
		c.printLine(line)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Comment lines in script files.
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			out, quit := Meta(c.Engine, input, &c.Trace)
			for _, line := range out {
				c.printSystem(line)
			}
			if quit {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			for _, line := range TraceLines(result) {
				c.printLine(line)
			}
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

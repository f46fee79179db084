// Package repl provides the interactive REPL mode for calcmesh-cli.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPrompt is printed before every line.
const DefaultPrompt = "calc> "

// EvalFunc evaluates one line and returns the text to print.
type EvalFunc func(ctx context.Context, line string) (string, error)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input   io.Reader
	output  io.Writer
	prompt  string
	eval    EvalFunc
	history *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt sets the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// New creates a new REPL instance.
func New(eval EvalFunc, opts ...Option) *REPL {
	r := &REPL{
		input:   os.Stdin,
		output:  os.Stdout,
		prompt:  DefaultPrompt,
		eval:    eval,
		history: NewHistory("", DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		case "history":
			r.printHistory()
		case "help":
			r.printHelp()
		default:
			r.execute(ctx, line)
		}

		if eof {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) {
	out, err := r.eval(ctx, line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return
	}
	fmt.Fprint(r.output, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(r.output)
	}
}

func (r *REPL) printHistory() {
	for i, entry := range r.history.Entries() {
		fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
	}
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.output, `Enter an arithmetic expression, e.g. (1.5 + 2) * -3 / 4
Operators: + - * / and parentheses; numbers are exact decimals.

  history   show previous lines
  help      show this help
  exit      leave (also: quit, Ctrl+D)
`)
}

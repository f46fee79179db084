// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/calcmesh-go/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Interactive mode, one connection per line",
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}

	client := s.newClient()
	eval := func(ctx context.Context, line string) (string, error) {
		res, err := client.Eval(ctx, line)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := s.write(&buf, res); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	history := repl.NewHistory(s.HistoryFile, s.HistorySize)
	if err := history.Load(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: load history: %v\n", err)
	}

	fmt.Fprintf(c.App.Writer, "connected to %s, type help for help\n", client.Address())
	r := repl.New(eval,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
	)
	runErr := r.Run(c.Context)

	if err := history.Save(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: save history: %v\n", err)
	}
	return runErr
}

func defaultHistoryFile() string {
	if path := repl.DefaultHistoryFile(); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "calcmesh-history")
}

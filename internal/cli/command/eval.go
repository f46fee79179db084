// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/calcmesh-go/internal/cli/connection"
)

// maxStdinBytes caps an expression read from standard input.
const maxStdinBytes = 1 << 20

// EvalCommand returns the eval command.
func EvalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Aliases:   []string{"e"},
		Usage:     "Evaluate one expression",
		ArgsUsage: "EXPR... | -",
		Description: "Arguments are joined with spaces and sent as one request.\n" +
			"With \"-\" the expression is read from standard input.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Evaluate through the ops HTTP API (reports error codes)",
			},
		},
		Action: runEval,
	}
}

func runEval(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}

	expr, err := expressionArg(c)
	if err != nil {
		return err
	}

	var res *connection.Result
	if c.Bool("http") {
		res, err = s.newHTTPClient().Eval(c.Context, expr)
	} else {
		res, err = s.newClient().Eval(c.Context, expr)
	}
	if err != nil {
		return err
	}
	return s.write(c.App.Writer, res)
}

func expressionArg(c *cli.Context) (string, error) {
	args := c.Args().Slice()
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(c.App.Reader, maxStdinBytes))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	if len(args) == 0 {
		return "", errors.New("missing expression")
	}
	return strings.Join(args, " "), nil
}

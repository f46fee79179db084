// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"github.com/urfave/cli/v2"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Query the ops HTTP health endpoint",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ready",
				Usage: "Query readiness instead of liveness",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := GetSettings(c)
			if err != nil {
				return err
			}
			h, err := s.newHTTPClient().Health(c.Context, c.Bool("ready"))
			if err != nil {
				return err
			}
			return s.write(c.App.Writer, h)
		},
	}
}

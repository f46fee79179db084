// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/calcmesh-go/internal/cli/config"
	"github.com/yndnr/calcmesh-go/internal/infra/confloader"
	serverconfig "github.com/yndnr/calcmesh-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI settings",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a default CLI settings file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "test",
				Usage:     "Validate a calcmesh-server configuration file",
				ArgsUsage: "FILE",
				Action:    configTest,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}
	// Text output of a struct is unreadable; show YAML instead.
	if s.Output == "text" {
		return (&Settings{Output: "yaml"}).write(c.App.Writer, s)
	}
	return s.write(c.App.Writer, s)
}

func configInit(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(s.ConfigPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", s.ConfigPath)
	}
	if err := cliconfig.Save(cliconfig.Default(), s.ConfigPath); err != nil {
		return fmt.Errorf("write %s: %w", s.ConfigPath, err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", s.ConfigPath)
	return nil
}

// configTest loads FILE the way calcmesh-server does, without the
// environment, and reports every problem found.
func configTest(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one argument (FILE)")
	}
	path := c.Args().First()

	cfg := serverconfig.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.LoadFile(path); err != nil {
		return err
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := serverconfig.Verify(cfg); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "%s is valid (expr %s/%s", path, cfg.Server.Expr.Network, cfg.Server.Expr.Addr)
	if cfg.Server.HTTP.Enabled {
		fmt.Fprintf(c.App.Writer, ", http %s", cfg.Server.HTTP.Addr)
	}
	fmt.Fprintln(c.App.Writer, ")")
	return nil
}

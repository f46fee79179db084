// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// pingExpr is evaluated by ping; its value is checked.
const (
	pingExpr   = "1+1"
	pingResult = "2"
)

// PingResult is one ping round trip.
type PingResult struct {
	Server  string        `json:"server" yaml:"server"`
	Seq     int           `json:"seq" yaml:"seq"`
	OK      bool          `json:"ok" yaml:"ok"`
	Latency time.Duration `json:"latency_ns" yaml:"latency"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Text renders the result like ping(8).
func (p *PingResult) Text() string {
	if !p.OK {
		return fmt.Sprintf("seq=%d %s: %s", p.Seq, p.Server, p.Error)
	}
	return fmt.Sprintf("seq=%d reply from %s: time=%s", p.Seq, p.Server, p.Latency.Round(time.Microsecond))
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Evaluate 1+1 and report the round-trip latency",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of requests",
				Value:   1,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Pause between requests",
				Value: time.Second,
			},
		},
		Action: runPing,
	}
}

func runPing(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}

	count := c.Int("count")
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	interval := c.Duration("interval")

	client := s.newClient()
	failed := 0
	for seq := 1; seq <= count; seq++ {
		if seq > 1 && interval > 0 {
			select {
			case <-c.Context.Done():
				return c.Context.Err()
			case <-time.After(interval):
			}
		}

		p := &PingResult{Server: client.Address(), Seq: seq}
		res, err := client.Eval(c.Context, pingExpr)
		switch {
		case err != nil:
			p.Error = err.Error()
		case res.Value != pingResult:
			p.Error = fmt.Sprintf("unexpected result %q", res.Value)
		default:
			p.OK = true
			p.Latency = res.Latency
		}
		if !p.OK {
			failed++
		}
		if err := s.write(c.App.Writer, p); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pings failed", failed, count)
	}
	return nil
}

// Package inspect implements the "inspect" subcommand, which prints the state
// of both directions of an existing channel without consuming anything.
package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/markrussinovich/shmchan"
	"github.com/markrussinovich/shmchan/internal/cmd"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "print the flags and message lengths of a channel",
		Flags: append(cmd.ChannelFlags(),
			&cli.BoolFlag{
				Name:    "json",
				Usage:   "print results as json",
				EnvVars: []string{"SHMCHAN_FMT_JSON"},
			}),
		Action: inspect(),
	}
}

// direction is the printable form of a ChannelState.
type direction struct {
	Direction  string `json:"direction"`
	State      string `json:"state"`
	DataLen    int    `json:"data_len"`
	BufferSize int    `json:"buffer_size"`
}

func inspect() cli.ActionFunc {
	return func(c *cli.Context) error {
		m := cmd.Metrics(c)
		defer m.Close()

		opts, err := cmd.Options(c, m)
		if err != nil {
			return cli.Exit(err, 1)
		}

		// Opening as a client only maps the segment; nothing is sent or consumed.
		ep, err := shmchan.NewClient(opts...)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer ep.Close()

		if c.Bool("json") {
			return renderJSON(c, ep)
		}

		_, report := ep.Diagnose()
		fmt.Fprint(c.App.Writer, report)
		return nil
	}
}

func renderJSON(c *cli.Context, ep *shmchan.Endpoint) error {
	tx, rx := ep.DebugState()

	var out []direction
	for _, s := range []shmchan.ChannelState{rx, tx} {
		out = append(out, direction{
			Direction:  s.Direction.String(),
			State:      s.State.String(),
			DataLen:    s.DataLen,
			BufferSize: s.BufferSize,
		})
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

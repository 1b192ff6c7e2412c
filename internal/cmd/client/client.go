// Package client implements the "client" subcommand: open a channel, wait for
// the server's greeting and reply to it.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/markrussinovich/shmchan"
	"github.com/markrussinovich/shmchan/internal/cmd"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "open a channel, wait for a greeting and reply",
		Flags: append(cmd.ChannelFlags(),
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "reply to send",
				Value:   "Hello from client!",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "how long to wait for the greeting",
				Value:   time.Second * 30,
				EnvVars: []string{"SHMCHAN_TIMEOUT"},
			},
			&cli.DurationFlag{
				Name:        "wait",
				Aliases:     []string{"w"},
				Usage:       "wait up to `duration` for the server to create the channel",
				DefaultText: "disabled",
				EnvVars:     []string{"SHMCHAN_WAIT"},
			}),
		Action: connect(),
	}
}

func connect() cli.ActionFunc {
	return func(c *cli.Context) error {
		m := cmd.Metrics(c)
		defer m.Close()

		opts, err := cmd.Options(c, m)
		if err != nil {
			return cli.Exit(err, 1)
		}

		cl, err := open(c, opts)
		if err != nil {
			return cli.Exit(fmt.Errorf("[client] failed to connect: %w", err), 1)
		}
		defer cl.Close()

		fmt.Fprintf(c.App.Writer, "[client] connected to %q (buffer %d bytes)\n", cl.Name(), cl.BufferSize())

		fmt.Fprintln(c.App.Writer, "[client] waiting for server message...")
		msg, err := cl.Receive(c.Duration("timeout"))
		switch {
		case err == nil:
			fmt.Fprintf(c.App.Writer, "[client] received: %s\n", msg)
		case errors.Is(err, io.EOF):
			fmt.Fprintln(c.App.Writer, "[client] server sent exit signal")
			return nil
		case errors.Is(err, shmchan.ErrTimeout):
			return cli.Exit("[client] timeout waiting for server", 1)
		default:
			return cli.Exit(fmt.Errorf("[client] receive: %w", err), 1)
		}

		reply := c.String("message")
		if err := cl.SendString(reply); err != nil {
			return cli.Exit(fmt.Errorf("[client] send: %w", err), 1)
		}
		fmt.Fprintf(c.App.Writer, "[client] sent: %s\n", reply)
		fmt.Fprintln(c.App.Writer, "[client] done")
		return nil
	}
}

func open(c *cli.Context, opts []shmchan.Option) (*shmchan.Endpoint, error) {
	if !c.IsSet("wait") {
		return shmchan.NewClient(opts...)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait"))
	defer cancel()

	return shmchan.WaitForServer(ctx, opts...)
}

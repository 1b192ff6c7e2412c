// Package server implements the "server" subcommand: create a channel, send a
// greeting and wait for the client's reply.
package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/markrussinovich/shmchan"
	"github.com/markrussinovich/shmchan/internal/cmd"
	"github.com/markrussinovich/shmchan/internal/transport/shm"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "create a channel, send a greeting and wait for a reply",
		Flags: append(cmd.ChannelFlags(),
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "greeting to send",
				Value:   "Hello from server!",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "how long to wait for the reply",
				Value:   time.Second * 30,
				EnvVars: []string{"SHMCHAN_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:  "clean",
				Usage: "remove objects left behind by a crashed server first",
			}),
		Action: serve(),
	}
}

func serve() cli.ActionFunc {
	return func(c *cli.Context) error {
		m := cmd.Metrics(c)
		defer m.Close()

		opts, err := cmd.Options(c, m)
		if err != nil {
			return cli.Exit(err, 1)
		}

		if c.Bool("clean") {
			addr, err := cmd.Address(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := shm.RemoveSegment(addr.Name); err != nil {
				return cli.Exit(fmt.Errorf("clean: %w", err), 1)
			}
		}

		srv, err := shmchan.NewServer(opts...)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer srv.Close()

		fmt.Fprintf(c.App.Writer, "[server] created %q (buffer %d bytes)\n", srv.Name(), srv.BufferSize())

		msg := c.String("message")
		if err := srv.SendString(msg); err != nil {
			return cli.Exit(fmt.Errorf("send: %w", err), 1)
		}
		fmt.Fprintf(c.App.Writer, "[server] sent: %s\n", msg)

		fmt.Fprintln(c.App.Writer, "[server] waiting for client message...")
		reply, err := srv.Receive(c.Duration("timeout"))
		switch {
		case err == nil:
			fmt.Fprintf(c.App.Writer, "[server] received: %s\n", reply)
		case errors.Is(err, io.EOF):
			fmt.Fprintln(c.App.Writer, "[server] client sent exit signal")
		case errors.Is(err, shmchan.ErrTimeout):
			return cli.Exit("[server] timeout waiting for client", 1)
		default:
			return cli.Exit(fmt.Errorf("[server] receive: %w", err), 1)
		}

		if err := srv.SendClose(); err != nil {
			return cli.Exit(fmt.Errorf("send close: %w", err), 1)
		}
		fmt.Fprintln(c.App.Writer, "[server] done")
		return nil
	}
}

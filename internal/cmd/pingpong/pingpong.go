// Package pingpong implements the "pingpong" subcommand: a server and a client
// in one process exchange a number of rounds and report round-trip times.
package pingpong

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/markrussinovich/shmchan"
	"github.com/markrussinovich/shmchan/internal/cmd"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "pingpong",
		Usage: "exchange messages between a server and a client in this process",
		Flags: append(cmd.ChannelFlags(),
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"r"},
				Usage:   "number of round trips",
				Value:   5,
			},
			&cli.IntFlag{
				Name:  "payload",
				Usage: "ping payload size in `bytes`",
				Value: len("ping"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "per-message receive timeout",
				Value:   time.Second,
			},
			&cli.BoolFlag{
				Name:  "memory",
				Usage: "use in-process shared memory instead of the operating system's",
			}),
		Action: run(),
	}
}

func run() cli.ActionFunc {
	return func(c *cli.Context) error {
		m := cmd.Metrics(c)
		defer m.Close()

		opts, err := cmd.Options(c, m)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if c.Bool("memory") {
			opts = append(opts, shmchan.WithProvider(shmchan.NewMemoryProvider()))
		}

		srv, err := shmchan.NewServer(opts...)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer srv.Close()

		cl, err := shmchan.NewClient(opts...)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer cl.Close()

		rtts, err := Run(srv, cl, c.Int("rounds"), c.Int("payload"), c.Duration("timeout"))
		for i, rtt := range rtts {
			fmt.Fprintf(c.App.Writer, "round %d: %s\n", i+1, rtt)
		}
		if err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}
}

// Run has cl send rounds pings of payload bytes, each answered by srv. The
// client then says goodbye and the server closes its direction, which the
// client must observe. Run returns the measured round-trip times.
func Run(srv, cl *shmchan.Endpoint, rounds, payload int, timeout time.Duration) ([]time.Duration, error) {
	ping := []byte(strings.Repeat("p", payload))
	rtts := make([]time.Duration, 0, rounds)

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < rounds; i++ {
			b, err := srv.ReceiveBytes(timeout)
			if err != nil {
				return fmt.Errorf("server round %d: %w", i+1, err)
			}
			if err := srv.Send(append([]byte("pong:"), b...)); err != nil {
				return fmt.Errorf("server round %d: %w", i+1, err)
			}
		}

		// Closing before the client read the last pong would replace it.
		if _, err := srv.ReceiveBytes(timeout); err != nil {
			return fmt.Errorf("server: goodbye: %w", err)
		}
		return srv.SendClose()
	})

	g.Go(func() error {
		for i := 0; i < rounds; i++ {
			start := time.Now()
			if err := cl.Send(ping); err != nil {
				return fmt.Errorf("client round %d: %w", i+1, err)
			}
			if _, err := cl.ReceiveBytes(timeout); err != nil {
				return fmt.Errorf("client round %d: %w", i+1, err)
			}
			rtts = append(rtts, time.Since(start))
		}

		if err := cl.Send([]byte("bye")); err != nil {
			return fmt.Errorf("client: goodbye: %w", err)
		}
		if _, err := cl.ReceiveBytes(timeout); !errors.Is(err, io.EOF) {
			return fmt.Errorf("client: expected close signal, got %v", err)
		}
		return nil
	})

	err := g.Wait()
	return rtts, err
}

// Package cmd holds flags and helpers shared by the shmchan subcommands.
package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/markrussinovich/shmchan"
	logutil "github.com/markrussinovich/shmchan/internal/util/log"
	statsdutil "github.com/markrussinovich/shmchan/internal/util/statsd"
)

// ChannelFlags select the segment a subcommand works on.
func ChannelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "channel address `shm://name?size=N` (overrides --name and --size)",
			EnvVars: []string{"SHMCHAN_ADDR"},
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "shared memory segment `name`",
			Value:   shmchan.DefaultName,
			EnvVars: []string{"SHMCHAN_NAME"},
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "per-direction buffer size in `bytes` (server only)",
			Value:   shmchan.DefaultBufferSize,
			EnvVars: []string{"SHMCHAN_SIZE"},
		},
	}
}

// Address returns the channel address selected by the flags.
func Address(c *cli.Context) (shmchan.Address, error) {
	if c.IsSet("addr") {
		return shmchan.ParseAddress(c.String("addr"))
	}

	return shmchan.Address{
		Name:       c.String("name"),
		BufferSize: c.Int("size"),
	}, nil
}

// Options returns endpoint options built from the flags, reporting metrics
// to m.
func Options(c *cli.Context, m shmchan.Metrics) ([]shmchan.Option, error) {
	addr, err := Address(c)
	if err != nil {
		return nil, err
	}

	return []shmchan.Option{
		shmchan.WithAddress(addr),
		shmchan.WithLogger(logutil.New(c)),
		shmchan.WithMetrics(m),
	}, nil
}

// Metrics returns the statsd client configured by the global flags. The
// caller closes it to flush pending metrics.
func Metrics(c *cli.Context) statsdutil.Metrics {
	return statsdutil.New(c, logutil.New(c))
}

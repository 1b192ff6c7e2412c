package main

import (
	"os"

	"github.com/lthibault/log"
	"github.com/urfave/cli/v2"

	"github.com/markrussinovich/shmchan/internal/cmd/client"
	"github.com/markrussinovich/shmchan/internal/cmd/inspect"
	"github.com/markrussinovich/shmchan/internal/cmd/pingpong"
	"github.com/markrussinovich/shmchan/internal/cmd/server"
)

var flags = []cli.Flag{
	// Logging
	&cli.StringFlag{
		Name:    "logfmt",
		Aliases: []string{"f"},
		Usage:   "`format` logs as text, json or none",
		Value:   "text",
		EnvVars: []string{"SHMCHAN_LOGFMT"},
	},
	&cli.StringFlag{
		Name:    "loglvl",
		Usage:   "set logging `level` to trace, debug, info, warn, error or fatal",
		Value:   "warn",
		EnvVars: []string{"SHMCHAN_LOGLVL"},
	},
	// Statsd
	&cli.StringFlag{
		Name:        "metrics",
		Aliases:     []string{"statsd"},
		Usage:       "send metrics to udp `host:port`",
		EnvVars:     []string{"SHMCHAN_METRICS", "SHMCHAN_STATSD"},
		DefaultText: "disabled",
	},
}

var commands = []*cli.Command{
	server.Command(),
	client.Command(),
	inspect.Command(),
	pingpong.Command(),
}

func main() {
	run(&cli.App{
		Name:                 "shmchan",
		Usage:                "duplex messaging over named shared memory",
		UsageText:            "shmchan [global options] command [command options] [arguments...]",
		EnableBashCompletion: true,
		Flags:                flags,
		Commands:             commands,
		Metadata:             map[string]interface{}{},
	})
}

func run(app *cli.App) {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

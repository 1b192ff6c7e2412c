// Package statsdutil builds the statsd client that receives endpoint metrics.
package statsdutil

import (
	"time"

	"github.com/lthibault/log"
	"gopkg.in/alexcesaro/statsd.v2"
)

type Env interface {
	IsSet(string) bool
	String(string) string
}

// Metrics wraps a statsd client and satisfies shmchan.Metrics.
type Metrics struct{ *statsd.Client }

// New statsd client. Metrics are muted unless the "metrics" flag is set.
func New(env Env, log log.Logger) Metrics {
	m, err := statsd.New(
		addr(env),
		muted(env),
		logger(env, log),
		statsd.Prefix("shmchan"),
		statsd.FlushPeriod(time.Millisecond*250))
	if err != nil {
		// statsd.New returns a usable muted client alongside the error.
		log.WithError(err).
			Warn("setup failed for statsd metrics")
	}

	return Metrics{m}
}

func (m Metrics) Incr(bucket string) {
	m.Client.Increment(bucket)
}

func (m Metrics) Duration(bucket string, d time.Duration) {
	m.Client.Timing(bucket, d.Milliseconds())
}

func addr(env Env) statsd.Option {
	if env.IsSet("metrics") {
		return statsd.Address(env.String("metrics"))
	}

	return statsd.Address(":8125")
}

func logger(env Env, log log.Logger) statsd.Option {
	return statsd.ErrorHandler(func(err error) {
		log.WithError(err).
			WithField("statsd", env.String("metrics")).
			Warn("failed to send metrics")
	})
}

func muted(env Env) statsd.Option {
	return statsd.Mute(!env.IsSet("metrics"))
}

/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package shmchan

import (
	"github.com/lthibault/log"

	"github.com/markrussinovich/shmchan/internal/transport/shm"
)

// Defaults applied when an option is omitted.
const (
	DefaultName       = "shmchan"
	DefaultBufferSize = shm.DefaultBufferSize
)

// Infinite makes Receive wait until a message or close signal arrives.
const Infinite = shm.Infinite

// Provider creates and opens the named segment and events behind an endpoint.
type Provider = shm.Provider

// SystemProvider returns the provider backed by the operating system's named
// shared memory and events.
func SystemProvider() Provider {
	return shm.SystemProvider()
}

// NewMemoryProvider returns a provider that keeps segments and events in the
// current process. Both endpoints must be built with the same instance.
func NewMemoryProvider() Provider {
	return shm.NewMemoryProvider()
}

// Option configures an Endpoint.
type Option func(*config)

type config struct {
	name       string
	bufferSize int
	log        log.Logger
	metrics    Metrics
	provider   Provider
}

func newConfig(opts []Option) *config {
	cfg := new(config)
	for _, option := range withDefaults(opts) {
		option(cfg)
	}
	return cfg
}

func withDefaults(opts []Option) []Option {
	return append([]Option{
		WithName(""),
		WithBufferSize(0),
		WithLogger(nil),
		WithMetrics(nil),
		WithProvider(nil),
	}, opts...)
}

// WithName sets the segment name. Event names are derived from it.
// If name == "", DefaultName is used.
func WithName(name string) Option {
	if name == "" {
		name = DefaultName
	}

	return func(c *config) {
		c.name = name
	}
}

// WithBufferSize sets the per-direction buffer capacity of a new segment.
// Clients ignore it and use the size recorded in the segment header.
// If n == 0, DefaultBufferSize is used.
func WithBufferSize(n int) Option {
	if n == 0 {
		n = DefaultBufferSize
	}

	return func(c *config) {
		c.bufferSize = n
	}
}

// WithAddress sets the name and buffer size from a parsed address.
func WithAddress(a Address) Option {
	return func(c *config) {
		WithName(a.Name)(c)
		WithBufferSize(a.BufferSize)(c)
	}
}

// WithLogger sets the logger instance.
// If l == nil, a default logger at warn level is used.
func WithLogger(l log.Logger) Option {
	if l == nil {
		l = log.New(log.WithLevel(log.WarnLevel))
	}

	return func(c *config) {
		c.log = l
	}
}

// WithMetrics sets the metrics sink.
// If m == nil, metrics are discarded.
func WithMetrics(m Metrics) Option {
	if m == nil {
		m = nopMetrics{}
	}

	return func(c *config) {
		c.metrics = m
	}
}

// WithProvider sets the provider of named objects.
// If p == nil, SystemProvider is used.
func WithProvider(p Provider) Option {
	if p == nil {
		p = SystemProvider()
	}

	return func(c *config) {
		c.provider = p
	}
}
